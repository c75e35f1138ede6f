package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	videopb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jobx-platform/jobx-backend/internal/logger"
)

// VideoService turns one composed recording into a transcript. Transcription
// runs through Video Intelligence speech transcription so the answer video is
// the single source of truth; there is no separate audio upload.
type VideoService interface {
	TranscribeRecording(ctx context.Context, gcsURI string) (string, error)
	Close() error
}

type videoService struct {
	log        *logger.Logger
	client     *videointelligence.Client
	language   string
	maxRetries int
}

func NewVideoService(log *logger.Logger) (VideoService, error) {
	serviceLog := log.With("service", "VideoService")

	ctx := context.Background()
	opts := []option.ClientOption{}
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds != "" {
		if strings.HasPrefix(creds, "{") {
			opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
		} else {
			opts = append(opts, option.WithCredentialsFile(creds))
		}
	}

	c, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("video intelligence client: %w", err)
	}

	language := strings.TrimSpace(os.Getenv("TRANSCRIPTION_LANGUAGE_CODE"))
	if language == "" {
		language = "en-US"
	}

	return &videoService{
		log:        serviceLog,
		client:     c,
		language:   language,
		maxRetries: 4,
	}, nil
}

func (vs *videoService) TranscribeRecording(ctx context.Context, gcsURI string) (string, error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", fmt.Errorf("gcsURI must be gs://... got %q", gcsURI)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	req := &videopb.AnnotateVideoRequest{
		InputUri: gcsURI,
		Features: []videopb.Feature{videopb.Feature_SPEECH_TRANSCRIPTION},
		VideoContext: &videopb.VideoContext{
			SpeechTranscriptionConfig: &videopb.SpeechTranscriptionConfig{
				LanguageCode:               vs.language,
				EnableAutomaticPunctuation: true,
			},
		},
	}

	resp, err := vs.retryAnnotate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("video annotate(speech): %w", err)
	}

	var parts []string
	for _, result := range resp.GetAnnotationResults() {
		for _, tr := range result.GetSpeechTranscriptions() {
			alts := tr.GetAlternatives()
			if len(alts) == 0 {
				continue
			}
			// Alternatives come ordered by confidence; the first is enough.
			text := strings.TrimSpace(alts[0].GetTranscript())
			if text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " "), nil
}

func (vs *videoService) retryAnnotate(ctx context.Context, req *videopb.AnnotateVideoRequest) (*videopb.AnnotateVideoResponse, error) {
	backoff := 750 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= vs.maxRetries; attempt++ {
		op, err := vs.client.AnnotateVideo(ctx, req)
		if err == nil {
			resp, werr := op.Wait(ctx)
			if werr == nil {
				return resp, nil
			}
			err = werr
		}
		lastErr = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		vs.log.Warn("video annotate retrying", "attempt", attempt+1, "code", code.String(), "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, lastErr
}

func (vs *videoService) Close() error {
	if vs == nil || vs.client == nil {
		return nil
	}
	return vs.client.Close()
}
