package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/jobx-platform/jobx-backend/internal/logger"
)

// RecordingStore is the bucket-side view of one interview's media: the
// browser uploads each question's recording as numbered chunk objects under
// interviews/<user>/<job>/<question>/chunks/, and post-processing composes
// them into a single recording object.
type RecordingStore interface {
	ListChunkObjects(ctx context.Context, userID, jobID, questionID uuid.UUID) ([]string, error)
	ComposeRecording(ctx context.Context, userID, jobID, questionID uuid.UUID, chunkObjects []string) (string, error)
	GCSURI(object string) string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucketName    string
}

func NewBucketService(log *logger.Logger) (RecordingStore, error) {
	serviceLog := log.With("service", "BucketService")
	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		return nil, fmt.Errorf("missing env var GCS_BUCKET_NAME")
	}
	saPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")

	ctx := context.Background()
	var stClient *storage.Client
	var err error
	if saPath != "" {
		stClient, err = storage.NewClient(ctx, option.WithCredentialsFile(saPath), option.WithScopes(storage.ScopeReadWrite))
	} else {
		stClient, err = storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	}
	if err != nil {
		return nil, fmt.Errorf("Failed to create storage client: %w", err)
	}
	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		bucketName:    bucket,
	}, nil
}

func chunkPrefix(userID, jobID, questionID uuid.UUID) string {
	return fmt.Sprintf("interviews/%s/%s/%s/chunks/", userID, jobID, questionID)
}

func (bs *bucketService) ListChunkObjects(ctx context.Context, userID, jobID, questionID uuid.UUID) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := bs.storageClient.Bucket(bs.bucketName).Objects(ctx, &storage.Query{
		Prefix: chunkPrefix(userID, jobID, questionID),
	})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list chunk objects: %w", err)
		}
		names = append(names, attrs.Name)
	}

	// Chunk objects are named chunk-<n>; order numerically so chunk-10 does
	// not land before chunk-2.
	sort.Slice(names, func(i, j int) bool {
		ni, iok := chunkIndex(names[i])
		nj, jok := chunkIndex(names[j])
		if iok && jok {
			return ni < nj
		}
		return names[i] < names[j]
	})
	return names, nil
}

func chunkIndex(name string) (int, bool) {
	base := name[strings.LastIndex(name, "/")+1:]
	raw := strings.TrimPrefix(base, "chunk-")
	if i := strings.LastIndex(raw, "."); i >= 0 {
		raw = raw[:i]
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (bs *bucketService) ComposeRecording(ctx context.Context, userID, jobID, questionID uuid.UUID, chunkObjects []string) (string, error) {
	if len(chunkObjects) == 0 {
		return "", fmt.Errorf("no chunk objects to compose")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	bucket := bs.storageClient.Bucket(bs.bucketName)
	dstName := fmt.Sprintf("interviews/%s/%s/%s/recording.webm", userID, jobID, questionID)
	dst := bucket.Object(dstName)

	// GCS compose takes at most 32 sources per call; fold larger chunk lists
	// into the destination batch by batch.
	const composeLimit = 32

	first := chunkObjects
	if len(first) > composeLimit {
		first = first[:composeLimit]
	}
	srcs := make([]*storage.ObjectHandle, 0, len(first))
	for _, name := range first {
		srcs = append(srcs, bucket.Object(name))
	}
	if _, err := dst.ComposerFrom(srcs...).Run(ctx); err != nil {
		return "", fmt.Errorf("compose recording: %w", err)
	}

	remaining := chunkObjects[len(first):]
	for len(remaining) > 0 {
		batch := remaining
		if len(batch) > composeLimit-1 {
			batch = batch[:composeLimit-1]
		}
		srcs = srcs[:0]
		srcs = append(srcs, dst)
		for _, name := range batch {
			srcs = append(srcs, bucket.Object(name))
		}
		if _, err := dst.ComposerFrom(srcs...).Run(ctx); err != nil {
			return "", fmt.Errorf("compose recording batch: %w", err)
		}
		remaining = remaining[len(batch):]
	}

	return dstName, nil
}

func (bs *bucketService) GCSURI(object string) string {
	return fmt.Sprintf("gs://%s/%s", bs.bucketName, object)
}
