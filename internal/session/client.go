// Package session drives a candidate through an interview: one question at a
// time, navigation gated on the recording timer, and a focus policy enforced
// for the session's duration. It is headless; rendering, recording and the
// fullscreen surface plug in through small interfaces.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobx-platform/jobx-backend/internal/logger"
)

// ErrLoginRequired is returned when the backend rejects the session token.
// Callers should route the user back to authentication.
var ErrLoginRequired = errors.New("session: login required")

// Question is one entry of the fetched question set.
type Question struct {
	ID       uuid.UUID `json:"_id"`
	Type     string    `json:"type"`
	Category string    `json:"category,omitempty"`
	Question string    `json:"question"`
}

// Client is the typed HTTP surface the controller talks to.
type Client interface {
	FetchQuestions(ctx context.Context) ([]Question, error)
	FetchQuestionsBySkills(ctx context.Context, jobID uuid.UUID) ([]Question, error)
	CreateInterview(ctx context.Context, userID, jobID uuid.UUID, questionIDs []uuid.UUID) error
	SaveChunkCount(ctx context.Context, userID, jobID, questionID uuid.UUID, chunks int) error
	UpdateAnswer(ctx context.Context, userID, jobID, questionID uuid.UUID, transcription string) error
	SubmitInterview(ctx context.Context, userID, jobID uuid.UUID) error
	InterviewCount(ctx context.Context) (int, error)
}

type httpClient struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

func NewClient(baseURL, token string, baseLog *logger.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     baseLog.With("component", "SessionClient"),
	}
}

func (c *httpClient) FetchQuestions(ctx context.Context) ([]Question, error) {
	var out struct {
		Questions []Question `json:"Questions"`
	}
	if err := c.do(ctx, http.MethodGet, "/questions", nil, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (c *httpClient) FetchQuestionsBySkills(ctx context.Context, jobID uuid.UUID) ([]Question, error) {
	body := map[string]any{"jobId": jobID.String()}
	// Unlike /questions, this endpoint responds with a bare array.
	var out []Question
	if err := c.do(ctx, http.MethodPost, "/questions/by-skills", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) CreateInterview(ctx context.Context, userID, jobID uuid.UUID, questionIDs []uuid.UUID) error {
	ids := make([]string, 0, len(questionIDs))
	for _, id := range questionIDs {
		ids = append(ids, id.String())
	}
	body := map[string]any{
		"user_id":      userID.String(),
		"job_id":       jobID.String(),
		"question_ids": ids,
	}
	return c.do(ctx, http.MethodPost, "/interview", body, nil)
}

func (c *httpClient) SaveChunkCount(ctx context.Context, userID, jobID, questionID uuid.UUID, chunks int) error {
	body := map[string]any{
		"userID":         userID.String(),
		"jobID":          jobID.String(),
		"questionID":     questionID.String(),
		"numberOfChunks": chunks,
	}
	return c.do(ctx, http.MethodPost, "/interview/chunks", body, nil)
}

func (c *httpClient) UpdateAnswer(ctx context.Context, userID, jobID, questionID uuid.UUID, transcription string) error {
	body := map[string]any{
		"user_id":       userID.String(),
		"job_id":        jobID.String(),
		"question_id":   questionID.String(),
		"transcription": transcription,
	}
	return c.do(ctx, http.MethodPost, "/interview/answer", body, nil)
}

func (c *httpClient) SubmitInterview(ctx context.Context, userID, jobID uuid.UUID) error {
	body := map[string]any{
		"userId": userID.String(),
		"jobId":  jobID.String(),
	}
	return c.do(ctx, http.MethodPost, "/interview/submit", body, nil)
}

func (c *httpClient) InterviewCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/interview/count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrLoginRequired
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
