package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobx-platform/jobx-backend/internal/repos"
	"github.com/jobx-platform/jobx-backend/internal/repos/testutil"
	"github.com/jobx-platform/jobx-backend/internal/requestdata"
	"github.com/jobx-platform/jobx-backend/internal/services"
)

func newQuestionTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewQuestionService(db, log, repos.NewQuestionRepo(db, log), repos.NewJobRepo(db, log), services.QuestionConfig{
		RandomSampleSize:   3,
		BySkillsSampleSize: 5,
	})
	handler := NewQuestionHandler(log, svc)

	router := gin.New()
	router.GET("/questions", handler.GetQuestions)
	router.POST("/questions/by-skills", handler.GetQuestionsBySkills)
	return router, db
}

func TestGetQuestionsHandler_WrapsQuestionsKey(t *testing.T) {
	router, db := newQuestionTestRouter(t)
	ctx := context.Background()

	testutil.SeedQuestion(t, ctx, db, "q1")
	testutil.SeedQuestion(t, ctx, db, "q2")

	req := httptest.NewRequest(http.MethodGet, "/questions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Questions []map[string]any `json:"Questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(out.Questions))
	}
}

func TestGetQuestionsBySkillsHandler_ReturnsBareArray(t *testing.T) {
	router, db := newQuestionTestRouter(t)
	ctx := context.Background()

	testutil.SeedQuestion(t, ctx, db, "left joins", "sql")
	job := testutil.SeedJob(t, ctx, db, "Analyst", []string{"sql"}, nil)

	raw, _ := json.Marshal(map[string]string{"jobId": job.ID.String()})
	req := httptest.NewRequest(http.MethodPost, "/questions/by-skills", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("expected a bare array, got %q: %v", rec.Body.String(), err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 question, got %d", len(out))
	}
	if _, ok := out[0]["_id"]; !ok {
		t.Fatalf("expected _id field in %v", out[0])
	}
}

func TestGetQuestionsBySkillsHandler_UnknownJobIs500(t *testing.T) {
	router, _ := newQuestionTestRouter(t)

	raw, _ := json.Marshal(map[string]string{"jobId": uuid.New().String()})
	req := httptest.NewRequest(http.MethodPost, "/questions/by-skills", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := messageOf(t, rec); got != "Error fetching questions" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestGetCurrentCountOfInterviewsHandler_CountsOwnedInterviews(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	interviewRepo := repos.NewInterviewRepo(db, log)
	runRepo := repos.NewProcessingRunRepo(db, log)
	svc := services.NewInterviewService(db, log, interviewRepo, runRepo, 30*time.Second)
	handler := NewInterviewHandler(log, svc)

	userID := uuid.New()
	ctx := context.Background()
	testutil.SeedInterview(t, ctx, db, userID, uuid.New(), nil)
	testutil.SeedInterview(t, ctx, db, userID, uuid.New(), nil)
	testutil.SeedInterview(t, ctx, db, uuid.New(), uuid.New(), nil)

	router := gin.New()
	router.GET("/interview/count", func(c *gin.Context) {
		rc := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(rc)
		handler.GetCurrentCountOfInterviews(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/interview/count", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 {
		t.Fatalf("expected count=2, got %d", out.Count)
	}
}
