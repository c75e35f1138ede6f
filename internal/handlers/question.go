package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/services"
)

type QuestionHandler struct {
	log             *logger.Logger
	questionService services.QuestionService
}

func NewQuestionHandler(log *logger.Logger, questionService services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		log:             log.With("handler", "QuestionHandler"),
		questionService: questionService,
	}
}

func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	questions, err := h.questionService.GetRandomQuestions(c.Request.Context())
	if err != nil {
		h.log.Error("GetQuestions failed", "error", err)
		RespondMessage(c, http.StatusInternalServerError, "Error fetching questions")
		return
	}
	RespondOK(c, gin.H{"Questions": questions})
}

type questionsBySkillsRequest struct {
	JobID string `json:"jobId"`
}

func (h *QuestionHandler) GetQuestionsBySkills(c *gin.Context) {
	var req questionsBySkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid job id")
		return
	}

	questions, err := h.questionService.GetQuestionsBySkills(c.Request.Context(), jobID)
	if err != nil {
		// An unresolved job id surfaces as a fetch failure to the client; the
		// service already logged the distinction.
		if !errors.Is(err, services.ErrJobNotFound) {
			h.log.Error("GetQuestionsBySkills failed", "error", err, "job_id", jobID)
		}
		RespondMessage(c, http.StatusInternalServerError, "Error fetching questions")
		return
	}
	RespondOK(c, questions)
}
