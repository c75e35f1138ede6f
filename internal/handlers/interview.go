package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/requestdata"
	"github.com/jobx-platform/jobx-backend/internal/services"
)

type InterviewHandler struct {
	log              *logger.Logger
	interviewService services.InterviewService
}

func NewInterviewHandler(log *logger.Logger, interviewService services.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		log:              log.With("handler", "InterviewHandler"),
		interviewService: interviewService,
	}
}

type createInterviewRequest struct {
	UserID      string   `json:"user_id"`
	JobID       string   `json:"job_id"`
	QuestionIDs []string `json:"question_ids"`
}

func (h *InterviewHandler) CreateInterview(c *gin.Context) {
	var req createInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid job id")
		return
	}
	questionIDs := make([]uuid.UUID, 0, len(req.QuestionIDs))
	for _, raw := range req.QuestionIDs {
		qid, err := uuid.Parse(raw)
		if err != nil {
			RespondMessage(c, http.StatusBadRequest, "Invalid question id")
			return
		}
		questionIDs = append(questionIDs, qid)
	}

	interview, err := h.interviewService.CreateInterview(c.Request.Context(), userID, jobID, questionIDs)
	if err != nil {
		if errors.Is(err, services.ErrInterviewExists) {
			RespondMessage(c, http.StatusBadRequest, "Interview already exists for this user and job")
			return
		}
		h.log.Error("CreateInterview failed", "error", err, "user_id", userID, "job_id", jobID)
		RespondMessage(c, http.StatusInternalServerError, "Error creating interview")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Interview created successfully",
		"interview": interview,
	})
}

type saveChunkNumberRequest struct {
	UserID         string `json:"userID"`
	JobID          string `json:"jobID"`
	QuestionID     string `json:"questionID"`
	NumberOfChunks int    `json:"numberOfChunks"`
}

func (h *InterviewHandler) SaveChunkNumber(c *gin.Context) {
	var req saveChunkNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid job id")
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid question id")
		return
	}

	err = h.interviewService.SaveChunkCount(c.Request.Context(), userID, jobID, questionID, req.NumberOfChunks)
	switch {
	case err == nil:
		RespondMessage(c, http.StatusOK, "Number of chunks saved successfully!")
	case errors.Is(err, services.ErrInterviewNotFound):
		RespondMessage(c, http.StatusBadRequest, "No Interview Exists!")
	case errors.Is(err, services.ErrQuestionNotFound):
		RespondMessage(c, http.StatusBadRequest, "Question doesn't exist in the interview!")
	default:
		h.log.Error("SaveChunkNumber failed", "error", err, "user_id", userID, "job_id", jobID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving number of chunks"})
	}
}

type updateAnswerRequest struct {
	UserID        string `json:"user_id"`
	JobID         string `json:"job_id"`
	QuestionID    string `json:"question_id"`
	Transcription string `json:"transcription"`
}

func (h *InterviewHandler) UpdateAnswer(c *gin.Context) {
	var req updateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid job id")
		return
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid question id")
		return
	}

	err = h.interviewService.UpdateAnswer(c.Request.Context(), userID, jobID, questionID, req.Transcription)
	switch {
	case err == nil:
		RespondMessage(c, http.StatusOK, "Answer updated successfully.")
	case errors.Is(err, services.ErrInterviewNotFound):
		RespondMessage(c, http.StatusNotFound, "Interview not found")
	case errors.Is(err, services.ErrQuestionNotFound):
		RespondMessage(c, http.StatusNotFound, "Question not found")
	case errors.Is(err, services.ErrAnswerExists):
		RespondMessage(c, http.StatusConflict, "Answer already exists and cannot be updated.")
	default:
		h.log.Error("UpdateAnswer failed", "error", err, "user_id", userID, "job_id", jobID)
		RespondMessage(c, http.StatusInternalServerError, "Failed to update answer. Please try again.")
	}
}

type submitInterviewRequest struct {
	UserID string `json:"userId"`
	JobID  string `json:"jobId"`
}

func (h *InterviewHandler) SubmitInterview(c *gin.Context) {
	var req submitInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		RespondMessage(c, http.StatusBadRequest, "Invalid job id")
		return
	}

	err = h.interviewService.SubmitInterview(c.Request.Context(), userID, jobID)
	switch {
	case err == nil:
		RespondMessage(c, http.StatusOK, "Interview submitted successfully")
	case errors.Is(err, services.ErrInterviewNotFound):
		RespondMessage(c, http.StatusBadRequest, "No interview found!")
	default:
		h.log.Error("SubmitInterview failed", "error", err, "user_id", userID, "job_id", jobID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *InterviewHandler) GetCurrentCountOfInterviews(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	count, err := h.interviewService.CountForUser(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("GetCurrentCountOfInterviews failed", "error", err, "user_id", rd.UserID)
		RespondMessage(c, http.StatusInternalServerError, "Failed to get the count data. Please try again")
		return
	}
	RespondOK(c, gin.H{"count": count})
}
