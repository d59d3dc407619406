package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/hr-task-review-api/internal/dto"
	apierrors "github.com/yukikurage/hr-task-review-api/internal/errors"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"github.com/yukikurage/hr-task-review-api/internal/services"
)

// SubmissionHandler serves the submit and review workflow.
type SubmissionHandler struct {
	submissionService *services.SubmissionService
	reviewService     *services.ReviewService
}

func NewSubmissionHandler(submissionService *services.SubmissionService, reviewService *services.ReviewService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		reviewService:     reviewService,
	}
}

// Submit records the assignee's work for a task
func (h *SubmissionHandler) Submit(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type SubmitRequest struct {
		Report  string `json:"report"`
		FileURL string `json:"file_url" binding:"max=2048"`
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), services.SubmitInput{
		WorkspaceID: caller.WorkspaceID,
		TaskID:      taskID,
		UserID:      caller.UserID,
		Report:      req.Report,
		FileURL:     req.FileURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubmissionDTO(*submission))
}

// GetSubmission returns a submission with its current escalation state
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	submissionID, ok := parseIDParam(c, "submission_id")
	if !ok {
		return
	}

	view, err := h.submissionService.GetSubmission(caller.WorkspaceID, submissionID, caller.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionDetailDTO(view.Submission, view.Escalation))
}

func (h *SubmissionHandler) GetEscalation(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	submissionID, ok := parseIDParam(c, "submission_id")
	if !ok {
		return
	}

	state, err := h.submissionService.GetSubmissionEscalation(caller.WorkspaceID, submissionID, caller.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// Review approves or rejects a pending submission
func (h *SubmissionHandler) Review(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	submissionID, ok := parseIDParam(c, "submission_id")
	if !ok {
		return
	}

	type ReviewRequest struct {
		Decision      models.ReviewDecision `json:"decision" binding:"required"`
		QualityPoints *int                  `json:"quality_points"`
		BonusPoints   *int                  `json:"bonus_points"`
		Remarks       string                `json:"remarks"`
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	submission, err := h.reviewService.Review(c.Request.Context(), services.ReviewInput{
		WorkspaceID:   caller.WorkspaceID,
		SubmissionID:  submissionID,
		ReviewerID:    caller.UserID,
		Decision:      req.Decision,
		QualityPoints: req.QualityPoints,
		BonusPoints:   req.BonusPoints,
		Remarks:       req.Remarks,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionDTO(*submission))
}

// ReviewQueue lists the pending submissions the caller may review
func (h *SubmissionHandler) ReviewQueue(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	items, err := h.reviewService.ReviewQueue(caller.WorkspaceID, caller.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReviewQueueResponse(items))
}
