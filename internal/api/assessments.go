package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oncodeoperations/artemis-core/internal/assessment"
	"github.com/oncodeoperations/artemis-core/internal/auth"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type createAssessmentRequest struct {
	Title            string            `json:"title" binding:"required"`
	Profession       string            `json:"profession" binding:"required"`
	RoleTitle        string            `json:"role" binding:"required"`
	Skills           []string          `json:"skills"`
	Difficulty       domain.Difficulty `json:"difficulty" binding:"required"`
	QuestionCount    int               `json:"question_count" binding:"required"`
	TimeLimitMinutes int               `json:"time_limit_minutes" binding:"required"`
}

// CreateAssessment handles POST /api/assessments, spec §4.6/§6.1.
func (h *Handlers) CreateAssessment(c *gin.Context) {
	identity := auth.MustIdentity(c)
	var req createAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	a, err := h.Assessments.CreateAssessment(c.Request.Context(), assessment.CreateAssessmentInput{
		EmployerID:       identity.User.ID,
		Title:            req.Title,
		Profession:       req.Profession,
		RoleTitle:        req.RoleTitle,
		Skills:           req.Skills,
		Difficulty:       req.Difficulty,
		QuestionCount:    req.QuestionCount,
		TimeLimitMinutes: req.TimeLimitMinutes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ListAssessments handles the supplemented GET /api/assessments
// worklist for the employer who created them.
func (h *Handlers) ListAssessments(c *gin.Context) {
	identity := auth.MustIdentity(c)
	items, err := h.Assessments.ListForEmployer(c.Request.Context(), identity.User.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// DeactivateAssessment handles the supplemented DELETE /api/assessments/{id}.
func (h *Handlers) DeactivateAssessment(c *gin.Context) {
	identity := auth.MustIdentity(c)
	if err := h.Assessments.DeactivateAssessment(c.Request.Context(), c.Param("id"), identity.User.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createInvitationRequest struct {
	AssessmentID    string `json:"assessment_id" binding:"required"`
	FreelancerID    string `json:"freelancer_id"`
	FreelancerEmail string `json:"freelancer_email"`
}

// CreateInvitation handles POST /api/assessments/invitations.
func (h *Handlers) CreateInvitation(c *gin.Context) {
	identity := auth.MustIdentity(c)
	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	inv, err := h.Assessments.CreateInvitation(c.Request.Context(), req.AssessmentID, identity.User.ID, req.FreelancerID, req.FreelancerEmail, 7*24*time.Hour)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// GetInvitationByToken handles GET /api/assessments/invitations/token/{token}.
func (h *Handlers) GetInvitationByToken(c *gin.Context) {
	inv, err := h.Assessments.GetInvitationByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

type startSessionRequest struct {
	Token string `json:"token" binding:"required"`
}

// StartSession handles POST /api/assessments/sessions/start.
func (h *Handlers) StartSession(c *gin.Context) {
	identity := auth.MustIdentity(c)
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	session, err := h.Assessments.StartSession(c.Request.Context(), req.Token, identity.User.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage handles POST /api/assessments/sessions/{id}/message.
func (h *Handlers) SendMessage(c *gin.Context) {
	identity := auth.MustIdentity(c)
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	session, err := h.Assessments.SendMessage(c.Request.Context(), c.Param("id"), identity.User.ID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
