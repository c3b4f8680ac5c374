package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/auth"
	"github.com/oncodeoperations/artemis-core/internal/contract"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

type createContractRequest struct {
	Name             string            `json:"name" binding:"required"`
	Description      string            `json:"description"`
	Category         string            `json:"category"`
	Type             domain.ContractType `json:"type" binding:"required"`
	Budget           float64           `json:"budget"`
	HourlyRate       float64           `json:"hourly_rate"`
	HoursPerWeek     float64           `json:"hours_per_week"`
	Currency         string            `json:"currency" binding:"required"`
	ContributorEmail string            `json:"contributor_email"`
	Milestones       []domain.Milestone `json:"milestones"`
}

// CreateContract handles POST /api/contracts, spec §4.4/§6.1.
func (h *Handlers) CreateContract(c *gin.Context) {
	identity := auth.MustIdentity(c)
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.Contracts.CreateContract(c.Request.Context(), contract.CreateInput{
		CreatorID:        identity.User.ID,
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Type:             req.Type,
		Budget:           req.Budget,
		HourlyRate:       req.HourlyRate,
		HoursPerWeek:     req.HoursPerWeek,
		Currency:         req.Currency,
		ContributorEmail: req.ContributorEmail,
		Milestones:       req.Milestones,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

type updateContractRequest struct {
	Name         *string               `json:"name"`
	Description  *string               `json:"description"`
	Category     *string               `json:"category"`
	Budget       *float64              `json:"budget"`
	HourlyRate   *float64              `json:"hourly_rate"`
	HoursPerWeek *float64              `json:"hours_per_week"`
	Status       *domain.ContractStatus `json:"status"`
}

// UpdateContract handles PUT /api/contracts/{id}.
func (h *Handlers) UpdateContract(c *gin.Context) {
	identity := auth.MustIdentity(c)
	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.Contracts.UpdateContract(c.Request.Context(), c.Param("id"), identity.User.ID, contract.UpdateInput{
		Name: req.Name, Description: req.Description, Category: req.Category,
		Budget: req.Budget, HourlyRate: req.HourlyRate, HoursPerWeek: req.HoursPerWeek,
		Status: req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type transitionContractRequest struct {
	Status domain.ContractStatus `json:"status" binding:"required"`
}

// TransitionContractStatus handles PATCH /api/contracts/{id}/status.
func (h *Handlers) TransitionContractStatus(c *gin.Context) {
	identity := auth.MustIdentity(c)
	var req transitionContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	updated, err := h.Contracts.TransitionContract(c.Request.Context(), c.Param("id"), identity.User.ID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type milestoneActionRequest struct {
	Action          contract.MilestoneAction `json:"action" binding:"required"`
	SubmissionNote  string                   `json:"submission_note"`
	SubmissionURL   string                   `json:"submission_url"`
	Feedback        string                   `json:"feedback"`
	PaymentMethodID string                   `json:"payment_method_id"`
}

// UpdateMilestoneStatus handles PATCH /api/contracts/{id}/milestones/{index}/status.
func (h *Handlers) UpdateMilestoneStatus(c *gin.Context) {
	identity := auth.MustIdentity(c)
	order, err := milestoneOrderParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req milestoneActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.Contracts.UpdateMilestone(c.Request.Context(), c.Param("id"), identity.User.ID, order, req.Action, contract.MilestonePayload{
		SubmissionNote:  req.SubmissionNote,
		SubmissionURL:   req.SubmissionURL,
		Feedback:        req.Feedback,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ListContracts handles GET /api/contracts. Each returned contract is
// passed through EnsureLinked, the "view" half of spec §4.4's
// first-contact-wins auto-linking rule.
func (h *Handlers) ListContracts(c *gin.Context) {
	identity := auth.MustIdentity(c)
	page, limit := pagination(c)
	items, total, err := h.Contracts.ListForUser(c.Request.Context(), identity.User.ID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range items {
		if linked, err := h.Contracts.EnsureLinked(c.Request.Context(), &items[i], identity.User.ID, identity.User.Email); err == nil {
			items[i] = *linked
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// GetContract handles GET /api/contracts/{id}, a supplemented
// single-resource view endpoint that also triggers auto-linking.
func (h *Handlers) GetContract(c *gin.Context) {
	identity := auth.MustIdentity(c)
	ctr, err := h.Contracts.GetContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	linked, err := h.Contracts.EnsureLinked(c.Request.Context(), ctr, identity.User.ID, identity.User.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, linked)
}

// DeleteContract handles DELETE /api/contracts/{id}.
func (h *Handlers) DeleteContract(c *gin.Context) {
	identity := auth.MustIdentity(c)
	if err := h.Contracts.DeleteContract(c.Request.Context(), c.Param("id"), identity.User.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func milestoneOrderParam(c *gin.Context) (int, error) {
	order, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, "invalid milestone index")
	}
	return order, nil
}
