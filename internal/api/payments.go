package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/auth"
	"github.com/oncodeoperations/artemis-core/internal/domain"
)

// CreateSetupIntent handles POST /api/payments/setup-intent, spec §4.5/§6.1.
func (h *Handlers) CreateSetupIntent(c *gin.Context) {
	identity := auth.MustIdentity(c)
	secret, err := h.Payments.CreateSetupIntent(c.Request.Context(), identity.User)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_secret": secret})
}

// ListPaymentMethods handles GET /api/payments/methods.
func (h *Handlers) ListPaymentMethods(c *gin.Context) {
	identity := auth.MustIdentity(c)
	methods, err := h.Payments.ListPaymentMethods(c.Request.Context(), identity.User)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"methods": methods})
}

type payMilestoneRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
}

// idempotencyKeyTTL bounds how long a retried Idempotency-Key is
// remembered, per the SUPPLEMENTED "exactly-once money movement"
// requirement — long enough to cover a client's retry window, short
// enough not to leak memory in Redis forever.
const idempotencyKeyTTL = 24 * time.Hour

// PayMilestone handles POST /api/payments/milestones/{contractId}/{milestoneIndex}/pay.
// The Idempotency-Key header (supplemented, spec §4.5's exactly-once
// emphasis) is recorded in Redis via SETNX so a client retry after a
// network blip short-circuits instead of firing a second charge.
func (h *Handlers) PayMilestone(c *gin.Context) {
	identity := auth.MustIdentity(c)
	order, err := milestoneOrderParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if key := c.GetHeader("Idempotency-Key"); key != "" {
		first, err := h.redis.SetNX(c.Request.Context(), idempotencyRedisKey(key), "1", idempotencyKeyTTL).Result()
		if err == nil && !first {
			c.JSON(http.StatusOK, gin.H{"status": "already processed"})
			return
		}
	}

	var req payMilestoneRequest
	_ = c.ShouldBindJSON(&req)

	ctr, err := h.Contracts.GetContract(c.Request.Context(), c.Param("contractId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if ctr.CreatorID != identity.User.ID {
		respondError(c, apperr.New(apperr.KindForbidden, "only the creator may pay a milestone"))
		return
	}

	if err := h.Payments.ChargeMilestone(c.Request.Context(), identity.User, ctr, order, req.PaymentMethodID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "charged"})
}

func idempotencyRedisKey(key string) string {
	return "artemis:idem:" + key
}

// Balance handles GET /api/payments/balance.
func (h *Handlers) Balance(c *gin.Context) {
	identity := auth.MustIdentity(c)
	c.JSON(http.StatusOK, gin.H{
		"balance":        identity.User.Balance,
		"total_earnings": identity.User.TotalEarnings,
	})
}

// UpdateWithdrawalInfo handles PUT /api/payments/withdrawal-info.
func (h *Handlers) UpdateWithdrawalInfo(c *gin.Context) {
	identity := auth.MustIdentity(c)
	var info domain.BankInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	identity.User.BankInfo = &info
	if err := h.Users.Update(c.Request.Context(), identity.User); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity.User)
}

type withdrawRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	Currency string  `json:"currency" binding:"required"`
}

// RequestWithdrawal handles POST /api/payments/withdraw.
func (h *Handlers) RequestWithdrawal(c *gin.Context) {
	identity := auth.MustIdentity(c)
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	w, err := h.Payments.RequestWithdrawal(c.Request.Context(), identity.User, req.Amount, req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// ListWithdrawals handles GET /api/payments/withdrawals.
func (h *Handlers) ListWithdrawals(c *gin.Context) {
	identity := auth.MustIdentity(c)
	page, limit := pagination(c)
	items, total, err := h.Payments.ListWithdrawalsForUser(c.Request.Context(), identity.User.ID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// AdminListWithdrawals handles the supplemented GET
// /api/payments/admin/withdrawals worklist endpoint.
func (h *Handlers) AdminListWithdrawals(c *gin.Context) {
	page, limit := pagination(c)
	items, total, err := h.Payments.ListAllWithdrawals(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

type processWithdrawalRequest struct {
	Status    domain.WithdrawalStatus `json:"status" binding:"required"`
	AdminNote string                  `json:"admin_note"`
}

// AdminProcessWithdrawal handles PATCH /api/payments/admin/withdrawals/{id}.
func (h *Handlers) AdminProcessWithdrawal(c *gin.Context) {
	var req processWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	w, err := h.Payments.ProcessWithdrawal(c.Request.Context(), c.Param("id"), req.Status, req.AdminNote)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// StripeWebhook handles POST /api/webhooks/stripe. The route must be
// registered before any JSON body-binding middleware consumes the
// request body, per spec §6.1 — the raw bytes are what the signature
// was computed over.
func (h *Handlers) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}
	if err := h.Payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
