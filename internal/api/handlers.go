// Package api implements the request surface of spec §6: gin handlers
// over the service layer, translating apperr.Error kinds into HTTP
// status codes. Grounded on the teacher's internal/api/handlers.go
// Handlers struct and NewHandlers constructor, generalized from
// string-matched error checks (`err.Error() == "experience not
// found"`) to apperr.As(err).Status().
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/apperr"
	"github.com/oncodeoperations/artemis-core/internal/assessment"
	"github.com/oncodeoperations/artemis-core/internal/contract"
	"github.com/oncodeoperations/artemis-core/internal/evaluation"
	"github.com/oncodeoperations/artemis-core/internal/leaderboard"
	"github.com/oncodeoperations/artemis-core/internal/notify"
	"github.com/oncodeoperations/artemis-core/internal/payment"
	"github.com/oncodeoperations/artemis-core/internal/realtime"
	"github.com/oncodeoperations/artemis-core/internal/store"
	"github.com/oncodeoperations/artemis-core/internal/store/postgres"
)

// Handlers holds every service this core's request surface dispatches
// to, the teacher's own pattern of one struct embedding every
// repository/service the router needs, generalized to this domain's
// service set.
type Handlers struct {
	Evaluation    *evaluation.Pipeline
	Leaderboard   *leaderboard.Service
	Contracts     *contract.Service
	Payments      *payment.Orchestrator
	Assessments   *assessment.Service
	Notifications *notify.Service
	Users         store.UserStore
	Hub           *realtime.Hub

	redis              *redis.Client
	dbPinger           *postgres.Pinger
	clerkWebhookSecret string
	log                *logrus.Entry
}

func NewHandlers(
	evaluation *evaluation.Pipeline,
	leaderboard *leaderboard.Service,
	contracts *contract.Service,
	payments *payment.Orchestrator,
	assessments *assessment.Service,
	notifications *notify.Service,
	users store.UserStore,
	hub *realtime.Hub,
	redisClient *redis.Client,
	dbPinger *postgres.Pinger,
	clerkWebhookSecret string,
	log *logrus.Entry,
) *Handlers {
	return &Handlers{
		Evaluation:         evaluation,
		Leaderboard:        leaderboard,
		Contracts:          contracts,
		Payments:           payments,
		Assessments:        assessments,
		Notifications:      notifications,
		Users:              users,
		Hub:                hub,
		redis:              redisClient,
		dbPinger:           dbPinger,
		clerkWebhookSecret: clerkWebhookSecret,
		log:                log,
	}
}

// HealthCheck mirrors the teacher's unauthenticated liveness probe.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "artemis-core",
	})
}

// ReadinessCheck handles the supplemented GET /health/ready: a real
// database round trip via a bare database/sql connection, separate
// from the gorm pool every request handler uses, so a readiness probe
// never competes with live traffic for a pooled connection.
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	if err := h.dbPinger.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError is the one place an apperr.Error is translated to an
// HTTP response, per spec §7's error taxonomy.
func respondError(c *gin.Context, err error) {
	appErr := apperr.As(err)
	body := gin.H{"error": appErr.Message, "kind": appErr.Kind}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	if appErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
	}
	c.JSON(appErr.Status(), body)
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}
