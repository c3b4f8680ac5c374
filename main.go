package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/api"
	"github.com/oncodeoperations/artemis-core/internal/assessment"
	"github.com/oncodeoperations/artemis-core/internal/auth"
	"github.com/oncodeoperations/artemis-core/internal/config"
	"github.com/oncodeoperations/artemis-core/internal/contract"
	"github.com/oncodeoperations/artemis-core/internal/domain"
	"github.com/oncodeoperations/artemis-core/internal/evaluation"
	"github.com/oncodeoperations/artemis-core/internal/leaderboard"
	"github.com/oncodeoperations/artemis-core/internal/logging"
	"github.com/oncodeoperations/artemis-core/internal/middleware"
	"github.com/oncodeoperations/artemis-core/internal/notify"
	"github.com/oncodeoperations/artemis-core/internal/payment"
	"github.com/oncodeoperations/artemis-core/internal/ports"
	"github.com/oncodeoperations/artemis-core/internal/ports/github"
	"github.com/oncodeoperations/artemis-core/internal/ports/llm"
	"github.com/oncodeoperations/artemis-core/internal/ports/mailer"
	"github.com/oncodeoperations/artemis-core/internal/ports/stripe"
	"github.com/oncodeoperations/artemis-core/internal/realtime"
	"github.com/oncodeoperations/artemis-core/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.Environment)
	log := logging.Component(logger, "main")

	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	redisClient, err := postgres.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}

	dbPinger, err := postgres.NewPinger(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize readiness pinger")
	}

	users := postgres.NewUserStore(db)
	contracts := postgres.NewContractStore(db)
	withdrawals := postgres.NewWithdrawalStore(db)
	notifications := postgres.NewNotificationStore(db)
	leaderboardStore := postgres.NewLeaderboardStore(db)
	assessmentStore := postgres.NewAssessmentStore(db)
	invitations := postgres.NewInvitationStore(db)
	sessions := postgres.NewSessionStore(db)

	codeHost := github.New(cfg.GitHubToken, logging.Component(logger, "github"))
	chatModel := llm.New(cfg.OpenAIKey, cfg.OpenAIBase, "gpt-4o-mini", logging.Component(logger, "llm"))
	gateway := stripe.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, logging.Component(logger, "stripe"))

	// Mailer is optional: without SMTP configured, invitation and
	// contract emails are simply skipped (the services check mailer ==
	// nil before sending). Keeping it a nil ports.Mailer rather than a
	// nil *mailer.Client avoids the typed-nil-interface trap.
	var mail ports.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, logging.Component(logger, "mailer"))
	}

	verifier, err := auth.NewVerifier(cfg.JWTPublicKey, cfg.JWTIssuer, users, logging.Component(logger, "auth"))
	if err != nil {
		log.WithError(err).Fatal("failed to initialize auth verifier")
	}

	hub := realtime.NewHub(redisClient, cfg.AllowedOrigins, logging.Component(logger, "realtime"))
	notifier := notify.New(notifications, hub, logging.Component(logger, "notify"))

	paymentOrchestrator := payment.New(gateway, contracts, users, withdrawals, notifier, cfg.StripeWebhookSecret, logging.Component(logger, "payment"))
	contractService := contract.New(contracts, users, paymentOrchestrator, notifier, mail, logging.Component(logger, "contract"))
	assessmentService := assessment.New(assessmentStore, invitations, sessions, chatModel, notifier, mail, logging.Component(logger, "assessment"))
	leaderboardService := leaderboard.New(leaderboardStore)

	evalCache := evaluation.NewCache(redisClient, cfg.CacheTTL, cfg.CacheMaxEntries)
	pipeline := evaluation.NewPipeline(codeHost, chatModel, evalCache, leaderboardStore, 0, logging.Component(logger, "evaluation"))

	handlers := api.NewHandlers(
		pipeline,
		leaderboardService,
		contractService,
		paymentOrchestrator,
		assessmentService,
		notifier,
		users,
		hub,
		redisClient,
		dbPinger,
		cfg.ClerkWebhookSecret,
		logging.Component(logger, "api"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := setupRouter(handlers, verifier, cfg, logging.Component(logger, "http"))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// setupRouter mirrors the teacher's setupRouter(handlers, cfg) shape:
// a flat middleware stack ahead of public/protected/admin route
// groups, generalized from the teacher's single admin guard to
// per-route auth.RequireRole/RequireVerified checks.
func setupRouter(h *api.Handlers, verifier *auth.Verifier, cfg *config.Config, log *logrus.Entry) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(log))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(cfg.RateLimitWindow, cfg.RateLimitMax, cfg.EvalRateLimitWindow, cfg.EvalRateLimitMax))

	router.GET("/health", h.HealthCheck)
	router.GET("/health/ready", h.ReadinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api_ := router.Group("/api")
	{
		api_.POST("/evaluate", h.Evaluate)
		api_.GET("/leaderboard", h.Leaderboard)

		api_.POST("/webhooks/stripe", h.StripeWebhook)
		api_.POST("/webhooks/clerk", h.ClerkWebhook)

		api_.GET("/assessments/invitations/token/:token", h.GetInvitationByToken)

		authed := api_.Group("/")
		authed.Use(auth.RequireAuth(verifier))
		{
			authed.GET("/realtime/ws", h.RealtimeUpgrade)

			authed.POST("/contracts", h.CreateContract)
			authed.GET("/contracts", h.ListContracts)
			authed.GET("/contracts/:id", h.GetContract)
			authed.PUT("/contracts/:id", h.UpdateContract)
			authed.PATCH("/contracts/:id/status", h.TransitionContractStatus)
			authed.PATCH("/contracts/:id/milestones/:index/status", h.UpdateMilestoneStatus)
			authed.DELETE("/contracts/:id", h.DeleteContract)

			authed.POST("/payments/setup-intent", h.CreateSetupIntent)
			authed.GET("/payments/methods", h.ListPaymentMethods)
			authed.POST("/payments/milestones/:contractId/:milestoneIndex/pay", h.PayMilestone)
			authed.GET("/payments/balance", h.Balance)
			authed.PUT("/payments/withdrawal-info", h.UpdateWithdrawalInfo)
			authed.POST("/payments/withdraw", h.RequestWithdrawal)
			authed.GET("/payments/withdrawals", h.ListWithdrawals)

			authed.GET("/notifications", h.ListNotifications)
			authed.GET("/notifications/unread-count", h.UnreadCount)
			authed.PATCH("/notifications/:id/read", h.MarkNotificationRead)
			authed.PATCH("/notifications/read-all", h.MarkAllNotificationsRead)
			authed.DELETE("/notifications/:id", h.DeleteNotification)

			authed.POST("/assessments/sessions/start", h.StartSession)
			authed.POST("/assessments/sessions/:id/message", h.SendMessage)

			employer := authed.Group("/")
			employer.Use(auth.RequireRole(domain.RoleEmployer, domain.RoleAdmin))
			{
				employer.POST("/assessments", h.CreateAssessment)
				employer.GET("/assessments", h.ListAssessments)
				employer.DELETE("/assessments/:id", h.DeactivateAssessment)
				employer.POST("/assessments/invitations", h.CreateInvitation)
			}

			admin := authed.Group("/")
			admin.Use(auth.RequireRole(domain.RoleAdmin))
			{
				admin.GET("/payments/admin/withdrawals", h.AdminListWithdrawals)
				admin.PATCH("/payments/admin/withdrawals/:id", h.AdminProcessWithdrawal)
			}
		}
	}

	return router
}
