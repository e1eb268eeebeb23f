// main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tracebit-io/tracebit/config"
	"github.com/tracebit-io/tracebit/controller"
	"github.com/tracebit-io/tracebit/crypto"
	"github.com/tracebit-io/tracebit/dao"
	"github.com/tracebit-io/tracebit/db"
	"github.com/tracebit-io/tracebit/logging"
	"github.com/tracebit-io/tracebit/middleware"
	"github.com/tracebit-io/tracebit/router"
	"github.com/tracebit-io/tracebit/service"
)

func main() {
	if err := config.InitConfig(); err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logging.InitLogger()
	defer logging.Sync()

	warnInsecureDefaults()

	if err := crypto.Init(config.GetString("encryption.secret"), crypto.Options{
		LegacyKeyDerivation: config.GetBool("encryption.legacy_key_derivation"),
		LegacyDecrypt:       config.GetBool("encryption.legacy_decrypt"),
	}); err != nil {
		logging.Fatal("Failed to initialize field encryption", zap.Error(err))
	}

	if err := db.InitDB(); err != nil {
		logging.Fatal("Failed to connect to the event store", zap.Error(err))
	}
	defer db.CloseDB()

	if err := db.InitRedis(); err != nil {
		logging.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	pool := service.NewWorkerPool(
		config.GetInt("worker.pool_size"),
		config.GetInt("worker.queue_capacity"),
	)

	webhooks := service.NewWebhookService(
		config.WebhookTimeout(),
		config.GetBool("webhook.legacy_signature"),
	)
	alertService := service.NewAlertRuleService(dao.NewAlertRuleDAO(db.DB), webhooks)
	auditService := service.NewAuditLogService(dao.NewAuditLogDAO(db.DB), db.AuditCache{}, alertService, pool)
	auditService.StartRetentionPurge(config.GetInt("retention.days"))

	gate := middleware.NewAPIKeyAuth(
		config.APIKeys(),
		config.GetInt("api.rate_limit"),
		config.RateLimitReset(),
	)

	r := router.SetupRouter(gate,
		controller.NewAuditLogController(auditService),
		controller.NewAlertRuleController(alertService),
	)

	srv := &http.Server{
		Addr:    ":" + config.GetString("server.port"),
		Handler: r,
	}

	go func() {
		logging.Info("Starting Tracebit server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", zap.Error(err))
	}

	gate.Close()
	auditService.StopRetentionPurge()
	pool.Close()

	logging.Info("Server exited")
}

func warnInsecureDefaults() {
	if config.UsingDefaultAPIKey() {
		logging.Warn("Using the default API key; set api.keys before exposing this service")
	}
	if config.UsingDefaultEncryptionSecret() {
		logging.Warn("Using the default encryption secret; set encryption.secret before storing real data")
	}
}
