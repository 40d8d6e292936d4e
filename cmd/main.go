package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axleworks/weighbridge-backend/internal/app"
	dataagg "github.com/axleworks/weighbridge-backend/internal/data/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/data/repos"
	"github.com/axleworks/weighbridge-backend/internal/db"
	"github.com/axleworks/weighbridge-backend/internal/handlers"
	"github.com/axleworks/weighbridge-backend/internal/middleware"
	"github.com/axleworks/weighbridge-backend/internal/observability"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
	"github.com/axleworks/weighbridge-backend/internal/server"
	"github.com/axleworks/weighbridge-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Env
	log.Info("Loading environment variables from main...")
	cfg := app.Load(log)

	// Observability
	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "weighbridge",
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", "error", err)
		}
	}()
	metrics := observability.Init(log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()
	metrics.StartPostgresCollector(ctx, log, thePG)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		metrics.StartRedisCollector(ctx, log, addr)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	repoSet := repos.NewSet(thePG, log)

	// Aggregates
	log.Info("Setting up Aggregates from main...")
	hooks := dataagg.NewObservabilityHooks(metrics)
	base := dataagg.BaseDeps{DB: thePG, Log: log, Hooks: hooks}

	authority := services.NewDocketAuthority(log, dataagg.NewGormTxRunner(thePG), repoSet.DocketSequence)

	weighingAgg := dataagg.NewWeighingAggregate(dataagg.WeighingAggregateDeps{
		Base:         base,
		Sessions:     repoSet.Sessions,
		DeckSamples:  repoSet.DeckSamples,
		OverloadRecs: repoSet.OverloadRecs,
		Reference:    repoSet.Reference,
		AxleEntries:  repoSet.AxleEntries,
		Authority:    authority,
	})
	reconcileAgg := dataagg.NewReconcileAggregate(dataagg.ReconcileAggregateDeps{
		Base:         base,
		Sessions:     repoSet.Sessions,
		DeckSamples:  repoSet.DeckSamples,
		OverloadRecs: repoSet.OverloadRecs,
		Reference:    repoSet.Reference,
		AxleEntries:  repoSet.AxleEntries,
		Authority:    authority,
	})
	axleConfigAgg := dataagg.NewAxleConfigAggregate(dataagg.AxleConfigAggregateDeps{
		Base:        base,
		Reference:   repoSet.Reference,
		AxleEntries: repoSet.AxleEntries,
	})

	// Services
	log.Info("Setting up Services from main...")
	auditSink, err := services.NewRedisAuditSink(log)
	if err != nil {
		log.Warn("Audit sink disabled", "error", err)
		auditSink = services.NewNoopAuditSink()
	}
	weighingService := services.NewWeighingService(log, weighingAgg, auditSink, repoSet.Sessions, repoSet.DeckSamples, repoSet.OverloadRecs)
	syncService := services.NewSyncService(log, reconcileAgg, repoSet.SyncBatches, auditSink)
	axleLimits := services.LoadAxleLimits(log, cfg.AxleLimitsPath)
	axleConfigService := services.NewAxleConfigService(log, axleConfigAgg, axleLimits)

	// Handlers
	log.Info("Setting up handlers from main...")
	sessionHandler := handlers.NewSessionHandler(log, weighingService)
	axleProfileHandler := handlers.NewAxleProfileHandler(log, axleConfigService)
	syncHandler := handlers.NewSyncHandler(log, syncService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, cfg.JWTSecretKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:     authMiddleware,
		SessionHandler:     sessionHandler,
		AxleProfileHandler: axleProfileHandler,
		SyncHandler:        syncHandler,
		AllowOrigins:       cfg.AllowOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		log.Info("Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown failed", "error", err)
	}
}
