package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/bluesky"
	"github.com/skyreach/outreach-server-go/internal/config"
	"github.com/skyreach/outreach-server-go/internal/database"
	"github.com/skyreach/outreach-server-go/internal/handler"
	"github.com/skyreach/outreach-server-go/internal/jobs"
	"github.com/skyreach/outreach-server-go/internal/middleware"
	"github.com/skyreach/outreach-server-go/internal/redis"
	"github.com/skyreach/outreach-server-go/internal/repository"
	"github.com/skyreach/outreach-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	accountRepo := repository.NewAccountRepository(db.DB)
	campaignRepo := repository.NewCampaignRepository(db.DB)
	targetListRepo := repository.NewTargetListRepository(db.DB)
	templateRepo := repository.NewTemplateRepository(db.DB)
	settingRepo := repository.NewSettingRepository(db.DB)
	logRepo := repository.NewLogEntryRepository(db.DB)

	blueskyClient := bluesky.NewClient(cfg.BlueskyServiceURL, cfg.BlueskyIdentifier, cfg.BlueskyAppPassword, accountRepo)
	blueskyClient.InitShared(context.Background())
	defer blueskyClient.CloseShared()

	logService := service.NewLogService(logRepo)
	settingsService := service.NewSettingsService(settingRepo, cfg.EncryptionKey)
	accountService := service.NewAccountService(accountRepo, cfg.EncryptionKey)
	templateService := service.NewTemplateService(templateRepo)
	targetService := service.NewTargetService(targetListRepo, campaignRepo)
	campaignService := service.NewCampaignService(campaignRepo, accountRepo, templateRepo)
	rateLimiter := service.NewRateLimiter(accountRepo, campaignRepo, settingsService)
	accountLock := service.NewAccountLock(redisClient, cfg.LockTTL())
	dispatcher := service.NewDispatcher(
		campaignRepo, templateRepo, targetListRepo, accountService, rateLimiter,
		accountLock, settingsService, logService, blueskyClient,
	)
	queueService := service.NewQueueService(dispatcher)

	accountsHandler := handler.NewAccountsHandler(accountService, rateLimiter, blueskyClient)
	campaignsHandler := handler.NewCampaignsHandler(campaignService, queueService)
	targetsHandler := handler.NewTargetsHandler(targetService)
	templatesHandler := handler.NewTemplatesHandler(templateService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	logsHandler := handler.NewLogsHandler(logService)
	followHandler := handler.NewFollowHandler(blueskyClient)
	statsHandler := handler.NewStatsHandler(accountRepo, campaignRepo, logService)

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/accounts", accountsHandler.Routes())
		r.Mount("/campaigns", campaignsHandler.Routes())
		r.Mount("/target-lists", targetsHandler.Routes())
		r.Mount("/templates", templatesHandler.Routes())
		r.Mount("/settings", settingsHandler.Routes())
		r.Mount("/logs", logsHandler.Routes())
		r.Mount("/follow", followHandler.Routes())
		r.Get("/stats", statsHandler.Overview)
	})

	cleanupJob := jobs.NewCleanupJob(accountRepo, logRepo, cfg.LogRetention(), config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Let in-flight campaign runs finish before tearing down connections.
	queueService.Wait()

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
