package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"

	"github.com/gulali-id/backend-gulali/internal/alert"
	"github.com/gulali-id/backend-gulali/internal/common"
	"github.com/gulali-id/backend-gulali/internal/config"
	"github.com/gulali-id/backend-gulali/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	var mailer common.EmailSender = common.NopEmailSender{}
	emailTo := ""
	if cfg.AlertEmailEnabled && len(cfg.AlertEmailTo) > 0 {
		emailTo = strings.Join(cfg.AlertEmailTo, ",")
		// Deployments plug an SMTP sender in here; until then alerts are
		// captured in the structured log only.
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisOpts.Addr,
			Password: redisOpts.Password,
			DB:       redisOpts.DB,
		},
		asynq.Config{
			Concurrency: 4,
			Queues:      map[string]int{cfg.AlertQueue: 1},
		},
	)

	mux := asynq.NewServeMux()
	alert.NewWorker(logger, mailer, emailTo).Register(mux)

	logger.Info().Str("queue", cfg.AlertQueue).Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}

	<-ctx.Done()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
