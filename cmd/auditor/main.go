package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/booknest/internal/audit"
	"github.com/ariefcatur/booknest/internal/config"
	kafkax "github.com/ariefcatur/booknest/internal/kafka"
	"github.com/ariefcatur/booknest/internal/redisx"
	"github.com/ariefcatur/booknest/internal/sqlstore"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Error("config", "err", "KAFKA_BROKERS is required for the auditor")
		os.Exit(1)
	}
	log = log.With("service", cfg.ServiceName+"-auditor")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB
	store, err := sqlstore.Connect(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxConns, log)
	if err != nil {
		log.Error("db connect", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	defer store.Close()
	if cfg.DBMigrate {
		if err := store.Migrate(ctx); err != nil {
			log.Error("db migrate", "err", err)
			os.Exit(1)
		}
	}

	svc := &audit.Service{Store: store, Log: log}

	// Redis (optional): skips replays before they reach the database
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Dedup = redisx.NewDedup(rdb, cfg.AuditorGroup)
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditorGroup, cfg.KafkaTopic, cfg.AuditorWorkers, log)
	log.Info("auditor consumer started", "group", cfg.AuditorGroup, "topic", cfg.KafkaTopic, "workers", cfg.AuditorWorkers)
	if err := cons.Start(ctx, svc.HandleIssuanceEvent); err != nil {
		log.Error("consumer exit", "err", err)
		os.Exit(1)
	}
	log.Info("auditor stopped")
}
