package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/booknest/internal/config"
	"github.com/ariefcatur/booknest/internal/httpx"
	kafkax "github.com/ariefcatur/booknest/internal/kafka"
	"github.com/ariefcatur/booknest/internal/library"
	"github.com/ariefcatur/booknest/internal/redisx"
	"github.com/ariefcatur/booknest/internal/sqlstore"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}
	log = log.With("service", cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
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

	opts := []library.Option{library.WithLogger(log)}
	handler := &httpx.LibraryHandler{Log: log}

	// Redis (optional): Idempotency-Key support on POST /issuance
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		handler.Idem = redisx.NewIdempotency(rdb)
	}

	// Kafka producer (optional): issuance lifecycle events
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, 1024, log)
		prod.Start(ctx)
		opts = append(opts, library.WithPublisher(kafkax.NewIssuancePublisher(prod, cfg.ServiceName)))
	}

	svc := library.NewService(store, opts...)
	handler.Svc = svc

	router := httpx.NewRouter(httpx.RouterOptions{Log: log, Timeout: cfg.RequestTimeout, Health: svc.Ping})
	httpx.Mount(router, cfg.APIKey, handler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "err", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close() // flush buffered events
		prod.WaitClosed()
	}
	cancel()
}
