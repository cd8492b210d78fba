package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/lead-planner/internal/config"
	"github.com/example/lead-planner/internal/event"
	httptransport "github.com/example/lead-planner/internal/http"
	"github.com/example/lead-planner/internal/ics"
	"github.com/example/lead-planner/internal/kvstore"
	"github.com/example/lead-planner/internal/logging"
	"github.com/example/lead-planner/internal/metrics"
	"github.com/example/lead-planner/internal/notify"
	"github.com/example/lead-planner/internal/reminder"
)

func main() {
	configPath := flag.String("config", "planner.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("planner exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close store", "error", cerr)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	sink := metrics.NewPrometheusSink(registry)

	book, err := event.NewBook(ctx, store, logger)
	if err != nil {
		return err
	}

	center, err := notify.NewCenter(ctx, store, logger,
		notify.WithLimit(cfg.Reminder.NotificationLimit))
	if err != nil {
		return err
	}

	engine, err := reminder.NewEngine(ctx, book, center, store, logger, reminder.Config{
		Interval:       cfg.Reminder.TickInterval,
		DigestHour:     cfg.Reminder.DigestHour,
		LedgerKeyLimit: cfg.Reminder.LedgerKeyLimit,
		Metrics:        sink,
	})
	if err != nil {
		return err
	}

	importer := ics.NewImporter(
		ics.NewFetcher(nil),
		book,
		icsSources(cfg.ICS.Sources),
		time.Duration(cfg.ICS.HorizonDays)*24*time.Hour,
		nil,
		logger,
	)

	if len(cfg.ICS.Sources) > 0 {
		if _, err := importer.Run(ctx); err != nil {
			logger.Error("initial ics import failed", "error", err)
		}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Notifications: httptransport.NewNotificationHandler(center, logger),
		Events:        httptransport.NewEventHandler(book, logger),
		Imports:       httptransport.NewImportHandler(importer, logger),
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httptransport.RequestLogger(logger)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- engine.Run(ctx)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("planner listening", "addr", server.Addr, "store", cfg.Store.Backend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-engineDone
}

func openStore(ctx context.Context, cfg config.StoreConfig) (kvstore.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return kvstore.NewMemory(), nil
	case config.BackendRedis:
		return kvstore.OpenRedis(ctx, kvstore.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return kvstore.OpenSQLite(cfg.SQLiteDSN)
	}
}

func icsSources(configured []config.ICSSource) []ics.Source {
	sources := make([]ics.Source, 0, len(configured))
	for _, src := range configured {
		id := src.ID
		if id == "" {
			id = src.Name
		}
		sources = append(sources, ics.Source{ID: id, Name: src.Name, URL: src.URL})
	}
	return sources
}
