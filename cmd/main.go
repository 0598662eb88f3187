// hh-parser scrapes open vacancies of a fixed list of employers from hh.ru
// into PostgreSQL and reports over them.
//
// Modes:
//   - menu  (default): scrape once, then run the interactive report menu
//   - serve: scrape once or on a cron schedule, serve reports as JSON over HTTP
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Konovalexx/hh-parser-2/internal/api"
	"github.com/Konovalexx/hh-parser-2/internal/config"
	"github.com/Konovalexx/hh-parser-2/internal/db"
	"github.com/Konovalexx/hh-parser-2/internal/events"
	"github.com/Konovalexx/hh-parser-2/internal/logging"
	"github.com/Konovalexx/hh-parser-2/internal/report"
	"github.com/Konovalexx/hh-parser-2/internal/scheduler"
	"github.com/Konovalexx/hh-parser-2/internal/scraper"
	"github.com/Konovalexx/hh-parser-2/internal/store"
)

const serviceName = "hh-parser"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	mode := flag.String("mode", "menu", `"menu" or "serve"`)
	skipScrape := flag.Bool("skip-scrape", false, "report over the existing database without scraping")
	flag.Parse()

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[%s] Config error: %v", serviceName, err)
	}

	logger := logging.New(cfg.Log.Level).With("service", serviceName)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *mode, *skipScrape, logger); err != nil {
		logger.Error("exiting", "err", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, mode string, skipScrape bool, logger *logging.Logger) error {
	if mode != "menu" && mode != "serve" {
		return fmt.Errorf("unknown mode %q, want menu or serve", mode)
	}

	policy, err := store.ParseEmptySalaryPolicy(cfg.EmptySalary)
	if err != nil {
		return err
	}

	// ── Redis (optional) ─────────────────────────────────────────────────────
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, serviceName)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		logger.Info("redis connected, company events enabled")
	}

	// ── Scrape pipeline ──────────────────────────────────────────────────────
	worker := scraper.NewWorker(
		scraper.NewHHFetcher(cfg.HH, nil),
		store.NewWriter(cfg.Target(), policy),
		events.NewPublisher(rdb),
		os.Stdout,
		logger,
	)
	var scraping atomic.Bool
	scrape := func(ctx context.Context) error {
		scraping.Store(true)
		defer scraping.Store(false)

		if err := store.Reset(ctx, cfg.Postgres, cfg.Target()); err != nil {
			return fmt.Errorf("bootstrap database: %w", err)
		}
		_, err := worker.Run(ctx, cfg.Companies)
		return err
	}

	if mode == "menu" {
		return runMenu(ctx, cfg, skipScrape, scrape)
	}
	return runServe(ctx, cfg, skipScrape, scrape, scraping.Load, logger)
}

func runMenu(ctx context.Context, cfg *config.Config, skipScrape bool, scrape scheduler.Job) error {
	if !skipScrape {
		if err := scrape(ctx); err != nil {
			return err
		}
	}

	pool, err := db.NewReportPool(ctx, cfg.Target())
	if err != nil {
		return err
	}
	defer pool.Close()

	menu := report.NewMenu(store.NewReports(pool), os.Stdin, os.Stdout)
	if err := menu.Loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServe(
	ctx context.Context,
	cfg *config.Config,
	skipScrape bool,
	scrape scheduler.Job,
	scraping func() bool,
	logger *logging.Logger,
) error {
	// ── Scrape: once, or on schedule ─────────────────────────────────────────
	switch {
	case skipScrape:
	case cfg.ScrapeSchedule != "":
		sched := scheduler.New(cfg.ScrapeSchedule, scrape, logger)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sched.Stop(stopCtx)
		}()
		sched.RunNow()
	default:
		if err := scrape(ctx); err != nil {
			return err
		}
	}

	// ── PostgreSQL (read-only) ───────────────────────────────────────────────
	pool, err := db.NewReportPool(ctx, cfg.Target())
	if err != nil {
		return err
	}
	defer pool.Close()

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(store.NewReports(pool), scraping, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", "err", err)
	}
	logger.Info("stopped")
	return nil
}
