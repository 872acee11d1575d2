// Command jobctl runs the durable job orchestration engine: it wires
// together the Postgres-backed repository, the sleep handler, the
// bounded-concurrency executor and the orchestrator loop, performs
// startup recovery once, and runs until an interrupt or termination
// signal arrives.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"oss.nandlabs.io/jobctl/internal/exec"
	"oss.nandlabs.io/jobctl/internal/handler"
	"oss.nandlabs.io/jobctl/internal/jobconfig"
	"oss.nandlabs.io/jobctl/internal/orchestrate"
	"oss.nandlabs.io/jobctl/internal/recover"
	"oss.nandlabs.io/jobctl/internal/store"
	"oss.nandlabs.io/jobctl/l3"
)

var logger = l3.Get()

func main() {
	cfg, err := jobconfig.Load()
	if err != nil {
		logger.ErrorF("jobctl: configuration error: %v", err)
		os.Exit(1)
	}

	logCfg := cfg.LogConfig
	if logCfg == nil {
		logCfg = &l3.LogConfig{
			Format:     "text",
			DefaultLvl: cfg.LogLevel,
			Writers: []*l3.WriterConfig{
				{Console: &l3.ConsoleConfig{}},
			},
		}
	}
	l3.Configure(logCfg)

	logger.InfoF("jobctl: starting (max_concurrency=%d tick_interval=%s job_timeout=%s pool_size=%d)",
		cfg.MaxConcurrency, cfg.TickInterval, cfg.JobTimeout, cfg.PoolSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.ErrorF("jobctl: invalid database url: %v", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = int32(cfg.PoolSize)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.ErrorF("jobctl: unable to create connection pool: %v", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := store.NewPostgresRepository(pool)

	outcome, err := recover.Run(ctx, repo)
	if err != nil {
		logger.ErrorF("jobctl: startup recovery failed: %v", err)
		os.Exit(1)
	}
	logger.InfoF("jobctl: startup recovery reconciled %d job(s), skipped %d", len(outcome.ReconciledIDs), len(outcome.SkippedIDs))

	h := handler.NewSleepHandler(cfg.HandlerSleep)
	executor := exec.NewExecutor(repo, h, cfg.JobTimeout)
	orchestrator := orchestrate.New(repo, executor, cfg.MaxConcurrency, cfg.TickInterval)

	orchestrator.Run(ctx)

	logger.InfoF("jobctl: stopped")
}
