package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/kylelee-dev/postbrief/internal/ai"
	"github.com/kylelee-dev/postbrief/internal/config"
	"github.com/kylelee-dev/postbrief/internal/db"
	"github.com/kylelee-dev/postbrief/internal/fetch"
	"github.com/kylelee-dev/postbrief/internal/job"
	"github.com/kylelee-dev/postbrief/internal/repo"
	"github.com/kylelee-dev/postbrief/internal/schedule"
	"github.com/kylelee-dev/postbrief/internal/service"
)

type app struct {
	cfg         *config.Config
	conn        *sql.DB
	summaryJob  *job.AISummaryJob
	backfillJob *job.ContentBackfillJob
}

func buildApp(configPath string) (*app, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	summarizer := ai.NewSummarizer(provider, cfg.AI.Model, ai.SummarizerConfig{
		Timeout:       cfg.AI.Timeout,
		MaxInputChars: cfg.AI.MaxInputChars,
	})

	posts := repo.NewPostRepo(conn)
	runlog := repo.NewBatchLogRepo(conn)

	summarySvc := service.NewSummaryService(posts, runlog, summarizer, service.SummaryServiceConfig{
		Cooldown: time.Duration(cfg.Batch.CooldownSeconds) * time.Second,
		Pace:     time.Duration(cfg.Batch.PaceSeconds) * time.Second,
	})
	fetcher := fetch.NewExtractor(fetch.Config{
		Timeout:  time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		MaxChars: cfg.Fetch.MaxChars,
	})
	backfillSvc := service.NewBackfillService(posts, runlog, fetcher)

	return &app{
		cfg:         cfg,
		conn:        conn,
		summaryJob:  job.NewAISummaryJob(summarySvc),
		backfillJob: job.NewContentBackfillJob(backfillSvc),
	}, nil
}

func (a *app) close() {
	_ = a.conn.Close()
}

func runOnce(configPath string, pick func(*app) schedule.Job) error {
	a, err := buildApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	j := pick(a)
	logger := logutil.GetLogger(ctx).With(zap.String("job", j.Name()))
	start := time.Now()
	logger.Info("batch started")
	if err := j.Run(ctx); err != nil {
		logger.Error("batch failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return err
	}
	logger.Info("batch finished", zap.Duration("duration", time.Since(start)))
	return nil
}

func serve(configPath string) error {
	a, err := buildApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(a.summaryJob, a.cfg.Batch.SummarySpec); err != nil {
		return err
	}
	if err := scheduler.AddJob(a.backfillJob, a.cfg.Batch.BackfillSpec); err != nil {
		return err
	}
	scheduler.Start(ctx)

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("scheduler stopping...")
	scheduler.Stop()
	return nil
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "postbrief",
		Short: "ai summary batch for the post store",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "run the ai summary batch once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(configPath, func(a *app) schedule.Job { return a.summaryJob })
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "backfill",
		Short: "run the content backfill batch once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(configPath, func(a *app) schedule.Job { return a.backfillJob })
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "run both batches on their cron schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}
