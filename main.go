package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/statuswindow/statuswindow/statuswindow"
	"github.com/statuswindow/statuswindow/statuswindow/categorize"
	"github.com/statuswindow/statuswindow/statuswindow/database"
	"github.com/statuswindow/statuswindow/statuswindow/database/repositories"
	"github.com/statuswindow/statuswindow/statuswindow/events"
	"github.com/statuswindow/statuswindow/statuswindow/logger"
	"github.com/statuswindow/statuswindow/statuswindow/orchestrator"
	"github.com/statuswindow/statuswindow/statuswindow/quests"
	"github.com/statuswindow/statuswindow/statuswindow/titles"
	"github.com/statuswindow/statuswindow/statuswindow/worker"
	"github.com/statuswindow/statuswindow/statuswindow/xp"
)

var (
	version = "dev"
	commit  = "unknown"
)

const titleCacheExpiry = 5 * time.Minute

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting StatusWindow",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	strategyName := flag.String("xp-strategy", "equal", "XP distribution strategy: equal, weighted or proportional")
	flag.Parse()

	cfg, err := statuswindow.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	dbConfig := database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	store := repositories.NewStore(db.BunDB())
	bus := events.NewBus()

	var strategy xp.DistributionStrategy
	switch *strategyName {
	case "weighted":
		strategy = xp.WeightedDistributor{}
	case "proportional":
		strategy = xp.ProportionalDistributor{}
	default:
		strategy = xp.EqualDistributor{}
	}

	calculator := xp.NewCalculator(strategy, store, bus, cfg)
	matcher := quests.NewMatcher(store, bus)
	awarder := titles.NewAwarder(store, bus, titleCacheExpiry)
	pipeline := orchestrator.New(store, categorize.NewStub(), calculator, matcher, awarder, bus)

	retryWorker := worker.New(store, pipeline, worker.Config{
		PollInterval: time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second,
		BatchSize:    cfg.Worker.BatchSize,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go retryWorker.Run(runCtx)

	slog.Info("StatusWindow is running. Press CTRL-C to exit.",
		slog.String("xp_strategy", *strategyName))
	<-runCtx.Done()
	slog.Info("Shutting down...")
}
