package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aevon-lab/recall/internal/annotation"
	corecfg "github.com/aevon-lab/recall/internal/core/config"
	"github.com/aevon-lab/recall/internal/core/lock"
	"github.com/aevon-lab/recall/internal/core/storage/postgres"
	"github.com/aevon-lab/recall/internal/embedding"
	"github.com/aevon-lab/recall/internal/engine"
	"github.com/aevon-lab/recall/internal/engine/similarity"
	"github.com/aevon-lab/recall/internal/journal"
	"github.com/aevon-lab/recall/internal/metrics"
	"github.com/aevon-lab/recall/internal/migrations"
	"github.com/aevon-lab/recall/internal/sentiment"
	"github.com/aevon-lab/recall/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "recall.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))
	slog.Info("Loaded config",
		"server", cfg.Server,
		"engine", cfg.Engine,
		"redis_lock", cfg.Redis.Enabled,
		"embedding", cfg.Embedding.Enabled)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations, then prepare statements against the migrated schema
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	if err := dbAdapter.Prepare(); err != nil {
		slog.Error("Failed to prepare database statements", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 4. Initialize Writer Lock
	var (
		locker    lock.Locker
		redisLock *lock.Redis
	)
	if cfg.Redis.Enabled {
		redisLock, err = lock.NewRedis(cfg.Redis.URL, cfg.Redis.LockTTLDuration())
		if err != nil {
			slog.Error("Failed to initialize redis writer lock", "error", err)
			os.Exit(1)
		}
		defer redisLock.Close()
		locker = redisLock
	} else {
		slog.Warn("[Lock] Redis disabled, using in-process writer lock (single instance only)")
		locker = lock.NewLocal()
	}

	// 5. Initialize Annotation and Embedding Sources
	annotator, err := annotation.NewClient(cfg.Annotation.Endpoint, cfg.Annotation.TimeoutDuration())
	if err != nil {
		slog.Error("Failed to initialize annotation client", "error", err)
		os.Exit(1)
	}

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		slog.Error("Failed to initialize embedding client", "error", err)
		os.Exit(1)
	}

	// 6. Initialize Engine
	lexicon, err := sentiment.LoadLexicon(cfg.Sentiment.LexiconPath)
	if err != nil {
		slog.Error("Failed to load sentiment lexicon", "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(annotator, embedder, sentiment.NewScorer(lexicon), m, engine.Options{
		MergeThreshold: cfg.Engine.MergeThreshold,
		Link: similarity.Thresholds{
			Cosine:  cfg.Engine.LinkCosineThreshold,
			Ratio:   cfg.Engine.LinkRatioThreshold,
			Jaccard: cfg.Engine.LinkJaccardThreshold,
		},
		ChunkSize:        cfg.Engine.ChunkSize,
		SummarySentences: cfg.Engine.SummarySentences,
	})
	if err != nil {
		slog.Error("Failed to initialize engine", "error", err)
		os.Exit(1)
	}

	// 7. Initialize Journal Service
	journalSvc := journal.NewService(eng, dbAdapter, locker, m, cfg.Server.MaxBodySizeMB)

	// 8. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode, reg)
	if redisLock != nil {
		srv.AddHealthCheck("redis", redisLock)
	}
	journalSvc.RegisterRoutes(srv.Engine)

	// 9. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// newEmbedder returns nil when embeddings are disabled or the source does not
// answer at startup; linking then relies on textual similarity only.
func newEmbedder(cfg corecfg.EmbeddingConfig) (embedding.Embedder, error) {
	if !cfg.Enabled {
		slog.Info("[Embedding] Disabled, linking on textual similarity only")
		return nil, nil
	}

	client, err := embedding.NewClient(embedding.Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
		Timeout:  cfg.TimeoutDuration(),
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.TimeoutDuration())
	defer cancel()
	if err := embedding.Probe(ctx, client); err != nil {
		slog.Warn("[Embedding] Source unavailable at startup, linking on textual similarity only",
			"endpoint", cfg.Endpoint, "error", err)
		return nil, nil
	}

	slog.Info("[Embedding] Source ready", "provider", cfg.Provider, "model", cfg.Model, "cache_size", cfg.CacheSize)
	if cfg.CacheSize == 0 {
		return client, nil
	}
	return embedding.NewCachedEmbedder(client, cfg.CacheSize), nil
}

func newLogger(cfg corecfg.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
