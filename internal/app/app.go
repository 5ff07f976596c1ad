package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/radio-transcriber/internal/adapter/repository"
	"github.com/johnquangdev/radio-transcriber/internal/infrastructure/cache"
	"github.com/johnquangdev/radio-transcriber/internal/infrastructure/database"
	"github.com/johnquangdev/radio-transcriber/internal/infrastructure/media"
	"github.com/johnquangdev/radio-transcriber/internal/infrastructure/storage"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pipeline"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/transcription"
	"github.com/johnquangdev/radio-transcriber/pkg/ai"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// cachePrefix namespaces transcript cache keys in a shared Redis
const cachePrefix = "radio-transcriber:"

// App is the assembled pipeline together with the resources it owns
type App struct {
	Service *pipeline.Service
	DB      *gorm.DB

	closers []func()
}

// Close releases every resource opened by New, newest first
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// New wires the pipeline service from configuration. Optional collaborators
// (Redis, database, proofreading, diarization) are only built when enabled.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	engine, err := pipeline.NewEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("💾 Initializing transcript store...", zap.String("type", cfg.Storage.Type))
	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	backends, prefixBackend, err := transcription.BackendsFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	if len(backends) == 0 {
		logger.Warn("⚠️ No transcription backend configured; only sidecar transcripts can be processed")
	}

	var cacheStore cache.Store
	if cfg.Redis.Enabled {
		logger.Info("📦 Connecting to Redis...")
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		cacheStore = cache.NewRedisStore(client, cachePrefix)
	} else {
		mem := cache.NewMemoryStore()
		a.closers = append(a.closers, mem.Close)
		cacheStore = mem
	}

	var source transcription.Source = transcription.NewFallbackSource(backends, cfg.Transcription.RetryMaxElapsed, logger)
	source = transcription.NewCachedSource(source, cacheStore, cfg.Transcription.CacheTTL, logger)
	source = transcription.NewSidecarSource(cfg.Input.SidecarSuffix, source, logger)

	tools := media.New(cfg.Media, media.WithLogger(logger))
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithDurationOracle(tools),
	}
	if prefixBackend != nil && cfg.Segmentation.PrefixSeconds > 0 {
		prefixer := transcription.NewPrefixer(tools, prefixBackend, logger)
		opts = append(opts, pipeline.WithPrefixSource(prefixer, cfg.Segmentation.PrefixSeconds))
	}
	if d := ai.NewDiarizationClient(&cfg.Diarization); d != nil {
		logger.Info("🗣️ Acoustic diarization enabled")
		opts = append(opts, pipeline.WithDiarizer(d))
	}
	if cfg.Groq.Enabled {
		logger.Info("🤖 Proofreading enabled", zap.String("model", cfg.Groq.Model))
		opts = append(opts, pipeline.WithProofreader(ai.NewGroqClient(&cfg.Groq)))
	}

	if cfg.Database.Enabled {
		logger.Info("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = database.CloseDB(db) })
		if cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(db, logger); err != nil {
				return nil, err
			}
		}
		a.DB = db
		opts = append(opts, pipeline.WithCatalog(repository.NewTranscriptRepository(db)))
	}

	a.Service = pipeline.NewService(engine, source, store, opts...)
	ok = true
	return a, nil
}
