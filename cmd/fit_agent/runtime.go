package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/cache"
	"github.com/jonathan/resume-fit/internal/config"
	"github.com/jonathan/resume-fit/internal/db"
	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/pipeline"
)

// newLLMClient builds the oracle backend. Tests replace it with a mock.
var newLLMClient = func(ctx context.Context, cfg *llm.Config, apiKey string) (llm.Client, error) {
	return llm.NewClient(ctx, cfg, apiKey)
}

// closerFunc adapts a func to io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// runtime is the wired set of services behind every command.
type runtime struct {
	cfg        *config.Config
	logger     *zap.Logger
	caches     *cache.Caches
	memory     *cache.MemoryStore
	analyzer   *pipeline.Analyzer
	structurer *parsing.ResumeStructurer
	extractor  *parsing.RequirementExtractor
	closers    []io.Closer
}

// newRuntime connects the oracle, the cache tiers and the optional database.
// durable enables PostgreSQL-backed caching and analysis records when a
// database URL is configured.
func newRuntime(ctx context.Context, cfg *config.Config, durable bool) (*runtime, error) {
	log, err := logger.New(cfg.JSON, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: log}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	if cfg.APIKey == "" {
		return nil, errors.New("API key is required (set GEMINI_API_KEY or FIT_API_KEY)")
	}
	llmConfig := cfg.LLMConfig()
	client, err := newLLMClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	rt.closers = append(rt.closers, client)
	oracle := llm.NewOracle(client, llmConfig, logger.Named(log, "oracle"))

	rt.memory = cache.NewMemoryStore(cache.WithMaxEntries(cfg.Cache.MaxEntries))
	rt.closers = append(rt.closers, rt.memory)
	var store cache.Store = rt.memory

	var database *db.DB
	if durable && cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, closerFunc(func() error { database.Close(); return nil }))
		if err := database.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	}

	switch {
	case cfg.Cache.RedisURL != "":
		redisStore, err := cache.NewRedisStore(ctx, cfg.Cache.RedisURL, "fit:")
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, redisStore)
		store = cache.NewTiered(rt.memory, redisStore, log)
		log.Info("using redis cache tier")
	case database != nil && cfg.Cache.Durable:
		store = cache.NewTiered(rt.memory, db.NewCacheStore(database, "fit:"), log)
		log.Info("using postgres cache tier")
	}
	rt.caches = cache.New(store, cfg.Cache.Config, logger.Named(log, "cache"))

	settings := cfg.PipelineSettings()
	var pipelineOpts []pipeline.Option
	if database != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithRecorder(db.NewAnalysisStore(database)))
	}
	rt.analyzer, err = pipeline.New(oracle, rt.caches, settings, logger.Named(log, "pipeline"), pipelineOpts...)
	if err != nil {
		return nil, err
	}
	rt.structurer = parsing.NewResumeStructurer(oracle, logger.Named(log, "structurer"),
		parsing.WithResumeCache(rt.caches.Resumes),
		parsing.WithResumeBudget(settings.ResumeBudget),
	)
	rt.extractor = parsing.NewRequirementExtractor(oracle, logger.Named(log, "extractor"),
		parsing.WithRequirementsCache(rt.caches.Requirements),
		parsing.WithJobBudget(settings.JobBudget),
	)

	ok = true
	return rt, nil
}

// Close releases every dependency in reverse order of acquisition.
func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			r.logger.Warn("failed to close dependency", zap.Error(err))
		}
	}
	r.closers = nil
	_ = r.logger.Sync()
}

// releaseClosers hands the dependencies over to a new owner, typically the
// HTTP server, which closes them after draining requests.
func (r *runtime) releaseClosers() []io.Closer {
	closers := make([]io.Closer, 0, len(r.closers))
	for i := len(r.closers) - 1; i >= 0; i-- {
		closers = append(closers, r.closers[i])
	}
	r.closers = nil
	return closers
}
