package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/server"
	"github.com/jonathan/resume-fit/internal/server/ratelimit"
)

// memoryCleanupInterval is how often expired entries leave the in-process cache.
const memoryCleanupInterval = 5 * time.Minute

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start an HTTP server exposing POST /analyze, POST /analyze/stream, POST /requirements,
POST /resume/structure and GET /health. When a database URL is configured, analyses are
recorded in PostgreSQL and, with cache.durable, cached there as well.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rt, err := newRuntime(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer rt.Close()
			rt.memory.StartCleanup(memoryCleanupInterval)

			rateConfig := ratelimit.NewConfig(ratelimit.Settings{
				RequestsPerMinute: cfg.Server.RequestsPerMinute,
				Burst:             cfg.Server.Burst,
			})

			srv, err := server.New(server.Config{
				Port:         cfg.Server.Port,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				RateLimit:    rateConfig,
			}, server.Dependencies{
				Analyzer:   rt.analyzer,
				Structurer: rt.structurer,
				Extractor:  rt.extractor,
				Caches:     rt.caches,
				Closers:    rt.releaseClosers(),
			}, logger.Named(rt.logger, "http"))
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			return srv.Start()
		},
	}

	cmd.Flags().Int("port", 8080, "Port to listen on")
	_ = opts.viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}
