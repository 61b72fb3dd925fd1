package server

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"subsync/internal/api"
	"subsync/internal/config"
	"subsync/internal/logging"
)

// Options configures the serve runtime.
type Options struct {
	// LogLevel overrides logging.level when set.
	LogLevel string
}

// Run serves the API until ctx is cancelled or the process is signalled.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	ctx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := newRunLogger(cfg, opts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	comps, err := BuildComponents(ctx, cfg, logger, ComponentOptions{})
	if err != nil {
		logger.Error("build components", logging.Error(err))
		return err
	}
	defer comps.Close()

	if cfg.Paths.LanguagesFile != "" {
		go func() {
			if err := comps.Catalog.Watch(ctx); err != nil {
				logging.WarnWithContext(logger, "language catalog watch stopped", "catalog_watch_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "catalog edits need a restart"),
				)
			}
		}()
	}

	handler := api.NewHandler(api.Options{
		Registry:       comps.Registry,
		Translator:     translatorOrNil(comps),
		Languages:      comps.LanguageSource(),
		Catalog:        comps.Catalog,
		Token:          cfg.Server.Token,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout(),
		Logger:         logger,
	})
	srv, err := New(cfg, handler, logger)
	if err != nil {
		return err
	}

	logger.Info("subsync starting",
		logging.String(logging.FieldEventType, "server_start"),
		logging.String("bind", cfg.Server.Bind),
		logging.String("engine", cfg.Translate.Engine),
		logging.Any("providers", comps.Registry.Kinds()),
		logging.Bool("auth", cfg.Server.Token != ""),
	)
	return srv.Serve(ctx)
}

func newRunLogger(cfg *config.Config, opts Options) (*slog.Logger, error) {
	if opts.LogLevel == "" {
		return logging.NewFromConfig(cfg)
	}
	override := *cfg
	override.Logging.Level = opts.LogLevel
	return logging.NewFromConfig(&override)
}

// translatorOrNil avoids handing the API a typed nil interface.
func translatorOrNil(comps *Components) api.Translator {
	if comps.Translator == nil {
		return nil
	}
	return comps.Translator
}
