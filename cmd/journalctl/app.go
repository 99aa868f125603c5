package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/journallm/journallm/internal/config"
	"github.com/journallm/journallm/internal/factory"
	"github.com/journallm/journallm/internal/llm"
	"github.com/journallm/journallm/internal/logger"
	"github.com/journallm/journallm/internal/store"
)

// app holds the dependencies a command needs. Fields are nil when not requested.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   store.Store
	backend llm.Backend
}

type needs struct {
	store   bool
	backend bool
}

func newApp(ctx context.Context, n needs) (*app, error) {
	log := logger.NewConsole("journalctl")
	if err := config.LoadDotEnv(envFileFlag); err != nil {
		return nil, err
	}
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	a := &app{cfg: cfg, log: log.Level(logger.ParseLevel(level))}

	if n.store {
		if a.store, err = factory.NewStore(ctx, cfg, a.log); err != nil {
			return nil, err
		}
	}
	if n.backend {
		if a.backend, err = factory.NewBackend(ctx, cfg, a.log); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("store close failed")
		}
	}
}
