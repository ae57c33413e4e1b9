package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"elena-agent/config"
	"elena-agent/repository"
	"elena-agent/service"
)

// app holds the wired collaborators for one process.
type app struct {
	Affordability *service.AffordabilityService
	TermOptions   *service.TermOptionsService
	closers       []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, c *config.Config) (*app, error) {
	a := &app{}

	var (
		profiles repository.ProfileRepository
		timeline repository.TimelineRepository
	)
	switch c.Store.Driver {
	case "postgres":
		pool, err := repository.NewPool(ctx, c.Store.DatabaseURL, c.Store.MaxConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		profiles = repository.NewPostgresProfileRepository(pool)
		timeline = repository.NewPostgresTimelineRepository(pool)
	default:
		profiles = repository.NewProfileRepositoryMemory()
		timeline = repository.NewTimelineRepositoryMemory()
	}

	var cache repository.CacheRepository
	switch c.Cache.Driver {
	case "redis":
		rc := repository.NewRedisCache(c.Cache.RedisAddr)
		if err := rc.Ping(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := rc.Close(); err != nil {
				zap.L().Warn("error closing redis", zap.Error(err))
			}
		})
		cache = rc
	default:
		cache = repository.NewMockCache()
	}
	profiles = repository.NewCachedProfileRepository(profiles, cache, c.Cache.ProfileTTL)

	a.Affordability = service.NewAffordabilityService(
		c.Policy,
		profiles,
		timeline,
		service.NewAIService(c.OpenAI.AIConfig()),
		service.WithProfileTimeout(c.Server.ProfileTimeout),
	)
	a.TermOptions = service.NewTermOptionsService(a.Affordability)
	return a, nil
}

func openPool(ctx context.Context, c *config.Config) (*pgxpool.Pool, error) {
	if c.Store.Driver != "postgres" {
		return nil, eris.Errorf("store.driver is %q; migrate needs postgres", c.Store.Driver)
	}
	return repository.NewPool(ctx, c.Store.DatabaseURL, c.Store.MaxConns)
}
