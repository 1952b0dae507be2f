package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wellness/portal/internal/config"
	"github.com/wellness/portal/internal/domain/account"
	"github.com/wellness/portal/internal/domain/goal"
	"github.com/wellness/portal/internal/platform/auth"
	"github.com/wellness/portal/internal/platform/db"
	"github.com/wellness/portal/internal/platform/mongostore"
)

// stores holds the repositories of the configured driver.
type stores struct {
	users account.UserRepository
	goals goal.GoalRepository
	probe db.Probe
	close func()
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("connected to postgres")
		return &stores{
			users: account.NewUserRepoPG(pool),
			goals: goal.NewGoalRepoPG(pool),
			probe: db.PoolProbe(pool),
			close: pool.Close,
		}, nil

	case config.DriverMongo:
		ms, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if _, err := ms.EnsureIndexes(ctx); err != nil {
			_ = ms.Close(ctx)
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongo")
		return &stores{
			users: account.NewUserRepoMongo(ms.Database()),
			goals: goal.NewGoalRepoMongo(ms.Database()),
			probe: ms.Probe(),
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = ms.Close(closeCtx)
			},
		}, nil

	case config.DriverMemory:
		logger.Warn().Msg("using in-memory store; data is lost on restart")
		return memoryStores(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func memoryStores() *stores {
	return &stores{
		users: account.NewUserRepoMemory(),
		goals: goal.NewGoalRepoMemory(),
		probe: db.Probe{Driver: config.DriverMemory},
		close: func() {},
	}
}

// shared is the cross-instance state: the token revocation list and, when
// Redis is configured, the client behind the distributed rate limiter.
type shared struct {
	revocations auth.RevocationStore
	rdb         *redis.Client
	close       func()
}

func openShared(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*shared, error) {
	if cfg.RedisURL == "" {
		mem := auth.NewMemoryRevocationStore()
		return &shared{revocations: mem, close: mem.Close}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info().Str("addr", opts.Addr).Msg("connected to redis")

	return &shared{
		revocations: auth.NewRedisRevocationStore(rdb),
		rdb:         rdb,
		close:       func() { _ = rdb.Close() },
	}, nil
}
