package app

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/jsdevtools/client1/internal/auth/credentials"
	"github.com/jsdevtools/client1/internal/config"
	"github.com/jsdevtools/client1/internal/db"
	"github.com/jsdevtools/client1/internal/logger"
	"github.com/jsdevtools/client1/internal/redis"
)

type Infra struct {
	// DB is nil when no DATABASE_DSN is configured; the local provider
	// is then simply not registered.
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {

	infra := &Infra{}

	if cfg.DatabaseDSN != "" {
		sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}

		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, err
		}

		if err := db.Migrate(ctx, sqlDB); err != nil {
			return nil, err
		}

		infra.DB = &db.DB{DB: sqlDB}
		logger.Info("database ready", nil)

		if err := seedLocalUser(ctx, infra.DB, cfg); err != nil {
			return nil, err
		}
	}

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	infra.Redis = redisClient
	return infra, nil
}

// seedLocalUser creates the operator-configured local account if it
// does not exist yet. Re-running against an existing account is a no-op.
func seedLocalUser(ctx context.Context, database *db.DB, cfg config.Config) error {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return nil
	}

	service := credentials.NewService(database)
	_, err := service.Register(ctx, cfg.SeedEmail, cfg.SeedPassword)
	if err != nil && !errors.Is(err, credentials.ErrAlreadyRegistered) {
		return err
	}
	return nil
}
