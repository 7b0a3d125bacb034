package cli

import (
	"context"

	"github.com/cathoderay/accountsvc/internal/config"
	"github.com/cathoderay/accountsvc/internal/events"
	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/cathoderay/accountsvc/internal/redis"
	"github.com/cathoderay/accountsvc/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func openStore(ctx context.Context, cfg config.StoreConfig) (repository.AccountStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return repository.NewMongoAccountStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverPostgres:
		return repository.NewPostgresAccountStore(ctx, cfg.PostgresDSN)
	case config.DriverMemory:
		return repository.NewMemoryAccountStore(), nil
	default:
		return nil, errors.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// migrateStore applies the store's schema or indexes. Every driver's Migrate is
// idempotent, so serve runs it on each start.
func migrateStore(ctx context.Context, store repository.AccountStore, driver string, logger *zap.Logger) error {
	if err := store.Migrate(ctx); err != nil {
		return errors.Wrapf(err, "failed to migrate %s store", driver)
	}
	logger.Info("migration complete", zap.String("store", driver))
	return nil
}

// readModel is the Redis-backed half of the service: the account view cache
// and the event publisher. With an empty Redis address both degrade to no-ops.
type readModel struct {
	cache     repository.ViewCache
	publisher eventPublisher
	close     func() error
}

type eventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

func openReadModel(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*readModel, error) {
	if cfg.Addr == "" {
		logger.Warn("redis address not set; account views are not cached and events are not published")
		return &readModel{cache: nopCache{}, publisher: nopPublisher{}, close: func() error { return nil }}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &readModel{
		cache:     redis.NewViewCache[models.AccountView](client.Client, cfg.ViewTTL.Duration, logger),
		publisher: events.NewPublisher(client.Client),
		close:     client.Close,
	}, nil
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*models.AccountView, bool) { return nil, false }
func (nopCache) Set(context.Context, string, *models.AccountView)        {}
func (nopCache) Delete(context.Context, string) error                    { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, any) error { return nil }
