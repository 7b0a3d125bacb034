package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cathoderay/accountsvc/internal/config"
	"github.com/cathoderay/accountsvc/internal/events"
	"github.com/cathoderay/accountsvc/internal/repository"
	"github.com/cathoderay/accountsvc/internal/token"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_TTL", "5m")
	t.Setenv("STORE_DRIVER", "memory")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "ann@x.com"})
	require.NoError(t, root.Execute())

	tokens, err := token.NewService("cli-secret", 5*time.Minute, "accountsvc")
	require.NoError(t, err)
	subject, err := tokens.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", subject)
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	root := NewRootCmd()
	root.SetArgs([]string{"token", "ann@x.com"})
	require.ErrorContains(t, root.Execute(), "jwt secret")
}

func TestMigrateMemoryStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("STORE_DRIVER", "memory")
	root := NewRootCmd()
	root.SetArgs([]string{"migrate"})
	require.NoError(t, root.Execute())
}

type migrationCountingStore struct {
	*repository.MemoryAccountStore
	migrations int
	err        error
}

func (s *migrationCountingStore) Migrate(context.Context) error {
	s.migrations++
	return s.err
}

func TestMigrateStore(t *testing.T) {
	store := &migrationCountingStore{MemoryAccountStore: repository.NewMemoryAccountStore()}
	require.NoError(t, migrateStore(context.Background(), store, config.DriverMemory, zap.NewNop()))
	require.Equal(t, 1, store.migrations)

	store.err = errors.New("permission denied for schema public")
	err := migrateStore(context.Background(), store, config.DriverPostgres, zap.NewNop())
	require.ErrorContains(t, err, "failed to migrate postgres store")
	require.ErrorIs(t, err, store.err)
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.Port = "0"
	cfg.Store.Driver = config.DriverMemory
	cfg.Redis.Addr = ""
	cfg.Auth.JWTSecret = "cli-secret"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, serve(ctx, cfg, zap.NewNop()))
}

func TestOpenStore(t *testing.T) {
	store, err := openStore(context.Background(), config.StoreConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	require.IsType(t, &repository.MemoryAccountStore{}, store)

	_, err = openStore(context.Background(), config.StoreConfig{Driver: "sqlite"})
	require.ErrorContains(t, err, "unknown store driver")
}

func TestOpenReadModelWithoutRedis(t *testing.T) {
	rm, err := openReadModel(context.Background(), config.RedisConfig{}, zap.NewNop())
	require.NoError(t, err)
	_, ok := rm.cache.Get(context.Background(), "account:view:ann@x.com")
	require.False(t, ok)
	require.NoError(t, rm.publisher.Publish(context.Background(), "s", "t", nil))
	require.NoError(t, rm.close())
}

func TestPrintEvent(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw, err := events.Encode(events.AccountCreated, ts, events.AccountCreatedEvent{AccountID: "acc-1", Email: "ann@x.com", Name: "Ann"})
	require.NoError(t, err)
	event, err := events.Decode(map[string]any{"event": string(raw)})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printEvent(&out)(context.Background(), event))
	require.JSONEq(t, string(raw), out.String())
}
