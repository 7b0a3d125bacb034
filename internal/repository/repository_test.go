package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	entries map[string]models.AccountView
	gets    int
	hits    int
}

func newMapCache() *mapCache { return &mapCache{entries: map[string]models.AccountView{}} }

func (c *mapCache) Get(_ context.Context, key string) (*models.AccountView, bool) {
	c.gets++
	v, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.hits++
	return &v, true
}

func (c *mapCache) Set(_ context.Context, key string, value *models.AccountView) {
	c.entries[key] = *value
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func strPtr(s string) *string { return &s }

func testAccount(email string) *models.Account {
	now := time.Now().UTC()
	return &models.Account{
		Name: "Ann", Email: email, PasswordHash: "hash", FBAccessToken: "tok1",
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestMemoryStoreInsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()

	a := testAccount("ann@x.com")
	require.NoError(t, s.Insert(ctx, a))
	require.True(t, strings.HasPrefix(a.ID, "acc-"))

	got, err := s.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.Equal(t, *a, *got)

	_, err = s.FindByEmail(ctx, "nobody@x.com")
	require.True(t, errors.Is(err, models.ErrAccountNotFound))
}

func TestMemoryStoreRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()
	require.NoError(t, s.Insert(ctx, testAccount("ann@x.com")))

	err := s.Insert(ctx, testAccount("ann@x.com"))
	require.True(t, errors.Is(err, models.ErrEmailTaken))

	require.NoError(t, s.Insert(ctx, testAccount("bob@x.com")))
	err = s.UpdateByEmail(ctx, "bob@x.com", models.AccountPatch{Email: strPtr("ann@x.com")})
	require.True(t, errors.Is(err, models.ErrEmailTaken))

	// Re-setting an account's own email is not a conflict.
	require.NoError(t, s.UpdateByEmail(ctx, "bob@x.com", models.AccountPatch{Email: strPtr("bob@x.com")}))
}

func TestMemoryStoreListKeepsInsertionOrderAndBound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()
	for i := 0; i < MaxListLimit+5; i++ {
		require.NoError(t, s.Insert(ctx, testAccount(fmt.Sprintf("user%03d@x.com", i))))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, MaxListLimit)
	require.Equal(t, "user000@x.com", all[0].Email)
	require.Equal(t, "user099@x.com", all[MaxListLimit-1].Email)

	some, err := s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, some, 3)
	require.Equal(t, "user002@x.com", some[2].Email)
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()
	a := testAccount("ann@x.com")
	require.NoError(t, s.Insert(ctx, a))

	require.NoError(t, s.UpdateByEmail(ctx, "ann@x.com", models.AccountPatch{Name: strPtr("X")}))
	got, err := s.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.Equal(t, "X", got.Name)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, "tok1", got.FBAccessToken)

	require.True(t, errors.Is(s.UpdateByEmail(ctx, "nobody@x.com", models.AccountPatch{Name: strPtr("X")}), models.ErrAccountNotFound))

	require.NoError(t, s.DeleteByEmail(ctx, "ann@x.com"))
	require.True(t, errors.Is(s.DeleteByEmail(ctx, "ann@x.com"), models.ErrAccountNotFound))
}

func TestBuildUpdate(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	query, args := buildUpdate("ann@x.com", models.AccountPatch{UpdatedAt: ts})
	require.Equal(t, "UPDATE accounts SET updated_at = $2 WHERE email = $1", query)
	require.Equal(t, []any{"ann@x.com", ts}, args)

	query, args = buildUpdate("ann@x.com", models.AccountPatch{
		Name:          strPtr("X"),
		FBAccessToken: strPtr("tok2"),
		UpdatedAt:     ts,
	})
	require.Equal(t, "UPDATE accounts SET updated_at = $2, name = $3, fb_access_token = $4 WHERE email = $1", query)
	require.Equal(t, []any{"ann@x.com", ts, "X", "tok2"}, args)
}

func TestPatchToSet(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	set := patchToSet(models.AccountPatch{Email: strPtr("ann@y.com"), PasswordHash: strPtr("h2"), UpdatedAt: ts})
	require.Len(t, set, 3)
	require.Equal(t, "ann@y.com", set["email"])
	require.Equal(t, "h2", set["password_hash"])
	require.Equal(t, ts, set["updated_at"])
	require.NotContains(t, set, "name")
}

func TestClampLimit(t *testing.T) {
	require.Equal(t, MaxListLimit, clampLimit(0))
	require.Equal(t, MaxListLimit, clampLimit(-1))
	require.Equal(t, MaxListLimit, clampLimit(MaxListLimit+1))
	require.Equal(t, 7, clampLimit(7))
}

func TestReadRepositoryWarmsCache(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()
	require.NoError(t, store.Insert(ctx, testAccount("ann@x.com")))
	cache := newMapCache()
	repo := NewAccountReadRepository(store, cache)

	first, err := repo.GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.Equal(t, 0, cache.hits)
	require.Contains(t, cache.entries, "account:view:ann@x.com")

	second, err := repo.GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.Equal(t, 1, cache.hits)
	require.Equal(t, first, second)

	require.NoError(t, repo.InvalidateAccountView(ctx, "ann@x.com"))
	require.NotContains(t, cache.entries, "account:view:ann@x.com")

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	require.True(t, errors.Is(err, models.ErrAccountNotFound))
	require.NotContains(t, cache.entries, "account:view:nobody@x.com")
}

func TestReadRepositoryList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()
	require.NoError(t, store.Insert(ctx, testAccount("ann@x.com")))
	require.NoError(t, store.Insert(ctx, testAccount("bob@x.com")))
	repo := NewAccountReadRepository(store, newMapCache())

	views, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "ann@x.com", views[0].Email)
	require.Equal(t, "bob@x.com", views[1].Email)
}
