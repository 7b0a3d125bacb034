package repository

import (
	"context"

	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/samber/lo"
)

const accountViewKeyPrefix = "account:view:"

// ViewCache is the subset of redis.ViewCache used by the read repository.
type ViewCache interface {
	Get(ctx context.Context, key string) (*models.AccountView, bool)
	Set(ctx context.Context, key string, value *models.AccountView)
	Delete(ctx context.Context, key string) error
}

// AccountReadRepository handles all read operations for accounts.
// It treats Redis as the primary read store for single-account lookups and
// falls back to the account store, warming the cache on every cold read.
type AccountReadRepository struct {
	store AccountStore
	cache ViewCache
}

func NewAccountReadRepository(store AccountStore, cache ViewCache) *AccountReadRepository {
	return &AccountReadRepository{store: store, cache: cache}
}

// GetByEmail returns an AccountView, trying Redis first then the store.
func (r *AccountReadRepository) GetByEmail(ctx context.Context, email string) (*models.AccountView, error) {
	if view, ok := r.cache.Get(ctx, accountViewKeyPrefix+email); ok {
		return view, nil
	}

	account, err := r.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	view := account.ToView()
	r.CacheAccountView(ctx, view)
	return view, nil
}

// List returns up to limit AccountViews straight from the store.
func (r *AccountReadRepository) List(ctx context.Context, limit int) ([]models.AccountView, error) {
	accounts, err := r.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(accounts, func(a models.Account, _ int) models.AccountView { return *a.ToView() }), nil
}

// CacheAccountView stores or refreshes the Redis read model for an account.
func (r *AccountReadRepository) CacheAccountView(ctx context.Context, view *models.AccountView) {
	r.cache.Set(ctx, accountViewKeyPrefix+view.Email, view)
}

// InvalidateAccountView removes the Redis read model entry for an email.
func (r *AccountReadRepository) InvalidateAccountView(ctx context.Context, email string) error {
	return r.cache.Delete(ctx, accountViewKeyPrefix+email)
}
