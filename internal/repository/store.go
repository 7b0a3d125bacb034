package repository

import (
	"context"

	"github.com/cathoderay/accountsvc/internal/models"
)

// MaxListLimit bounds a single account listing.
const MaxListLimit = 100

// AccountStore is the write store and source of truth for accounts.
// Implementations return models.ErrAccountNotFound when no record matches and
// models.ErrEmailTaken when a write would duplicate an email.
type AccountStore interface {
	// Insert persists a new account and sets its generated ID.
	Insert(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// List returns up to limit accounts in insertion order.
	List(ctx context.Context, limit int) ([]models.Account, error)
	UpdateByEmail(ctx context.Context, email string, patch models.AccountPatch) error
	DeleteByEmail(ctx context.Context, email string) error
	// Migrate creates the schema or indexes the store relies on.
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
