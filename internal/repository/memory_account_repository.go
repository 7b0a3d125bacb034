package repository

import (
	"context"
	"sync"

	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/cathoderay/accountsvc/internal/utils"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// MemoryAccountStore keeps accounts in process memory. It backs local
// development (store driver "memory") and the service tests.
type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts []models.Account
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{}
}

func (s *MemoryAccountStore) Insert(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexOf(account.Email); ok {
		return errors.Wrapf(models.ErrEmailTaken, "email %s", account.Email)
	}
	account.ID = utils.GenerateID("acc")
	s.accounts = append(s.accounts, *account)
	return nil
}

func (s *MemoryAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexOf(email)
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	account := s.accounts[i]
	return &account, nil
}

func (s *MemoryAccountStore) List(_ context.Context, limit int) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit = clampLimit(limit)
	if limit > len(s.accounts) {
		limit = len(s.accounts)
	}
	out := make([]models.Account, limit)
	copy(out, s.accounts[:limit])
	return out, nil
}

func (s *MemoryAccountStore) UpdateByEmail(_ context.Context, email string, patch models.AccountPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexOf(email)
	if !ok {
		return models.ErrAccountNotFound
	}
	if patch.Email != nil && *patch.Email != email {
		if _, taken := s.indexOf(*patch.Email); taken {
			return errors.Wrapf(models.ErrEmailTaken, "email %s", *patch.Email)
		}
	}
	patch.Apply(&s.accounts[i])
	return nil
}

func (s *MemoryAccountStore) DeleteByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexOf(email)
	if !ok {
		return models.ErrAccountNotFound
	}
	s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
	return nil
}

func (s *MemoryAccountStore) Migrate(context.Context) error { return nil }

func (s *MemoryAccountStore) Close(context.Context) error { return nil }

func (s *MemoryAccountStore) indexOf(email string) (int, bool) {
	_, i, ok := lo.FindIndexOf(s.accounts, func(a models.Account) bool { return a.Email == email })
	return i, ok
}
