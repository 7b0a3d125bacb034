package command

import (
	"context"
	"time"

	"github.com/cathoderay/accountsvc/internal/cqrs"
	"github.com/cathoderay/accountsvc/internal/events"
	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/cathoderay/accountsvc/internal/repository"
	"github.com/cathoderay/accountsvc/internal/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// EventPublisher appends domain events to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService writes account state to the store and keeps the
// Redis read model and event stream up to date.
type AccountCommandService struct {
	store     repository.AccountStore
	readRepo  *repository.AccountReadRepository
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewAccountCommandService(
	store repository.AccountStore,
	readRepo *repository.AccountReadRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *AccountCommandService {
	return &AccountCommandService{
		store:     store,
		readRepo:  readRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.AccountView, error) {
	email := utils.NormalizeEmail(cmd.Email)
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, errors.Wrapf(models.ErrEmailTaken, "email %s", email)
	} else if !errors.Is(err, models.ErrAccountNotFound) {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}
	now := s.now().UTC()
	account := &models.Account{
		Name:          cmd.Name,
		Email:         email,
		PasswordHash:  passwordHash,
		FBAccessToken: cmd.FBAccessToken,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Insert(ctx, account); err != nil {
		return nil, err
	}

	view := account.ToView()
	s.readRepo.CacheAccountView(ctx, view)
	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.Name,
	})
	s.logger.Info("account created", zap.String("accountId", account.ID))
	return view, nil
}

// UpdateAccount applies a sparse update to the caller's account. An empty
// update is a no-op that returns the current record.
func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (*models.AccountView, error) {
	current, err := s.store.FindByEmail(ctx, cmd.RequestingEmail)
	if err != nil {
		return nil, err
	}

	patch := models.AccountPatch{
		Name:          cmd.Name,
		FBAccessToken: cmd.FBAccessToken,
		UpdatedAt:     s.now().UTC(),
	}
	if cmd.Email != nil {
		email := utils.NormalizeEmail(*cmd.Email)
		if email != current.Email {
			if _, err := s.store.FindByEmail(ctx, email); err == nil {
				return nil, errors.Wrapf(models.ErrEmailTaken, "email %s", email)
			} else if !errors.Is(err, models.ErrAccountNotFound) {
				return nil, err
			}
			patch.Email = &email
		}
	}
	if cmd.Password != nil {
		hash, err := utils.HashPassword(*cmd.Password)
		if err != nil {
			return nil, errors.Wrap(err, "failed to hash password")
		}
		patch.PasswordHash = &hash
	}

	if patch.IsEmpty() {
		return current.ToView(), nil
	}

	// The old-email view must not outlive the rename, so refuse the change
	// rather than leave it behind.
	if patch.Email != nil {
		if err := s.readRepo.InvalidateAccountView(ctx, current.Email); err != nil {
			return nil, errors.Wrap(err, "failed to invalidate account view")
		}
	}

	if err := s.store.UpdateByEmail(ctx, current.Email, patch); err != nil {
		return nil, err
	}

	newEmail := current.Email
	if patch.Email != nil {
		newEmail = *patch.Email
	}
	updated, err := s.store.FindByEmail(ctx, newEmail)
	if err != nil {
		return nil, err
	}

	view := updated.ToView()
	if newEmail != current.Email {
		s.invalidate(ctx, current.Email)
	}
	s.readRepo.CacheAccountView(ctx, view)

	event := events.AccountUpdatedEvent{
		AccountID: updated.ID,
		Email:     updated.Email,
		Name:      updated.Name,
	}
	if newEmail != current.Email {
		event.PreviousEmail = current.Email
	}
	s.publish(ctx, events.AccountUpdated, event)
	return view, nil
}

// DeleteAccount drops the cached view before the record. If the view cannot be
// dropped nothing is deleted, so a deleted account is never served from cache.
func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) error {
	if err := s.readRepo.InvalidateAccountView(ctx, cmd.RequestingEmail); err != nil {
		return errors.Wrap(err, "failed to invalidate account view")
	}
	if err := s.store.DeleteByEmail(ctx, cmd.RequestingEmail); err != nil {
		return err
	}
	// A read between the two calls may have warmed the view again.
	s.invalidate(ctx, cmd.RequestingEmail)
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{Email: cmd.RequestingEmail})
	return nil
}

func (s *AccountCommandService) invalidate(ctx context.Context, email string) {
	if err := s.readRepo.InvalidateAccountView(ctx, email); err != nil {
		s.logger.Warn("failed to invalidate account view", zap.String("email", email), zap.Error(err))
	}
}

// publish logs rather than returns failures; the write has already succeeded.
func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, data); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
