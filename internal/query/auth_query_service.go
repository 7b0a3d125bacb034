package query

import (
	"context"

	"github.com/cathoderay/accountsvc/internal/cqrs"
	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/cathoderay/accountsvc/internal/repository"
	"github.com/cathoderay/accountsvc/internal/utils"
	"github.com/pkg/errors"
)

// TokenIssuer signs session tokens for a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// AuthQueryService handles login. There's no CommandService for auth because
// logging in doesn't mutate application state.
type AuthQueryService struct {
	store  repository.AccountStore
	tokens TokenIssuer
}

func NewAuthQueryService(store repository.AccountStore, tokens TokenIssuer) *AuthQueryService {
	return &AuthQueryService{store: store, tokens: tokens}
}

// Login returns a token whose subject is the account email. An unknown email
// and a wrong password fail with the same models.ErrInvalidCredentials.
func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (string, error) {
	email := utils.NormalizeEmail(cmd.Email)
	account, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrAccountNotFound) {
		return "", models.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !utils.CheckPassword(cmd.Password, account.PasswordHash) {
		return "", models.ErrInvalidCredentials
	}
	return s.tokens.Issue(account.Email)
}
