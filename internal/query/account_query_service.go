package query

import (
	"context"

	"github.com/cathoderay/accountsvc/internal/cqrs"
	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/cathoderay/accountsvc/internal/repository"
)

// ProfileProvider reads the public profile behind a stored access token.
type ProfileProvider interface {
	FetchProfile(ctx context.Context, accessToken string) (models.PublicProfile, error)
}

// AccountQueryService serves account reads from the Redis read model with a
// store fallback, augmenting the caller's own account with their public profile.
type AccountQueryService struct {
	readRepo *repository.AccountReadRepository
	profiles ProfileProvider
}

func NewAccountQueryService(readRepo *repository.AccountReadRepository, profiles ProfileProvider) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo, profiles: profiles}
}

// GetSelf returns the caller's account merged with the externally fetched
// profile. Provider errors are returned as is so callers can tell a missing
// permission from an upstream failure.
func (s *AccountQueryService) GetSelf(ctx context.Context, q cqrs.GetSelfQuery) (*models.SelfView, error) {
	view, err := s.readRepo.GetByEmail(ctx, q.Email)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FetchProfile(ctx, view.FBAccessToken)
	if err != nil {
		return nil, err
	}

	return &models.SelfView{Account: *view, FBPublicProfile: profile}, nil
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	views, err := s.readRepo.List(ctx, q.Limit)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []models.AccountView{}
	}
	return views, nil
}
