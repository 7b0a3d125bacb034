package models

import "time"

// AccountView is the projection returned to API callers and kept in the Redis read model.
// It never exposes the password hash.
type AccountView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	FBAccessToken string    `json:"fb_access_token"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicProfile holds the fields returned by the Graph API for the "me" node.
// The shape is owned by Facebook, so it is kept as a loose map.
type PublicProfile map[string]any

// SelfView is the response body of GET /accounts/me.
type SelfView struct {
	Account         AccountView   `json:"account"`
	FBPublicProfile PublicProfile `json:"fb_public_profile"`
}

// ToView converts the write model to its public projection.
func (a *Account) ToView() *AccountView {
	return &AccountView{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		FBAccessToken: a.FBAccessToken,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
