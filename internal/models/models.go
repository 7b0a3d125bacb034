package models

import "time"

// Account is the write model. PasswordHash never leaves the service.
type Account struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FBAccessToken string    `json:"fb_access_token"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AccountPatch carries a sparse update. Nil fields are left untouched.
type AccountPatch struct {
	Name          *string
	Email         *string
	PasswordHash  *string
	FBAccessToken *string
	UpdatedAt     time.Time
}

// IsEmpty reports whether the patch changes no account field.
func (p AccountPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil && p.FBAccessToken == nil
}

// Apply copies the set fields of the patch onto a.
func (p AccountPatch) Apply(a *Account) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.PasswordHash != nil {
		a.PasswordHash = *p.PasswordHash
	}
	if p.FBAccessToken != nil {
		a.FBAccessToken = *p.FBAccessToken
	}
	if !p.UpdatedAt.IsZero() {
		a.UpdatedAt = p.UpdatedAt
	}
}
