package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAccountPatchApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	a := &Account{
		ID: "acc-1", Name: "Ann", Email: "ann@x.com",
		PasswordHash: "hash", FBAccessToken: "tok1",
		CreatedAt: created, UpdatedAt: created,
	}

	AccountPatch{Name: strPtr("X"), UpdatedAt: updated}.Apply(a)

	require.Equal(t, "X", a.Name)
	require.Equal(t, "ann@x.com", a.Email)
	require.Equal(t, "hash", a.PasswordHash)
	require.Equal(t, "tok1", a.FBAccessToken)
	require.Equal(t, "acc-1", a.ID)
	require.Equal(t, updated, a.UpdatedAt)
	require.Equal(t, created, a.CreatedAt)
}

func TestAccountPatchIsEmpty(t *testing.T) {
	require.True(t, AccountPatch{UpdatedAt: time.Now()}.IsEmpty())
	require.False(t, AccountPatch{FBAccessToken: strPtr("tok2")}.IsEmpty())
}

func TestToViewHidesPasswordHash(t *testing.T) {
	a := &Account{ID: "acc-1", Name: "Ann", Email: "ann@x.com", PasswordHash: "secret-hash", FBAccessToken: "tok1"}
	v := a.ToView()
	require.Equal(t, "acc-1", v.ID)
	require.Equal(t, "tok1", v.FBAccessToken)
}
