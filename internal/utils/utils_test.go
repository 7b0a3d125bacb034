package utils

import (
	"strings"
	"testing"

	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID("acc")
	b := GenerateID("acc")
	require.True(t, strings.HasPrefix(a, "acc-"))
	require.Len(t, a, len("acc-")+16)
	require.NotEqual(t, a, b)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("p1")
	require.NoError(t, err)
	require.NotEqual(t, "p1", hash)
	require.True(t, CheckPassword("p1", hash))
	require.False(t, CheckPassword("wrong", hash))
	require.False(t, CheckPassword("p1", "not-a-bcrypt-hash"))
}

func TestHashPasswordLength(t *testing.T) {
	hash, err := HashPassword(strings.Repeat("a", 72))
	require.NoError(t, err)
	require.True(t, CheckPassword(strings.Repeat("a", 72), hash))

	// 40 runes fit the request tag but encode to 80 bytes.
	_, err = HashPassword(strings.Repeat("é", 40))
	require.True(t, errors.Is(err, models.ErrPasswordTooLong), "got %v", err)

	_, err = HashPassword(strings.Repeat("a", 73))
	require.True(t, errors.Is(err, models.ErrPasswordTooLong), "got %v", err)
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "Ann@x.com", NormalizeEmail("  Ann@x.com \n"))
}
