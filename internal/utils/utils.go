package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// GenerateID generates a unique ID with the given prefix
func GenerateID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16

	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}

	return fmt.Sprintf("%s-%s", prefix, string(result))
}

// HashPassword hashes a password using bcrypt. Passwords over 72 bytes fail
// with models.ErrPasswordTooLong.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", errors.Wrapf(models.ErrPasswordTooLong, "%d bytes", len(password))
	}
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NormalizeEmail trims surrounding whitespace. Case is preserved because the
// login lookup is an exact match.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
