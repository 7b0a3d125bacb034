package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/cathoderay/accountsvc/internal/utils"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

const accountsSchema = `
	CREATE TABLE IF NOT EXISTS accounts (
		seq             BIGSERIAL,
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		email           TEXT NOT NULL UNIQUE,
		password_hash   TEXT NOT NULL,
		fb_access_token TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)
`

const accountColumns = `id, name, email, password_hash, fb_access_token, created_at, updated_at`

// PostgresAccountStore persists accounts in a PostgreSQL table. The seq column
// preserves insertion order for listings.
type PostgresAccountStore struct {
	db *sql.DB
}

func NewPostgresAccountStore(ctx context.Context, dsn string) (*PostgresAccountStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return &PostgresAccountStore{db: db}, nil
}

func (r *PostgresAccountStore) Insert(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	id := utils.GenerateID("acc")
	_, err := r.db.ExecContext(ctx, query,
		id, account.Name, account.Email, account.PasswordHash, account.FBAccessToken,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(models.ErrEmailTaken, "email %s", account.Email)
		}
		return errors.Wrap(err, "failed to create account")
	}
	account.ID = id
	return nil
}

func (r *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account")
	}
	return account, nil
}

func (r *PostgresAccountStore) List(ctx context.Context, limit int) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY seq LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan account")
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}
	return accounts, nil
}

func (r *PostgresAccountStore) UpdateByEmail(ctx context.Context, email string, patch models.AccountPatch) error {
	query, args := buildUpdate(email, patch)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(models.ErrEmailTaken, "email change rejected")
		}
		return errors.Wrap(err, "failed to update account")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check rows affected")
	}
	if rows == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

func (r *PostgresAccountStore) DeleteByEmail(ctx context.Context, email string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE email = $1`, email)
	if err != nil {
		return errors.Wrap(err, "failed to delete account")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check rows affected")
	}
	if rows == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

func (r *PostgresAccountStore) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, accountsSchema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}

func (r *PostgresAccountStore) Close(context.Context) error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.FBAccessToken, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// buildUpdate renders an UPDATE touching only the patched columns.
func buildUpdate(email string, patch models.AccountPatch) (string, []any) {
	args := []any{email, patch.UpdatedAt}
	sets := []string{"updated_at = $2"}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("name", patch.Name)
	add("email", patch.Email)
	add("password_hash", patch.PasswordHash)
	add("fb_access_token", patch.FBAccessToken)

	return `UPDATE accounts SET ` + strings.Join(sets, ", ") + ` WHERE email = $1`, args
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
