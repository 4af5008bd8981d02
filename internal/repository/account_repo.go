// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/brad-luo/web-tools/internal/dbx"
	"github.com/brad-luo/web-tools/internal/models"
)

// AccountRepository defines the interface for account operations.
type AccountRepository interface {
	// GetByID returns nil when no account has the id.
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByEmail returns nil when no account has the email.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// CreateIfAbsent inserts an account for email unless one exists, and
	// returns the stored row either way. created is false when the row
	// already existed.
	CreateIfAbsent(ctx context.Context, email string, name, image *string) (acct *models.Account, created bool, err error)

	// SetImageIfEmpty sets the image only when the account has none.
	SetImageIfEmpty(ctx context.Context, id int64, image string) (bool, error)

	// Delete removes the account and, by cascade, its linkages.
	Delete(ctx context.Context, id int64) (bool, error)
}

const accountColumns = `id, email, name, image, password_hash, created_at, updated_at`

type accountRepo struct {
	db dbx.DBTX
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db dbx.DBTX) AccountRepository {
	return &accountRepo{db: db}
}

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&a.Image,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an account by id.
func (r *accountRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// GetByEmail retrieves an account by email.
func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// CreateIfAbsent inserts the account or returns the existing one.
// A concurrent insert of the same email loses the ON CONFLICT race and
// picks up the winner's row on the re-read.
func (r *accountRepo) CreateIfAbsent(ctx context.Context, email string, name, image *string) (*models.Account, bool, error) {
	query := `
		INSERT INTO accounts (email, name, image)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING ` + accountColumns

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, email, name, image))
	if err == nil {
		return a, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	a, err = r.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if a == nil {
		return nil, false, errors.New("account vanished after conflicting insert")
	}
	return a, false, nil
}

// SetImageIfEmpty fills the image of an account that has none.
func (r *accountRepo) SetImageIfEmpty(ctx context.Context, id int64, image string) (bool, error) {
	query := `
		UPDATE accounts SET image = $2, updated_at = NOW()
		WHERE id = $1 AND image IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, image)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes an account.
func (r *accountRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
