package repository

import (
	"context"

	"github.com/brad-luo/web-tools/internal/dbx"
	"github.com/brad-luo/web-tools/internal/models"
)

// LinkageRepository defines the interface for provider linkage operations.
type LinkageRepository interface {
	// Upsert creates the linkage for accountID or, when the pair is already
	// linked, refreshes its tokens only. The owning account and profile image
	// never change; the returned AccountID is the stored owner.
	Upsert(ctx context.Context, accountID int64, provider models.Provider, subjectID string, profileImage *string, tokens models.ProviderTokens) (*models.LinkageUpsert, error)

	// ListByAccount lists an account's linkages, oldest first.
	ListByAccount(ctx context.Context, accountID int64) ([]*models.ProviderLinkage, error)

	// Delete unlinks the pair when it belongs to accountID.
	Delete(ctx context.Context, accountID int64, provider models.Provider, subjectID string) (bool, error)
}

const linkageColumns = `id, account_id, provider, provider_subject_id, profile_image,
		access_token, refresh_token, expires_at, created_at, updated_at`

type linkageRepo struct {
	db dbx.DBTX
}

// NewLinkageRepository creates a new provider linkage repository.
func NewLinkageRepository(db dbx.DBTX) LinkageRepository {
	return &linkageRepo{db: db}
}

func scanLinkage(row interface{ Scan(...any) error }) (*models.ProviderLinkage, error) {
	var l models.ProviderLinkage
	if err := row.Scan(
		&l.ID,
		&l.AccountID,
		&l.Provider,
		&l.ProviderSubjectID,
		&l.ProfileImage,
		&l.AccessToken,
		&l.RefreshToken,
		&l.ExpiresAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

// Upsert writes the linkage in one statement. Absent tokens keep the stored
// ones. xmax is zero only on a freshly inserted row.
func (r *linkageRepo) Upsert(ctx context.Context, accountID int64, provider models.Provider, subjectID string, profileImage *string, tokens models.ProviderTokens) (*models.LinkageUpsert, error) {
	query := `
		INSERT INTO provider_linkages
			(account_id, provider, provider_subject_id, profile_image, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (provider, provider_subject_id) DO UPDATE SET
			access_token  = COALESCE(EXCLUDED.access_token, provider_linkages.access_token),
			refresh_token = COALESCE(EXCLUDED.refresh_token, provider_linkages.refresh_token),
			expires_at    = COALESCE(EXCLUDED.expires_at, provider_linkages.expires_at),
			updated_at    = NOW()
		RETURNING id, account_id, (xmax = 0) AS created`

	var out models.LinkageUpsert
	err := r.db.QueryRowContext(ctx, query,
		accountID,
		string(provider),
		subjectID,
		profileImage,
		tokens.AccessToken,
		tokens.RefreshToken,
		tokens.ExpiresAt,
	).Scan(&out.ID, &out.AccountID, &out.Created)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByAccount lists the linkages owned by an account.
func (r *linkageRepo) ListByAccount(ctx context.Context, accountID int64) ([]*models.ProviderLinkage, error) {
	query := `SELECT ` + linkageColumns + `
		FROM provider_linkages
		WHERE account_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var linkages []*models.ProviderLinkage
	for rows.Next() {
		l, err := scanLinkage(rows)
		if err != nil {
			return nil, err
		}
		linkages = append(linkages, l)
	}
	return linkages, rows.Err()
}

// Delete removes a linkage owned by accountID.
func (r *linkageRepo) Delete(ctx context.Context, accountID int64, provider models.Provider, subjectID string) (bool, error) {
	query := `
		DELETE FROM provider_linkages
		WHERE account_id = $1 AND provider = $2 AND provider_subject_id = $3`

	res, err := r.db.ExecContext(ctx, query, accountID, string(provider), subjectID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
