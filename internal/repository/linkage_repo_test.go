package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brad-luo/web-tools/internal/models"
)

var linkageCols = []string{
	"id", "account_id", "provider", "provider_subject_id", "profile_image",
	"access_token", "refresh_token", "expires_at", "created_at", "updated_at",
}

func TestLinkageRepo_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLinkageRepository(db)

	// The conflict branch touches the tokens and nothing else.
	q := `(?s)INSERT INTO provider_linkages.*ON CONFLICT \(provider, provider_subject_id\) DO UPDATE SET` +
		`\s+access_token\s+=\s+COALESCE\(EXCLUDED\.access_token, provider_linkages\.access_token\),` +
		`\s+refresh_token\s+=\s+COALESCE\(EXCLUDED\.refresh_token, provider_linkages\.refresh_token\),` +
		`\s+expires_at\s+=\s+COALESCE\(EXCLUDED\.expires_at, provider_linkages\.expires_at\),` +
		`\s+updated_at\s+=\s+NOW\(\)` +
		`\s+RETURNING id, account_id, \(xmax = 0\) AS created`

	mock.ExpectQuery(q).
		WithArgs(int64(1), "github", "123", "https://img", "tok", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "created"}).AddRow(int64(10), int64(1), true))
	mock.ExpectQuery(q).
		WithArgs(int64(2), "github", "123", nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "created"}).AddRow(int64(10), int64(1), false))

	res, err := repo.Upsert(context.Background(), 1, models.ProviderGitHub, "123", strPtr("https://img"),
		models.ProviderTokens{AccessToken: strPtr("tok")})
	require.NoError(t, err)
	assert.Equal(t, &models.LinkageUpsert{ID: 10, AccountID: 1, Created: true}, res)

	// A second writer with another account keeps the stored owner.
	res, err = repo.Upsert(context.Background(), 2, models.ProviderGitHub, "123", nil, models.ProviderTokens{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.AccountID)
	assert.False(t, res.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkageRepo_ListByAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLinkageRepository(db)
	now := time.Now()

	mock.ExpectQuery(`(?s)WHERE account_id = \$1\s+ORDER BY created_at, id`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(linkageCols).
			AddRow(int64(2), int64(1), "github", "123", nil, nil, nil, nil, now, now).
			AddRow(int64(3), int64(1), "google", "g-9", nil, nil, nil, nil, now, now))

	ls, err := repo.ListByAccount(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, ls, 2)
	assert.Equal(t, models.ProviderGoogle, ls[1].Provider)
}

func TestLinkageRepo_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLinkageRepository(db)

	mock.ExpectExec(`(?s)DELETE FROM provider_linkages\s+WHERE account_id = \$1 AND provider = \$2 AND provider_subject_id = \$3`).
		WithArgs(int64(1), "google", "g-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), 1, models.ProviderGoogle, "g-9")
	require.NoError(t, err)
	assert.False(t, ok)
}
