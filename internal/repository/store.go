package repository

import (
	"context"
	"database/sql"

	"github.com/brad-luo/web-tools/internal/dbx"
)

// Repos bundles repositories that share one DBTX, usually a transaction.
type Repos struct {
	Accounts AccountRepository
	Linkages LinkageRepository
	Usage    UsageRepository
	Projects ProjectRepository
}

// NewRepos binds every repository to db.
func NewRepos(db dbx.DBTX) Repos {
	return Repos{
		Accounts: NewAccountRepository(db),
		Linkages: NewLinkageRepository(db),
		Usage:    NewUsageRepository(db),
		Projects: NewProjectRepository(db),
	}
}

// Store owns the database handle and vends repositories bound either to the
// handle itself or to a transaction.
type Store struct {
	db    *sql.DB
	repos Repos
}

// NewStore creates a store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: NewRepos(db)}
}

// Repos returns repositories that run outside any transaction.
func (s *Store) Repos() Repos {
	return s.repos
}

// WithTx runs fn with repositories bound to a single transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, NewRepos(tx))
	})
}
