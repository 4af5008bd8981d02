package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brad-luo/web-tools/internal/models"
	"github.com/brad-luo/web-tools/internal/repository"
)

// SignIn is a verified sign-in assertion from an identity provider.
type SignIn struct {
	Provider  models.Provider
	SubjectID string
	Email     string
	Name      string
	ImageURL  string
	Tokens    models.ProviderTokens
}

// IdentityResolver maps provider sign-ins onto accounts.
type IdentityResolver interface {
	// ResolveSignIn returns the account for the sign-in, creating the
	// account and the provider linkage as needed.
	ResolveSignIn(ctx context.Context, in SignIn) (*models.AccountProfile, error)
}

// Store is the transactional handle services need from the repository layer.
type Store interface {
	Repos() repository.Repos
	WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error
}

type identityService struct {
	store  Store
	logger *slog.Logger
}

// NewIdentityService creates a new identity resolver.
func NewIdentityService(store Store, logger *slog.Logger) IdentityResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &identityService{store: store, logger: logger}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *identityService) ResolveSignIn(ctx context.Context, in SignIn) (*models.AccountProfile, error) {
	if !in.Provider.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, in.Provider)
	}
	email := in.Email
	if strings.TrimSpace(email) == "" {
		return nil, ErrEmailRequired
	}
	if in.SubjectID == "" {
		return nil, ErrSubjectRequired
	}

	var (
		acct           *models.Account
		accountCreated bool
		link           *models.LinkageUpsert
	)

	err := s.store.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		a, err := r.Accounts.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("lookup account: %w", err)
		}
		if a == nil {
			a, accountCreated, err = r.Accounts.CreateIfAbsent(ctx, email, optional(in.Name), optional(in.ImageURL))
			if err != nil {
				return fmt.Errorf("create account: %w", err)
			}
		}
		acct = a

		link, err = r.Linkages.Upsert(ctx, a.ID, in.Provider, in.SubjectID, optional(in.ImageURL), in.Tokens)
		if err != nil {
			return fmt.Errorf("upsert linkage: %w", err)
		}
		return nil
	})
	if err != nil {
		signInsTotal.WithLabelValues(string(in.Provider), SignInFailed).Inc()
		s.logger.Error("sign-in failed",
			slog.String("provider", string(in.Provider)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if acct.Image == nil && in.ImageURL != "" {
		s.enrichAvatar(ctx, acct, in.ImageURL)
	}

	if link.AccountID != acct.ID {
		ownerMismatchTotal.Inc()
		s.logger.Warn("provider linkage owned by another account",
			slog.String("provider", string(in.Provider)),
			slog.Int64("linkage_id", link.ID),
			slog.Int64("linkage_account_id", link.AccountID),
			slog.Int64("email_account_id", acct.ID),
		)
	}

	outcome := SignInRefreshed
	switch {
	case accountCreated:
		outcome = SignInCreated
	case link.Created:
		outcome = SignInLinked
	}
	signInsTotal.WithLabelValues(string(in.Provider), outcome).Inc()

	s.logger.Info("sign-in resolved",
		slog.String("provider", string(in.Provider)),
		slog.Int64("account_id", acct.ID),
		slog.String("outcome", outcome),
	)

	return acct.Profile(), nil
}

// enrichAvatar sets the account image when it has none. Failures are logged
// and swallowed.
func (s *identityService) enrichAvatar(ctx context.Context, acct *models.Account, image string) {
	ok, err := s.store.Repos().Accounts.SetImageIfEmpty(ctx, acct.ID, image)
	if err != nil {
		s.logger.Warn("avatar update failed",
			slog.Int64("account_id", acct.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if ok {
		acct.Image = &image
	}
}

// Compile-time check to ensure identityService implements IdentityResolver.
var _ IdentityResolver = (*identityService)(nil)
