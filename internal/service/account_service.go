package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brad-luo/web-tools/internal/models"
	"github.com/brad-luo/web-tools/internal/repository"
)

// AccountService exposes the signed-in account and its provider linkages.
type AccountService interface {
	GetProfile(ctx context.Context, accountID int64) (*models.AccountProfile, error)
	ListLinkedAccounts(ctx context.Context, accountID int64) ([]models.LinkedAccount, error)
	Unlink(ctx context.Context, accountID int64, provider models.Provider, subjectID string) error
	// DeleteAccount removes an account on behalf of an administrator.
	DeleteAccount(ctx context.Context, requesterEmail string, accountID int64) error
	IsAdmin(email string) bool
}

type accountService struct {
	accounts repository.AccountRepository
	linkages repository.LinkageRepository
	admins   map[string]struct{}
	logger   *slog.Logger
}

// NewAccountService creates a new account service. adminEmails may delete accounts.
func NewAccountService(accounts repository.AccountRepository, linkages repository.LinkageRepository, adminEmails []string, logger *slog.Logger) AccountService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.TrimSpace(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &accountService{accounts: accounts, linkages: linkages, admins: admins, logger: logger}
}

// GitHubAvatarURL is the public avatar of a numeric GitHub user id.
func GitHubAvatarURL(subjectID string) string {
	return "https://avatars.githubusercontent.com/u/" + subjectID + "?v=4"
}

func (s *accountService) GetProfile(ctx context.Context, accountID int64) (*models.AccountProfile, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if acct == nil {
		return nil, ErrNotFound
	}

	profile := acct.Profile()
	if profile.Image != "" {
		return profile, nil
	}

	links, err := s.linkages.ListByAccount(ctx, accountID)
	if err != nil {
		s.logger.Warn("avatar fallback lookup failed",
			slog.Int64("account_id", accountID),
			slog.String("error", err.Error()),
		)
		return profile, nil
	}
	for _, l := range links {
		if l.Provider == models.ProviderGitHub {
			profile.Image = GitHubAvatarURL(l.ProviderSubjectID)
			return profile, nil
		}
	}
	for _, l := range links {
		if l.ProfileImage != nil && *l.ProfileImage != "" {
			profile.Image = *l.ProfileImage
			break
		}
	}
	return profile, nil
}

func (s *accountService) ListLinkedAccounts(ctx context.Context, accountID int64) ([]models.LinkedAccount, error) {
	links, err := s.linkages.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	out := make([]models.LinkedAccount, 0, len(links))
	for _, l := range links {
		out = append(out, l.Sanitize())
	}
	return out, nil
}

func (s *accountService) Unlink(ctx context.Context, accountID int64, provider models.Provider, subjectID string) error {
	if !provider.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	ok, err := s.linkages.Delete(ctx, accountID, provider, subjectID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrNotFound
	}
	s.logger.Info("provider unlinked",
		slog.Int64("account_id", accountID),
		slog.String("provider", string(provider)),
	)
	return nil
}

func (s *accountService) IsAdmin(email string) bool {
	_, ok := s.admins[email]
	return ok
}

func (s *accountService) DeleteAccount(ctx context.Context, requesterEmail string, accountID int64) error {
	if !s.IsAdmin(requesterEmail) {
		return ErrForbidden
	}
	ok, err := s.accounts.Delete(ctx, accountID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrNotFound
	}
	s.logger.Warn("account deleted",
		slog.Int64("account_id", accountID),
		slog.String("by", requesterEmail),
	)
	return nil
}

// Compile-time check to ensure accountService implements AccountService.
var _ AccountService = (*accountService)(nil)
