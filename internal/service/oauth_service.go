package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/brad-luo/web-tools/internal/config"
	"github.com/brad-luo/web-tools/internal/models"
)

const (
	defaultGitHubAPIURL      = "https://api.github.com"
	defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthUserInfo contains user information fetched from OAuth providers.
type OAuthUserInfo struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// OAuthService defines the OAuth authentication interface.
type OAuthService interface {
	// GetAuthURL returns the OAuth authorization URL for the given provider.
	GetAuthURL(provider, state string) (string, error)

	// HandleCallback exchanges the code, fetches the profile and resolves
	// it to an account.
	HandleCallback(ctx context.Context, provider, code string) (*models.AccountProfile, error)

	// GetSupportedProviders returns the configured providers, sorted.
	GetSupportedProviders() []string
}

type oauthService struct {
	configs           map[string]*oauth2.Config
	resolver          IdentityResolver
	githubAPIURL      string
	googleUserInfoURL string
}

// NewOAuthService creates a new OAuth service with the given configuration.
func NewOAuthService(cfg *config.AuthConfig, resolver IdentityResolver) OAuthService {
	callbackBaseURL := cfg.OAuthCallbackURL
	configs := make(map[string]*oauth2.Config)

	if cfg.OAuthGitHubID != "" && cfg.OAuthGitHubSecret != "" {
		configs[string(models.ProviderGitHub)] = &oauth2.Config{
			ClientID:     cfg.OAuthGitHubID,
			ClientSecret: cfg.OAuthGitHubSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  callbackBaseURL + "/auth/github/callback",
			Scopes:       []string{"read:user", "user:email"},
		}
	}

	if cfg.OAuthGoogleID != "" && cfg.OAuthGoogleSecret != "" {
		configs[string(models.ProviderGoogle)] = &oauth2.Config{
			ClientID:     cfg.OAuthGoogleID,
			ClientSecret: cfg.OAuthGoogleSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  callbackBaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
		}
	}

	return &oauthService{
		configs:           configs,
		resolver:          resolver,
		githubAPIURL:      defaultGitHubAPIURL,
		googleUserInfoURL: defaultGoogleUserInfoURL,
	}
}

func (s *oauthService) GetAuthURL(provider, state string) (string, error) {
	cfg, ok := s.configs[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider, code string) (*models.AccountProfile, error) {
	cfg, ok := s.configs[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, provider, oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	return s.resolver.ResolveSignIn(ctx, SignIn{
		Provider:  models.Provider(provider),
		SubjectID: info.ID,
		Email:     info.Email,
		Name:      info.Name,
		ImageURL:  info.AvatarURL,
		Tokens:    tokensFrom(token),
	})
}

func (s *oauthService) GetSupportedProviders() []string {
	providers := make([]string, 0, len(s.configs))
	for provider := range s.configs {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}

func tokensFrom(token *oauth2.Token) models.ProviderTokens {
	var t models.ProviderTokens
	if token == nil {
		return t
	}
	if token.AccessToken != "" {
		t.AccessToken = &token.AccessToken
	}
	if token.RefreshToken != "" {
		t.RefreshToken = &token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		t.ExpiresAt = &expiry
	}
	return t
}

func (s *oauthService) fetchUserInfo(ctx context.Context, provider string, client *http.Client) (*OAuthUserInfo, error) {
	switch models.Provider(provider) {
	case models.ProviderGitHub:
		return s.fetchGitHubUser(ctx, client)
	case models.ProviderGoogle:
		return s.fetchGoogleUser(ctx, client)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *oauthService) fetchGitHubUser(ctx context.Context, client *http.Client) (*OAuthUserInfo, error) {
	var data struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, s.githubAPIURL+"/user", &data); err != nil {
		return nil, fmt.Errorf("failed to fetch GitHub user: %w", err)
	}

	// Fetch email if not public
	email := data.Email
	if email == "" {
		emails, err := s.fetchGitHubEmails(ctx, client)
		if err == nil && len(emails) > 0 {
			email = emails[0]
		}
	}

	name := data.Name
	if name == "" {
		name = data.Login
	}

	return &OAuthUserInfo{
		ID:        strconv.FormatInt(data.ID, 10),
		Email:     email,
		Name:      name,
		AvatarURL: data.AvatarURL,
	}, nil
}

func (s *oauthService) fetchGitHubEmails(ctx context.Context, client *http.Client) ([]string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(ctx, client, s.githubAPIURL+"/user/emails", &emails); err != nil {
		return nil, err
	}

	// Primary verified first, then other verified addresses.
	var result []string
	for _, e := range emails {
		if e.Verified && e.Primary {
			result = append([]string{e.Email}, result...)
		} else if e.Verified {
			result = append(result, e.Email)
		}
	}
	return result, nil
}

func (s *oauthService) fetchGoogleUser(ctx context.Context, client *http.Client) (*OAuthUserInfo, error) {
	var data struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := getJSON(ctx, client, s.googleUserInfoURL, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch Google user: %w", err)
	}

	return &OAuthUserInfo{
		ID:        data.ID,
		Email:     data.Email,
		Name:      data.Name,
		AvatarURL: data.Picture,
	}, nil
}

// Compile-time check to ensure oauthService implements OAuthService.
var _ OAuthService = (*oauthService)(nil)
