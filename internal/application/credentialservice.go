package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

// githubService is the credentials row holding the GitHub token.
const githubService = "github"

// ErrEmptyToken is returned when a blank token is submitted.
var ErrEmptyToken = errors.New("token must not be blank")

// ClientFactory builds a GitHub client for a token.
type ClientFactory func(token string) driven.GitHubClient

// CredentialService manages the stored GitHub token and keeps the shared
// GitHubClientProvider in step with it, so a new token takes effect without a
// restart.
type CredentialService struct {
	store     driven.CredentialStore
	provider  *GitHubClientProvider
	newClient ClientFactory
	logger    *slog.Logger
}

// NewCredentialService creates a CredentialService.
func NewCredentialService(
	store driven.CredentialStore,
	provider *GitHubClientProvider,
	newClient ClientFactory,
	logger *slog.Logger,
) *CredentialService {
	return &CredentialService{
		store:     store,
		provider:  provider,
		newClient: newClient,
		logger:    logger,
	}
}

// Restore installs the stored GitHub token at startup. A stored token takes
// priority over envToken; with neither, the provider is left empty. A store
// without an encryption key falls back to envToken.
func (s *CredentialService) Restore(ctx context.Context, envToken string) error {
	token, err := s.store.Token(ctx, githubService)
	if err != nil && !errors.Is(err, driven.ErrEncryptionKeyNotSet) {
		return fmt.Errorf("restore github token: %w", err)
	}

	source := "stored"
	if token == "" {
		token, source = envToken, "environment"
	}
	if token == "" {
		s.logger.Info("no github token configured, metadata refresh disabled")
		return nil
	}

	s.provider.Replace(s.newClient(token))
	s.logger.Info("github client created", "token_source", source)
	return nil
}

// SetGitHubToken stores token and swaps the live client.
func (s *CredentialService) SetGitHubToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	if err := s.store.SetToken(ctx, githubService, token); err != nil {
		return fmt.Errorf("store github token: %w", err)
	}

	s.provider.Replace(s.newClient(token))
	s.logger.Info("github token updated")
	return nil
}

// ClearGitHubToken deletes the stored token and drops the live client.
func (s *CredentialService) ClearGitHubToken(ctx context.Context) error {
	if err := s.store.DeleteToken(ctx, githubService); err != nil {
		return fmt.Errorf("delete github token: %w", err)
	}

	s.provider.Replace(nil)
	s.logger.Info("github token cleared")
	return nil
}

// GitHubConfigured reports whether a GitHub client is currently active.
func (s *CredentialService) GitHubConfigured() bool {
	return s.provider.HasClient()
}
