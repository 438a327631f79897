package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
)

// ErrGitHubRepoNotFound indicates the code host has no repository for the
// requested owner/name.
var ErrGitHubRepoNotFound = errors.New("github repository not found")

// GitHubClient defines the driven port for reading repository metadata from GitHub.
type GitHubClient interface {
	FetchRepository(ctx context.Context, owner, name string) (*model.RepoMetadata, error)
}
