package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
)

// Sentinel errors returned by ProjectStore implementations.
var (
	// ErrProjectNotFound indicates the requested project does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectAlreadyExists indicates the owner/name pair is already stored.
	// Implementations must derive it from a storage-level uniqueness constraint.
	ErrProjectAlreadyExists = errors.New("project already exists")
)

// ProjectStore defines the driven port for project persistence.
// Get methods return nil, nil when nothing matches.
type ProjectStore interface {
	Create(ctx context.Context, project model.Project) (model.Project, error)
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	GetByOwnerAndName(ctx context.Context, owner, name string) (*model.Project, error)
	ListAll(ctx context.Context) ([]model.Project, error)
	Find(ctx context.Context, query model.ProjectQuery) ([]model.Project, error)
	UpdateMetadata(ctx context.Context, id int64, meta model.RepoMetadata) error
	MarkScored(ctx context.Context, id int64, at time.Time) error
	Remove(ctx context.Context, owner, name string) error
}
