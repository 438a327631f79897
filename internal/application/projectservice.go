// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

// NewProject carries the caller-supplied attributes for a project.
type NewProject struct {
	Owner        string
	Name         string
	Description  string
	MainLanguage string
}

// ProjectService owns the catalog use cases: validated creation, lookups,
// search and the find-or-create lookup by owner/name.
type ProjectService struct {
	store    driven.ProjectStore
	provider *GitHubClientProvider
	logger   *slog.Logger
	now      func() time.Time
}

// NewProjectService creates a ProjectService. provider may be nil, in which
// case newly registered projects are not enriched from GitHub.
func NewProjectService(store driven.ProjectStore, provider *GitHubClientProvider, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		store:    store,
		provider: provider,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the attributes and persists a new project. It returns a
// *model.ValidationError when a required field is missing or the owner/name
// pair is taken; nothing is written in either case.
func (s *ProjectService) Create(ctx context.Context, in NewProject) (model.Project, error) {
	p := model.Project{
		Owner:        strings.TrimSpace(in.Owner),
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		MainLanguage: in.MainLanguage,
		AddedAt:      s.now(),
	}

	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}

	created, err := s.store.Create(ctx, p)
	if errors.Is(err, driven.ErrProjectAlreadyExists) {
		return model.Project{}, model.NewDuplicateError()
	}
	if err != nil {
		return model.Project{}, err
	}

	s.logger.Info("project created", "project", created.FullName(), "id", created.ID)
	return created, nil
}

// ListAll returns every project in the catalog.
func (s *ProjectService) ListAll(ctx context.Context) ([]model.Project, error) {
	return s.store.ListAll(ctx)
}

// Find returns the projects in the given scope, without duplicates.
func (s *ProjectService) Find(ctx context.Context, q model.ProjectQuery) ([]model.Project, error) {
	if q.IsUnfiltered() {
		return s.store.ListAll(ctx)
	}

	projects, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return dedupe(projects), nil
}

// Search returns the projects whose owner, name or description contain every
// whitespace-separated token of query, case-insensitively.
func (s *ProjectService) Search(ctx context.Context, query string) ([]model.Project, error) {
	return s.Find(ctx, model.AllProjects().Search(query))
}

// GetByID returns the project with the given ID or an error wrapping
// driven.ErrProjectNotFound.
func (s *ProjectService) GetByID(ctx context.Context, id int64) (model.Project, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if p == nil {
		return model.Project{}, fmt.Errorf("get project %d: %w", id, driven.ErrProjectNotFound)
	}
	return *p, nil
}

// GetByOwnerAndName returns the project identified by owner/name without
// registering it, or an error wrapping driven.ErrProjectNotFound.
func (s *ProjectService) GetByOwnerAndName(ctx context.Context, owner, name string) (model.Project, error) {
	p, err := s.store.GetByOwnerAndName(ctx, owner, name)
	if err != nil {
		return model.Project{}, err
	}
	if p == nil {
		return model.Project{}, fmt.Errorf("get project %s/%s: %w", owner, name, driven.ErrProjectNotFound)
	}
	return *p, nil
}

// ShowByOwnerAndName returns the project identified by owner/name, registering
// it first if the catalog has never seen it. created is true only for the
// caller whose insert produced the record.
//
// The sequence is read, then create on miss, then re-read when the create
// lost a race to a concurrent request for the same pair. The storage
// uniqueness constraint guarantees a single record. When a GitHub client is
// configured, a pair GitHub reports as missing is not registered and the
// error wraps driven.ErrGitHubRepoNotFound.
func (s *ProjectService) ShowByOwnerAndName(ctx context.Context, owner, name string) (project model.Project, created bool, err error) {
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)

	existing, err := s.store.GetByOwnerAndName(ctx, owner, name)
	if err != nil {
		return model.Project{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	if err := (model.Project{Owner: owner, Name: name}).Validate(); err != nil {
		return model.Project{}, false, err
	}

	meta, err := s.lookupUpstream(ctx, owner, name)
	if err != nil {
		return model.Project{}, false, err
	}

	p, err := s.Create(ctx, NewProject{
		Owner:        owner,
		Name:         name,
		Description:  meta.Description,
		MainLanguage: meta.MainLanguage,
	})
	if errors.Is(err, model.ErrDuplicateProject) {
		existing, err := s.store.GetByOwnerAndName(ctx, owner, name)
		if err != nil {
			return model.Project{}, false, err
		}
		if existing == nil {
			return model.Project{}, false, fmt.Errorf("re-read project %s/%s after conflict: %w", owner, name, driven.ErrProjectNotFound)
		}
		s.logger.Debug("project registered concurrently", "project", existing.FullName())
		return *existing, false, nil
	}
	if err != nil {
		return model.Project{}, false, err
	}

	return p, true, nil
}

// Remove deletes a project by owner/name.
func (s *ProjectService) Remove(ctx context.Context, owner, name string) error {
	if err := s.store.Remove(ctx, owner, name); err != nil {
		return err
	}
	s.logger.Info("project removed", "project", owner+"/"+name)
	return nil
}

// lookupUpstream fetches GitHub metadata for a pair about to be registered.
// Only a definitive not-found is returned as an error. Any other failure is
// logged and the project is registered unenriched.
func (s *ProjectService) lookupUpstream(ctx context.Context, owner, name string) (model.RepoMetadata, error) {
	client := s.provider.Get()
	if client == nil {
		return model.RepoMetadata{}, nil
	}

	meta, err := client.FetchRepository(ctx, owner, name)
	if errors.Is(err, driven.ErrGitHubRepoNotFound) {
		s.logger.Info("project not found on github, not registering", "project", owner+"/"+name)
		return model.RepoMetadata{}, fmt.Errorf("register %s/%s: %w", owner, name, err)
	}
	if err != nil {
		s.logger.Warn("project enrichment skipped", "project", owner+"/"+name, "error", err)
		return model.RepoMetadata{}, nil
	}
	if meta == nil {
		return model.RepoMetadata{}, nil
	}
	return *meta, nil
}

func dedupe(projects []model.Project) []model.Project {
	seen := make(map[int64]bool, len(projects))
	out := projects[:0]
	for _, p := range projects {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}
