package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

// --- Mock implementations ---

// memoryProjectStore is an in-memory driven.ProjectStore that enforces the
// owner/name uniqueness constraint the way the SQLite table does.
type memoryProjectStore struct {
	mu       sync.Mutex
	projects []model.Project
	nextID   int64
	scored   map[int64]time.Time

	// beforeCreate, if set, runs inside Create before the uniqueness check.
	// Tests use it to slip in a competing insert.
	beforeCreate func(s *memoryProjectStore, p model.Project)
	createCalls  int
	listErr      error
}

func newMemoryProjectStore(seed ...model.Project) *memoryProjectStore {
	s := &memoryProjectStore{scored: make(map[int64]time.Time)}
	for _, p := range seed {
		s.insertLocked(p)
	}
	return s
}

func (s *memoryProjectStore) insertLocked(p model.Project) model.Project {
	s.nextID++
	p.ID = s.nextID
	s.projects = append(s.projects, p)
	return p
}

func (s *memoryProjectStore) Create(_ context.Context, p model.Project) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createCalls++
	if s.beforeCreate != nil {
		hook := s.beforeCreate
		s.beforeCreate = nil
		hook(s, p)
	}

	for _, existing := range s.projects {
		if existing.Owner == p.Owner && existing.Name == p.Name {
			return model.Project{}, driven.ErrProjectAlreadyExists
		}
	}
	return s.insertLocked(p), nil
}

func (s *memoryProjectStore) GetByID(_ context.Context, id int64) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *memoryProjectStore) GetByOwnerAndName(_ context.Context, owner, name string) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projects {
		if p.Owner == owner && p.Name == name {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *memoryProjectStore) ListAll(ctx context.Context) ([]model.Project, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.Find(ctx, model.AllProjects())
}

func (s *memoryProjectStore) Find(_ context.Context, q model.ProjectQuery) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Project{}
	for _, p := range s.projects {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memoryProjectStore) UpdateMetadata(_ context.Context, id int64, meta model.RepoMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects[i].Description = meta.Description
			s.projects[i].MainLanguage = meta.MainLanguage
			return nil
		}
	}
	return driven.ErrProjectNotFound
}

func (s *memoryProjectStore) MarkScored(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID == id {
			t := at
			s.projects[i].LastScored = &t
			s.scored[id] = at
			return nil
		}
	}
	return driven.ErrProjectNotFound
}

func (s *memoryProjectStore) Remove(_ context.Context, owner, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.projects {
		if p.Owner == owner && p.Name == name {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			return nil
		}
	}
	return driven.ErrProjectNotFound
}

func (s *memoryProjectStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.projects)
}

type mockGitHubClient struct {
	mu      sync.Mutex
	fetch   func(ctx context.Context, owner, name string) (*model.RepoMetadata, error)
	fetched []string
}

func (m *mockGitHubClient) FetchRepository(ctx context.Context, owner, name string) (*model.RepoMetadata, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, owner+"/"+name)
	m.mu.Unlock()

	if m.fetch == nil {
		return &model.RepoMetadata{}, nil
	}
	return m.fetch(ctx, owner, name)
}

func (m *mockGitHubClient) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetched...)
}

// memoryCredentialStore is an in-memory driven.CredentialStore. noKey makes
// it behave like a store built without an encryption key.
type memoryCredentialStore struct {
	mu     sync.Mutex
	tokens map[string]string
	noKey  bool
	setErr error
}

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{tokens: make(map[string]string)}
}

func (s *memoryCredentialStore) SetToken(_ context.Context, service, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.noKey {
		return driven.ErrEncryptionKeyNotSet
	}
	if s.setErr != nil {
		return s.setErr
	}
	s.tokens[service] = token
	return nil
}

func (s *memoryCredentialStore) Token(_ context.Context, service string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.noKey {
		return "", driven.ErrEncryptionKeyNotSet
	}
	return s.tokens[service], nil
}

func (s *memoryCredentialStore) DeleteToken(_ context.Context, service string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, service)
	return nil
}
