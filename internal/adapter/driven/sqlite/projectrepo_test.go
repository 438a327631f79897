package sqlite

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

func makeProject(owner, name string) model.Project {
	return model.Project{
		Owner:   owner,
		Name:    name,
		AddedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func mustCreate(t *testing.T, repo *ProjectRepo, p model.Project) model.Project {
	t.Helper()
	created, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

func fullNames(projects []model.Project) []string {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.FullName())
	}
	return names
}

func TestProjectRepo_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	p := makeProject("rails", "rails")
	p.Description = "Ruby on Rails"
	p.MainLanguage = "Ruby"

	created, err := repo.Create(ctx, p)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "rails", got.Owner)
	assert.Equal(t, "rails", got.Name)
	assert.Equal(t, "Ruby on Rails", got.Description)
	assert.Equal(t, "Ruby", got.MainLanguage)
	assert.Nil(t, got.LastScored)
	assert.True(t, p.AddedAt.Equal(got.AddedAt))
}

func TestProjectRepo_Create_DefaultsAddedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)

	created := mustCreate(t, repo, model.Project{Owner: "octocat", Name: "hello-world"})
	assert.False(t, created.AddedAt.IsZero())
}

func TestProjectRepo_Create_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	mustCreate(t, repo, makeProject("octocat", "hello-world"))

	_, err := repo.Create(ctx, makeProject("octocat", "hello-world"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, driven.ErrProjectAlreadyExists))

	// Same name under another owner is a different project.
	_, err = repo.Create(ctx, makeProject("hubot", "hello-world"))
	assert.NoError(t, err)
}

func TestProjectRepo_Create_ConcurrentDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, makeProject("foo", "bar"))
		}()
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, driven.ErrProjectAlreadyExists)
	}
	assert.Equal(t, 1, successes)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProjectRepo_GetByOwnerAndName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	created := mustCreate(t, repo, makeProject("banana", "peel"))

	got, err := repo.GetByOwnerAndName(ctx, "banana", "peel")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	missing, err := repo.GetByOwnerAndName(ctx, "banana", "split")
	require.NoError(t, err)
	assert.Nil(t, missing, "non-existent project should return nil without error")
}

func TestProjectRepo_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)

	got, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProjectRepo_ListAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	empty, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	mustCreate(t, repo, makeProject("charlie", "zeta"))
	mustCreate(t, repo, makeProject("alice", "alpha"))
	mustCreate(t, repo, makeProject("bob", "beta"))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice/alpha", "bob/beta", "charlie/zeta"}, fullNames(all))
}

func seedSearchFixtures(t *testing.T, repo *ProjectRepo) {
	t.Helper()

	pajamas := makeProject("banana", "pajamas")
	pajamas.Description = "this is my awesome project"
	peel := makeProject("banana", "peel")
	peel.Description = "creates awesome peels"

	mustCreate(t, repo, pajamas)
	mustCreate(t, repo, peel)
	mustCreate(t, repo, makeProject("developer", "awesome-gem"))
}

func TestProjectRepo_Find_Search(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "by owner", query: "banana", want: []string{"banana/pajamas", "banana/peel"}},
		{name: "by name", query: "pajamas", want: []string{"banana/pajamas"}},
		{name: "by name and owner", query: "peel banana", want: []string{"banana/peel"}},
		{name: "by description", query: "awesome", want: []string{"banana/pajamas", "banana/peel", "developer/awesome-gem"}},
		{name: "case insensitive", query: "BANANA Peel", want: []string{"banana/peel"}},
		{name: "like wildcards are literal", query: "%", want: []string{}},
		{name: "blank query", query: "  ", want: []string{"banana/pajamas", "banana/peel", "developer/awesome-gem"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			repo := NewProjectRepo(db)
			seedSearchFixtures(t, repo)

			got, err := repo.Find(context.Background(), model.AllProjects().Search(tt.query))
			require.NoError(t, err)
			assert.Equal(t, tt.want, fullNames(got))
		})
	}
}

func TestProjectRepo_Find_SearchNonASCII(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	p := makeProject("Émile", "Ørsted")
	p.Description = "Über fast ÇA tool"
	mustCreate(t, repo, p)
	mustCreate(t, repo, makeProject("emile", "orsted"))

	for _, query := range []string{"Émile", "émile", "Ørsted", "ørsted", "Über", "über", "ça"} {
		t.Run(query, func(t *testing.T) {
			q := model.AllProjects().Search(query)
			got, err := repo.Find(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, []string{"Émile/Ørsted"}, fullNames(got))

			all, err := repo.ListAll(ctx)
			require.NoError(t, err)
			matched := 0
			for _, candidate := range all {
				if q.Matches(candidate) {
					matched++
				}
			}
			assert.Equal(t, matched, len(got))
		})
	}
}

func TestUnicodeLower(t *testing.T) {
	got, err := unicodeLower(nil, []driver.Value{"ÉMILE Ørsted"})
	require.NoError(t, err)
	assert.Equal(t, "émile ørsted", got)

	got, err = unicodeLower(nil, []driver.Value{[]byte("ÜBER")})
	require.NoError(t, err)
	assert.Equal(t, "über", got)

	got, err = unicodeLower(nil, []driver.Value{nil})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProjectRepo_Find_ForLanguage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	for _, name := range []string{"mruby", "rake", "irb"} {
		p := makeProject("matz", name)
		p.MainLanguage = "Ruby"
		mustCreate(t, repo, p)
	}
	for _, name := range []string{"clojure", "datomic"} {
		p := makeProject("rich", name)
		p.MainLanguage = "Clojure"
		mustCreate(t, repo, p)
	}

	ruby, err := repo.Find(ctx, model.AllProjects().ForLanguage("Ruby"))
	require.NoError(t, err)
	assert.Len(t, ruby, 3)

	richScope := model.AllProjects().ForOwner("rich")
	richProjects, err := repo.Find(ctx, richScope)
	require.NoError(t, err)

	scoped, err := repo.Find(ctx, richScope.ForLanguage(""))
	require.NoError(t, err)
	assert.Equal(t, richProjects, scoped)
	assert.Len(t, scoped, 2)
}

func TestProjectRepo_Find_MatchesInMemorySemantics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()
	seedSearchFixtures(t, repo)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)

	queries := []model.ProjectQuery{
		model.AllProjects().Search("awesome banana"),
		model.AllProjects().ForOwner("developer").Search("gem"),
		model.AllProjects().Search("proj"),
	}
	for _, q := range queries {
		got, err := repo.Find(ctx, q)
		require.NoError(t, err)

		want := []model.Project{}
		for _, p := range all {
			if q.Matches(p) {
				want = append(want, p)
			}
		}
		assert.Equal(t, fullNames(want), fullNames(got))
	}
}

func TestProjectRepo_UpdateMetadataAndMarkScored(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	created := mustCreate(t, repo, makeProject("golang", "go"))

	err := repo.UpdateMetadata(ctx, created.ID, model.RepoMetadata{
		Description:  "The Go programming language",
		MainLanguage: "Go",
	})
	require.NoError(t, err)

	scoredAt := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.MarkScored(ctx, created.ID, scoredAt))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "The Go programming language", got.Description)
	assert.Equal(t, "Go", got.MainLanguage)
	require.NotNil(t, got.LastScored)
	assert.True(t, scoredAt.Equal(*got.LastScored))
}

func TestProjectRepo_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	err := repo.UpdateMetadata(ctx, 99, model.RepoMetadata{})
	assert.ErrorIs(t, err, driven.ErrProjectNotFound)

	err = repo.MarkScored(ctx, 99, time.Now())
	assert.ErrorIs(t, err, driven.ErrProjectNotFound)
}

func TestProjectRepo_Remove(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepo(db)
	ctx := context.Background()

	mustCreate(t, repo, makeProject("octocat", "hello-world"))

	require.NoError(t, repo.Remove(ctx, "octocat", "hello-world"))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = repo.Remove(ctx, "octocat", "hello-world")
	assert.ErrorIs(t, err, driven.ErrProjectNotFound)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	version, err := RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}
