package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ghAdapter "github.com/ericfisherdev/projectcatalog/internal/adapter/driven/github"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *ghAdapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)

	return client
}

// repoJSON is a helper struct for building GitHub API repository responses.
type repoJSON struct {
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	PushedAt    string  `json:"pushed_at,omitempty"`
}

func strPtr(s string) *string { return &s }

func TestFetchRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/banana/peel", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(repoJSON{
			Name:        "peel",
			FullName:    "banana/peel",
			Description: strPtr("creates awesome peels"),
			Language:    strPtr("Ruby"),
			PushedAt:    "2026-02-01T09:30:00Z",
		})
	})

	client := newTestClient(t, mux)

	meta, err := client.FetchRepository(context.Background(), "banana", "peel")
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, "creates awesome peels", meta.Description)
	assert.Equal(t, "Ruby", meta.MainLanguage)
	assert.Equal(t, time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC), meta.PushedAt.UTC())
}

func TestFetchRepository_NullFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octocat/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(repoJSON{Name: "empty", FullName: "octocat/empty"})
	})

	client := newTestClient(t, mux)

	meta, err := client.FetchRepository(context.Background(), "octocat", "empty")
	require.NoError(t, err)
	assert.Equal(t, "", meta.Description)
	assert.Equal(t, "", meta.MainLanguage)
	assert.True(t, meta.PushedAt.IsZero())
}

func TestFetchRepository_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/foo/bar", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	client := newTestClient(t, mux)

	_, err := client.FetchRepository(context.Background(), "foo", "bar")
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrGitHubRepoNotFound)
}

func TestFetchRepository_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/foo/bar", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := newTestClient(t, mux)

	_, err := client.FetchRepository(context.Background(), "foo", "bar")
	require.Error(t, err)
	assert.NotErrorIs(t, err, driven.ErrGitHubRepoNotFound)
}

func TestFetchRepository_InvalidName(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	_, err := client.FetchRepository(context.Background(), "", "bar")
	assert.Error(t, err)
}
