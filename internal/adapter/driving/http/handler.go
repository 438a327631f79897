package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/projectcatalog/internal/application"
	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	projectSvc    *application.ProjectService
	refreshSvc    *application.RefreshService
	credentialSvc *application.CredentialService
	logger        *slog.Logger
}

// NewHandler creates a Handler. refreshSvc and credentialSvc may be nil, in
// which case their endpoints answer 503.
func NewHandler(
	projectSvc *application.ProjectService,
	refreshSvc *application.RefreshService,
	credentialSvc *application.CredentialService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		projectSvc:    projectSvc,
		refreshSvc:    refreshSvc,
		credentialSvc: credentialSvc,
		logger:        logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/projects", h.ListProjects)
	mux.HandleFunc("POST /api/v1/projects", h.CreateProject)
	mux.HandleFunc("GET /api/v1/projects/{id}", h.GetProject)
	mux.HandleFunc("GET /api/v1/projects/{owner}/{name}", h.ShowProject)
	mux.HandleFunc("DELETE /api/v1/projects/{owner}/{name}", h.RemoveProject)
	mux.HandleFunc("POST /api/v1/projects/{owner}/{name}/refresh", h.RefreshProject)
	mux.HandleFunc("GET /api/v1/credentials/github", h.GitHubCredentialStatus)
	mux.HandleFunc("PUT /api/v1/credentials/github", h.SetGitHubToken)
	mux.HandleFunc("DELETE /api/v1/credentials/github", h.ClearGitHubToken)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// ListProjects returns all projects, narrowed by the optional owner, language
// and q (search) query parameters.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := model.AllProjects().
		ForOwner(params.Get("owner")).
		ForLanguage(params.Get("language")).
		Search(params.Get("q"))

	projects, err := h.projectSvc.Find(r.Context(), q)
	if err != nil {
		h.logger.Error("failed to list projects", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toProjectResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateProject registers a new project from a JSON body.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.projectSvc.Create(r.Context(), application.NewProject{
		Owner:        req.Owner,
		Name:         req.Name,
		Description:  req.Description,
		MainLanguage: req.MainLanguage,
	})
	if err != nil {
		h.writeServiceError(w, "failed to create project", err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(p))
}

// GetProject returns a single project by numeric ID.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	p, err := h.projectSvc.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "failed to get project", err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

// ShowProject returns the project for owner/name, registering it on first
// sight. Both outcomes answer 200.
func (h *Handler) ShowProject(w http.ResponseWriter, r *http.Request) {
	owner, name, ok := projectPath(w, r)
	if !ok {
		return
	}

	p, created, err := h.projectSvc.ShowByOwnerAndName(r.Context(), owner, name)
	if err != nil {
		h.writeServiceError(w, "failed to show project", err)
		return
	}
	if created {
		h.logger.Info("project registered on first view", "project", p.FullName())
	}

	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

// RemoveProject deletes a project from the catalog.
func (h *Handler) RemoveProject(w http.ResponseWriter, r *http.Request) {
	owner, name, ok := projectPath(w, r)
	if !ok {
		return
	}

	if err := h.projectSvc.Remove(r.Context(), owner, name); err != nil {
		h.writeServiceError(w, "failed to remove project", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshProject re-reads a project's metadata from GitHub synchronously.
func (h *Handler) RefreshProject(w http.ResponseWriter, r *http.Request) {
	owner, name, ok := projectPath(w, r)
	if !ok {
		return
	}

	if h.refreshSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh is not available")
		return
	}

	if err := h.refreshSvc.RefreshProject(r.Context(), owner, name); err != nil {
		h.writeServiceError(w, "failed to refresh project", err)
		return
	}

	p, err := h.projectSvc.GetByOwnerAndName(r.Context(), owner, name)
	if err != nil {
		h.writeServiceError(w, "failed to reload project", err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

// GitHubCredentialStatus reports whether a GitHub client is active. The token
// itself is never returned.
func (h *Handler) GitHubCredentialStatus(w http.ResponseWriter, _ *http.Request) {
	if h.credentialSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "credential management is not available")
		return
	}
	writeJSON(w, http.StatusOK, CredentialStatusResponse{Configured: h.credentialSvc.GitHubConfigured()})
}

// SetGitHubToken stores a new GitHub token and swaps the live client.
func (h *Handler) SetGitHubToken(w http.ResponseWriter, r *http.Request) {
	if h.credentialSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "credential management is not available")
		return
	}

	var req SetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.credentialSvc.SetGitHubToken(r.Context(), req.Token); err != nil {
		h.writeServiceError(w, "failed to set github token", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearGitHubToken deletes the stored GitHub token.
func (h *Handler) ClearGitHubToken(w http.ResponseWriter, r *http.Request) {
	if h.credentialSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "credential management is not available")
		return
	}

	if err := h.credentialSvc.ClearGitHubToken(r.Context()); err != nil {
		h.writeServiceError(w, "failed to clear github token", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeServiceError maps application errors onto HTTP status codes. Anything
// unrecognized is logged and reported as a 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, msg string, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, driven.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, driven.ErrGitHubRepoNotFound):
		writeError(w, http.StatusNotFound, "repository not found on github")
	case errors.Is(err, application.ErrNoGitHubClient):
		writeError(w, http.StatusServiceUnavailable, "no github client configured")
	case errors.Is(err, application.ErrEmptyToken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, driven.ErrEncryptionKeyNotSet):
		writeError(w, http.StatusServiceUnavailable, "credential storage is disabled: no secret key configured")
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// projectPath extracts and validates the {owner}/{name} path values. It
// writes a 400 and returns ok=false when either part is malformed.
func projectPath(w http.ResponseWriter, r *http.Request) (owner, name string, ok bool) {
	owner = r.PathValue("owner")
	name = r.PathValue("name")

	if !model.IsValidRepoName(owner, name) {
		writeError(w, http.StatusBadRequest, "invalid project name: expected owner/name format")
		return "", "", false
	}
	return owner, name, true
}
