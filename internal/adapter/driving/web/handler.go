// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/projectcatalog/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/projectcatalog/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/projectcatalog/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/projectcatalog/internal/application"
	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

const siteTitle = "Project Catalog"

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	projectSvc *application.ProjectService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(projectSvc *application.ProjectService, logger *slog.Logger) *Handler {
	return &Handler{
		projectSvc: projectSvc,
		logger:     logger,
	}
}

// Index renders the catalog page, narrowed by the q and language query
// parameters.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, http.StatusOK, vm.CreateFormViewModel{})
}

// CreateProject handles the create form. A rejected submission re-renders the
// index with the problems and the submitted values; success redirects to the
// new project's page.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		h.renderMessage(w, r, http.StatusForbidden, "Forbidden", "The form has expired. Reload the page and try again.")
		return
	}

	in := application.NewProject{
		Owner:        r.FormValue("owner"),
		Name:         r.FormValue("name"),
		Description:  r.FormValue("description"),
		MainLanguage: r.FormValue("main_language"),
	}

	p, err := h.projectSvc.Create(r.Context(), in)
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		h.renderIndex(w, r, http.StatusUnprocessableEntity, vm.CreateFormViewModel{
			Owner:        in.Owner,
			Name:         in.Name,
			Description:  in.Description,
			MainLanguage: in.MainLanguage,
			Problems:     problemMessages(verr),
		})
		return
	case err != nil:
		h.logger.Error("failed to create project", "error", err)
		h.renderMessage(w, r, http.StatusInternalServerError, "Something went wrong", "The project could not be saved.")
		return
	}

	http.Redirect(w, r, detailPath(p), http.StatusSeeOther)
}

// ShowByID renders a project looked up by numeric ID. A miss is a 404; this
// route never creates.
func (h *Handler) ShowByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.renderMessage(w, r, http.StatusNotFound, "Not found", "No such project.")
		return
	}

	p, err := h.projectSvc.GetByID(r.Context(), id)
	if err != nil {
		h.renderLookupError(w, r, err)
		return
	}

	h.renderShow(w, r, p, false)
}

// ShowByOwnerAndName renders owner/name, registering the project on first
// sight. Paths that cannot name a GitHub repository are a 404 and never reach
// the service.
func (h *Handler) ShowByOwnerAndName(w http.ResponseWriter, r *http.Request) {
	owner, name := r.PathValue("owner"), r.PathValue("name")
	if !model.IsValidRepoName(owner, name) {
		h.renderMessage(w, r, http.StatusNotFound, "Not found", "No such project.")
		return
	}

	p, created, err := h.projectSvc.ShowByOwnerAndName(r.Context(), owner, name)
	if err != nil {
		h.renderLookupError(w, r, err)
		return
	}
	if created {
		h.logger.Info("project registered on first view", "project", p.FullName())
	}

	h.renderShow(w, r, p, created)
}

func (h *Handler) renderIndex(w http.ResponseWriter, r *http.Request, status int, form vm.CreateFormViewModel) {
	query := r.URL.Query().Get("q")
	language := r.URL.Query().Get("language")

	projects, err := h.projectSvc.Find(r.Context(), model.AllProjects().ForLanguage(language).Search(query))
	if err != nil {
		h.logger.Error("failed to list projects", "error", err)
		h.renderMessage(w, r, http.StatusInternalServerError, "Something went wrong", "The catalog could not be loaded.")
		return
	}

	all, err := h.projectSvc.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list languages", "error", err)
		all = projects
	}

	form.CSRFToken = csrfToken(w, r)
	data := vm.IndexViewModel{
		Cards:     toProjectCardViewModels(projects),
		Query:     query,
		Languages: toLanguageFilters(all, language),
		Form:      form,
	}

	h.render(w, r, status, templates.Layout(siteTitle, pages.Index(data)))
}

func (h *Handler) renderShow(w http.ResponseWriter, r *http.Request, p model.Project, created bool) {
	detail := toProjectDetailViewModel(p, created)
	h.render(w, r, http.StatusOK, templates.Layout(p.FullName()+" - "+siteTitle, pages.Show(detail)))
}

// renderLookupError maps a failed project lookup onto an error page.
func (h *Handler) renderLookupError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, driven.ErrProjectNotFound), errors.Is(err, driven.ErrGitHubRepoNotFound):
		h.renderMessage(w, r, http.StatusNotFound, "Not found", "No such project.")
	case errors.As(err, &verr):
		h.renderMessage(w, r, http.StatusBadRequest, "Invalid project", verr.Error())
	default:
		h.logger.Error("failed to load project", "error", err)
		h.renderMessage(w, r, http.StatusInternalServerError, "Something went wrong", "The project could not be loaded.")
	}
}

func (h *Handler) renderMessage(w http.ResponseWriter, r *http.Request, status int, heading, text string) {
	h.render(w, r, status, templates.Layout(heading+" - "+siteTitle, templates.Message(heading, text)))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := component.Render(r.Context(), w); err != nil {
			h.logger.Error("failed to render page", "error", err)
		}
		return
	}
	templ.Handler(component).ServeHTTP(w, r)
}
