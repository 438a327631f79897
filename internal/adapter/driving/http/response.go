package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeValidationError writes a 422 listing every field problem.
func writeValidationError(w http.ResponseWriter, verr *model.ValidationError) {
	problems := make([]FieldProblemResponse, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		problems = append(problems, FieldProblemResponse{Field: p.Field, Reason: p.Reason})
	}

	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:    verr.Error(),
		Problems: problems,
	})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error    string                 `json:"error"`
	Problems []FieldProblemResponse `json:"problems,omitempty"`
}

// FieldProblemResponse is one validation failure.
type FieldProblemResponse struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ProjectResponse is the JSON representation of a catalog project.
type ProjectResponse struct {
	ID           int64   `json:"id"`
	Owner        string  `json:"owner"`
	Name         string  `json:"name"`
	FullName     string  `json:"full_name"`
	Description  string  `json:"description"`
	MainLanguage string  `json:"main_language"`
	LastScored   *string `json:"last_scored"`
	AddedAt      string  `json:"added_at"`
}

// CreateProjectRequest is the JSON body for the create project endpoint.
type CreateProjectRequest struct {
	Owner        string `json:"owner"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	MainLanguage string `json:"main_language"`
}

// SetTokenRequest is the JSON body for storing a GitHub token.
type SetTokenRequest struct {
	Token string `json:"token"`
}

// CredentialStatusResponse reports whether a credential is in effect.
type CredentialStatusResponse struct {
	Configured bool `json:"configured"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toProjectResponse converts a domain Project to its JSON response representation.
func toProjectResponse(p model.Project) ProjectResponse {
	var lastScored *string
	if p.LastScored != nil {
		s := p.LastScored.UTC().Format(time.RFC3339)
		lastScored = &s
	}

	return ProjectResponse{
		ID:           p.ID,
		Owner:        p.Owner,
		Name:         p.Name,
		FullName:     p.FullName(),
		Description:  p.Description,
		MainLanguage: p.MainLanguage,
		LastScored:   lastScored,
		AddedAt:      p.AddedAt.UTC().Format(time.RFC3339),
	}
}
