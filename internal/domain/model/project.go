package model

import (
	"errors"
	"strings"
	"time"
)

// Project is a catalog entry for a code-hosting repository, identified by its
// owner/name pair.
type Project struct {
	ID           int64
	Owner        string
	Name         string
	Description  string
	MainLanguage string
	LastScored   *time.Time
	AddedAt      time.Time
}

// FullName returns the "owner/name" form of the project identity.
func (p Project) FullName() string {
	return p.Owner + "/" + p.Name
}

// ErrDuplicateProject is wrapped by a ValidationError when another project
// already holds the same owner/name pair.
var ErrDuplicateProject = errors.New("owner and name are already taken")

// FieldProblem describes a single validation failure on one field.
type FieldProblem struct {
	Field  string
	Reason string
}

// ValidationError reports why a project cannot be persisted. A nil
// *ValidationError from Validate means the project is valid.
type ValidationError struct {
	Problems []FieldProblem
	cause    error
}

// Error joins all problems into a single message.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+" "+p.Reason)
	}
	return "invalid project: " + strings.Join(parts, "; ")
}

// Unwrap exposes the underlying cause, if any (e.g. ErrDuplicateProject).
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// NewDuplicateError builds the ValidationError returned when the owner/name
// pair collides with an existing project.
func NewDuplicateError() *ValidationError {
	return &ValidationError{
		Problems: []FieldProblem{{Field: "name", Reason: "has already been taken for this owner"}},
		cause:    ErrDuplicateProject,
	}
}

// Validate checks the required fields. Whitespace-only values count as absent.
// It returns nil when the project may be persisted, otherwise a *ValidationError.
func (p Project) Validate() error {
	var problems []FieldProblem

	if strings.TrimSpace(p.Owner) == "" {
		problems = append(problems, FieldProblem{Field: "owner", Reason: "can't be blank"})
	}
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, FieldProblem{Field: "name", Reason: "can't be blank"})
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

// RepoMetadata holds descriptive fields fetched from the code host.
type RepoMetadata struct {
	Description  string
	MainLanguage string
	PushedAt     time.Time
}
