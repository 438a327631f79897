package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProjectStore = (*ProjectRepo)(nil)

const projectColumns = `id, owner, name, description, main_language, last_scored, added_at`

// ProjectRepo is the SQLite implementation of the ProjectStore port interface.
type ProjectRepo struct {
	db *DB
}

// NewProjectRepo creates a new ProjectRepo backed by the given DB.
func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create inserts a new project and returns it with its assigned ID. The
// UNIQUE(owner, name) table constraint turns a racing duplicate insert into
// driven.ErrProjectAlreadyExists.
func (r *ProjectRepo) Create(ctx context.Context, project model.Project) (model.Project, error) {
	const query = `INSERT INTO projects (owner, name, description, main_language, last_scored, added_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	if project.AddedAt.IsZero() {
		project.AddedAt = time.Now().UTC()
	}

	result, err := r.db.Writer.ExecContext(ctx, query,
		project.Owner,
		project.Name,
		project.Description,
		project.MainLanguage,
		formatNullTime(project.LastScored),
		formatTime(project.AddedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return model.Project{}, fmt.Errorf("create project %s: %w", project.FullName(), driven.ErrProjectAlreadyExists)
		}
		return model.Project{}, fmt.Errorf("create project %s: %w", project.FullName(), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Project{}, fmt.Errorf("read inserted id: %w", err)
	}
	project.ID = id

	return project, nil
}

// GetByID retrieves a project by its ID. Returns nil, nil if it does not exist.
func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	p, err := scanProject(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}

	return p, nil
}

// GetByOwnerAndName retrieves a project by its exact owner/name pair. Returns
// nil, nil if it does not exist.
//
// The read goes through the writer connection so that a caller re-reading
// after a failed insert observes the row the competing writer committed.
func (r *ProjectRepo) GetByOwnerAndName(ctx context.Context, owner, name string) (*model.Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects WHERE owner = ? AND name = ?`

	p, err := scanProject(r.db.Writer.QueryRowContext(ctx, query, owner, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s/%s: %w", owner, name, err)
	}

	return p, nil
}

// ListAll returns all projects ordered by owner and name.
func (r *ProjectRepo) ListAll(ctx context.Context) ([]model.Project, error) {
	return r.Find(ctx, model.AllProjects())
}

// Find returns the projects matching the query scope, ordered by owner and
// name. Search terms are matched as case-insensitive substrings of owner, name
// or description; all terms must match.
func (r *ProjectRepo) Find(ctx context.Context, q model.ProjectQuery) ([]model.Project, error) {
	where, args := buildWhere(q)

	query := `SELECT ` + projectColumns + ` FROM projects`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY owner, name`

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// UpdateMetadata overwrites the descriptive fields fetched from the code host.
func (r *ProjectRepo) UpdateMetadata(ctx context.Context, id int64, meta model.RepoMetadata) error {
	const query = `UPDATE projects SET description = ?, main_language = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, meta.Description, meta.MainLanguage, id)
	if err != nil {
		return fmt.Errorf("update project %d metadata: %w", id, err)
	}

	return requireAffected(result, fmt.Sprintf("update project %d metadata", id))
}

// MarkScored records when the project was last evaluated.
func (r *ProjectRepo) MarkScored(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE projects SET last_scored = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("mark project %d scored: %w", id, err)
	}

	return requireAffected(result, fmt.Sprintf("mark project %d scored", id))
}

// Remove deletes a project by owner/name. Returns driven.ErrProjectNotFound if
// no such project exists.
func (r *ProjectRepo) Remove(ctx context.Context, owner, name string) error {
	const query = `DELETE FROM projects WHERE owner = ? AND name = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, owner, name)
	if err != nil {
		return fmt.Errorf("remove project %s/%s: %w", owner, name, err)
	}

	return requireAffected(result, fmt.Sprintf("remove project %s/%s", owner, name))
}

// buildWhere translates a query scope into a SQL predicate and its arguments.
// It mirrors model.ProjectQuery.Matches.
func buildWhere(q model.ProjectQuery) (string, []any) {
	var clauses []string
	var args []any

	if q.Owner != "" {
		clauses = append(clauses, `owner = ?`)
		args = append(args, q.Owner)
	}
	if q.Language != "" {
		clauses = append(clauses, `main_language = ?`)
		args = append(args, q.Language)
	}
	for _, term := range q.Terms {
		clauses = append(clauses,
			`(instr(unicode_lower(owner), ?) > 0 OR instr(unicode_lower(name), ?) > 0 OR instr(unicode_lower(description), ?) > 0)`)
		args = append(args, term, term, term)
	}

	return strings.Join(clauses, ` AND `), args
}

func requireAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, driven.ErrProjectNotFound)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*model.Project, error) {
	var p model.Project
	var lastScored sql.NullString
	var addedAt string

	err := s.Scan(&p.ID, &p.Owner, &p.Name, &p.Description, &p.MainLanguage, &lastScored, &addedAt)
	if err != nil {
		return nil, err
	}

	p.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, fmt.Errorf("parse added_at: %w", err)
	}

	if lastScored.Valid && lastScored.String != "" {
		t, err := parseTime(lastScored.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_scored: %w", err)
		}
		p.LastScored = &t
	}

	return &p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
