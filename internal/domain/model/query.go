package model

import "strings"

// ProjectQuery is an immutable, composable scope over the project collection.
// Each builder method returns a new query; the zero value (or AllProjects)
// matches every project.
type ProjectQuery struct {
	Owner    string
	Language string
	Terms    []string
}

// AllProjects returns the unfiltered scope.
func AllProjects() ProjectQuery {
	return ProjectQuery{}
}

// ForOwner restricts the scope to an exact owner. An empty owner is a no-op.
func (q ProjectQuery) ForOwner(owner string) ProjectQuery {
	if owner == "" {
		return q
	}
	q.Owner = owner
	return q
}

// ForLanguage restricts the scope to projects whose main language equals
// language exactly. An empty language is a no-op and keeps any prior filters.
func (q ProjectQuery) ForLanguage(language string) ProjectQuery {
	if language == "" {
		return q
	}
	q.Language = language
	return q
}

// Search adds the whitespace-separated tokens of query as search terms. Every
// term must appear, case-insensitively, in the owner, name or description of a
// project; different terms may match different fields.
func (q ProjectQuery) Search(query string) ProjectQuery {
	tokens := SearchTerms(query)
	if len(tokens) == 0 {
		return q
	}
	terms := make([]string, 0, len(q.Terms)+len(tokens))
	terms = append(terms, q.Terms...)
	q.Terms = append(terms, tokens...)
	return q
}

// IsUnfiltered reports whether the query matches every project.
func (q ProjectQuery) IsUnfiltered() bool {
	return q.Owner == "" && q.Language == "" && len(q.Terms) == 0
}

// Matches evaluates the query against a single project in memory. Stores use
// it as the reference semantics for their native filtering.
func (q ProjectQuery) Matches(p Project) bool {
	if q.Owner != "" && p.Owner != q.Owner {
		return false
	}
	if q.Language != "" && p.MainLanguage != q.Language {
		return false
	}

	owner := strings.ToLower(p.Owner)
	name := strings.ToLower(p.Name)
	desc := strings.ToLower(p.Description)
	for _, term := range q.Terms {
		if !strings.Contains(owner, term) && !strings.Contains(name, term) && !strings.Contains(desc, term) {
			return false
		}
	}

	return true
}

// SearchTerms splits a free-text query into lowercased tokens. Duplicate
// tokens are dropped.
func SearchTerms(query string) []string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.ToLower(f)
		if seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}
