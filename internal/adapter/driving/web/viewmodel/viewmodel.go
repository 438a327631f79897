// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// ProjectCardViewModel holds presentation-ready data for a project row in the
// catalog list.
type ProjectCardViewModel struct {
	ID           int64
	Owner        string
	Name         string
	FullName     string
	Description  string
	MainLanguage string
	DetailPath   string // computed: /{owner}/{name}
}

// ProjectDetailViewModel holds presentation-ready data for the project page.
type ProjectDetailViewModel struct {
	ProjectCardViewModel

	DescriptionHTML string
	GitHubURL       string
	AddedAt         string
	LastScored      string // empty until the first refresh
	JustCreated     bool   // true when this request registered the project
}

// LanguageFilterViewModel holds presentation data for a language in the
// filter dropdown.
type LanguageFilterViewModel struct {
	Language string
	Selected bool
}

// CreateFormViewModel holds the values and problems of the create form, so a
// rejected submission can be re-rendered with the user's input.
type CreateFormViewModel struct {
	Owner        string
	Name         string
	Description  string
	MainLanguage string
	Problems     []string
	CSRFToken    string
}

// IndexViewModel holds all data needed to render the catalog index page.
type IndexViewModel struct {
	Cards     []ProjectCardViewModel
	Query     string
	Languages []LanguageFilterViewModel
	Form      CreateFormViewModel
}
