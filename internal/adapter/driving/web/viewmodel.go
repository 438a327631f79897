package web

import (
	"sort"
	"strconv"
	"time"

	vm "github.com/ericfisherdev/projectcatalog/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
)

const dateFormat = "Jan 2, 2006 15:04 MST"

// toProjectCardViewModel converts a single domain Project to a card.
func toProjectCardViewModel(p model.Project) vm.ProjectCardViewModel {
	return vm.ProjectCardViewModel{
		ID:           p.ID,
		Owner:        p.Owner,
		Name:         p.Name,
		FullName:     p.FullName(),
		Description:  p.Description,
		MainLanguage: p.MainLanguage,
		DetailPath:   detailPath(p),
	}
}

// detailPath links to /owner/name when that route can serve the project and
// falls back to the numeric ID route otherwise.
func detailPath(p model.Project) string {
	if model.IsValidRepoName(p.Owner, p.Name) {
		return "/" + p.FullName()
	}
	return "/projects/" + strconv.FormatInt(p.ID, 10)
}

// toProjectCardViewModels converts a slice of projects, never returning nil.
func toProjectCardViewModels(projects []model.Project) []vm.ProjectCardViewModel {
	cards := make([]vm.ProjectCardViewModel, 0, len(projects))
	for _, p := range projects {
		cards = append(cards, toProjectCardViewModel(p))
	}
	return cards
}

// toProjectDetailViewModel converts a project into the detail page model.
// The description is rendered from markdown and sanitized.
func toProjectDetailViewModel(p model.Project, justCreated bool) vm.ProjectDetailViewModel {
	detail := vm.ProjectDetailViewModel{
		ProjectCardViewModel: toProjectCardViewModel(p),
		DescriptionHTML:      RenderMarkdown(p.Description),
		GitHubURL:            "https://github.com/" + p.FullName(),
		AddedAt:              formatDate(p.AddedAt),
		JustCreated:          justCreated,
	}
	if p.LastScored != nil {
		detail.LastScored = formatDate(*p.LastScored)
	}
	return detail
}

// toLanguageFilters collects the distinct non-empty languages across projects,
// sorted, marking the selected one.
func toLanguageFilters(projects []model.Project, selected string) []vm.LanguageFilterViewModel {
	seen := make(map[string]struct{})
	var languages []string
	for _, p := range projects {
		if p.MainLanguage == "" {
			continue
		}
		if _, ok := seen[p.MainLanguage]; ok {
			continue
		}
		seen[p.MainLanguage] = struct{}{}
		languages = append(languages, p.MainLanguage)
	}
	sort.Strings(languages)

	filters := make([]vm.LanguageFilterViewModel, 0, len(languages))
	for _, lang := range languages {
		filters = append(filters, vm.LanguageFilterViewModel{
			Language: lang,
			Selected: lang == selected,
		})
	}
	return filters
}

// problemMessages flattens a validation error into display strings such as
// "owner can't be blank".
func problemMessages(verr *model.ValidationError) []string {
	msgs := make([]string, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		msgs = append(msgs, p.Field+" "+p.Reason)
	}
	return msgs
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateFormat)
}
