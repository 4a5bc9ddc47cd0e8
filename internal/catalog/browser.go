package catalog

import (
	"strings"

	"rada-learning/internal/models"
)

// All disables the category or difficulty predicate.
const All = "All"

const DefaultPageSize = 6

type Filter struct {
	Query      string `json:"query"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// Matches reports whether the module satisfies every predicate of the filter.
func (f Filter) Matches(m *models.Module) bool {
	if f.Category != "" && f.Category != All && m.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && f.Difficulty != All && string(m.Difficulty) != f.Difficulty {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Title), q) ||
		strings.Contains(strings.ToLower(m.Subtitle), q)
}

// Search returns the modules matching f, in catalog order.
func Search(modules []models.Module, f Filter) []models.Module {
	out := make([]models.Module, 0, len(modules))
	for i := range modules {
		if f.Matches(&modules[i]) {
			out = append(out, modules[i])
		}
	}
	return out
}

// Browser holds the filter and the cumulative "show more" cap for one
// session. The cap only grows.
type Browser struct {
	modules  []models.Module
	filter   Filter
	pageSize int
	limit    int
}

func NewBrowser(modules []models.Module, pageSize int) *Browser {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Browser{
		modules:  modules,
		filter:   Filter{Category: All, Difficulty: All},
		pageSize: pageSize,
		limit:    pageSize,
	}
}

func (b *Browser) Filter() Filter { return b.filter }

func (b *Browser) SetFilter(f Filter) {
	if f.Category == "" {
		f.Category = All
	}
	if f.Difficulty == "" {
		f.Difficulty = All
	}
	b.filter = f
}

func (b *Browser) Limit() int { return b.limit }

func (b *Browser) ShowMore() {
	b.limit += b.pageSize
}

// Page is what the browse screen renders.
type Page struct {
	Filter  Filter          `json:"filter"`
	Modules []models.Module `json:"modules"`
	Total   int             `json:"total"`
	HasMore bool            `json:"has_more"`
}

func (b *Browser) Page() Page {
	matches := Search(b.modules, b.filter)
	shown := matches
	if len(shown) > b.limit {
		shown = shown[:b.limit]
	}
	return Page{
		Filter:  b.filter,
		Modules: shown,
		Total:   len(matches),
		HasMore: len(matches) > b.limit,
	}
}

type Facets struct {
	Categories   []string `json:"categories"`
	Difficulties []string `json:"difficulties"`
}

// FacetsOf lists distinct categories and difficulties in catalog order, each
// prefixed with All.
func FacetsOf(modules []models.Module) Facets {
	f := Facets{Categories: []string{All}, Difficulties: []string{All}}
	seenCat := make(map[string]bool)
	seenDiff := make(map[models.Difficulty]bool)
	for _, m := range modules {
		if m.Category != "" && !seenCat[m.Category] {
			seenCat[m.Category] = true
			f.Categories = append(f.Categories, m.Category)
		}
		if m.Difficulty != "" && !seenDiff[m.Difficulty] {
			seenDiff[m.Difficulty] = true
			f.Difficulties = append(f.Difficulties, string(m.Difficulty))
		}
	}
	return f
}
