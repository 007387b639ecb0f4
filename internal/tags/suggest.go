package tags

import (
	"slices"
	"strings"

	"github.com/hpungsan/tome/internal/fold"
	"github.com/hpungsan/tome/internal/i18n"
)

// DefaultSuggestLimit caps autocomplete results.
const DefaultSuggestLimit = 10

// Suggestion is an autocomplete candidate.
type Suggestion struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Suggest returns codes from the built-in table and known whose label or
// code contains query, skipping codes already in selected. Results are
// ordered by label. An empty query yields nothing.
func (r *Resolver) Suggest(query string, lang i18n.Lang, known Known, selected []string, limit int) []Suggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	skip := make(map[string]bool, len(selected))
	for _, s := range selected {
		skip[s] = true
	}

	codes := r.table.Codes()
	for code := range known {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	codes = slices.Compact(codes)

	m := fold.NewMatcher(query)
	var out []Suggestion
	for _, code := range codes {
		if skip[code] {
			continue
		}
		label, _ := r.lookup(code, lang, known)
		if !m.Match(label) && !m.Match(code) {
			continue
		}
		out = append(out, Suggestion{Code: code, Label: label})
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		if c := strings.Compare(fold.Normalize(a.Label), fold.Normalize(b.Label)); c != 0 {
			return c
		}
		return strings.Compare(a.Code, b.Code)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
