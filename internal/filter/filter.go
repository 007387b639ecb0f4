// Package filter derives the visible subset of the entry collection.
//
// Apply is pure: it never reorders, never mutates its input, and is
// recomputed in full whenever criteria or the collection change.
package filter

import (
	"strings"

	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/fold"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/tags"
)

// AllTypes is the type criterion that passes every entry.
const AllTypes = "all"

// Viewer describes who is looking.
type Viewer struct {
	Admin      bool
	ShowHidden bool
}

// SeesHidden reports whether hidden items are visible to v.
func (v Viewer) SeesHidden() bool {
	return v.Admin && v.ShowHidden
}

// Criteria are ANDed together.
type Criteria struct {
	Type   string
	Search string
	Lang   i18n.Lang
	Viewer Viewer
}

// AllCriteria passes everything visible to viewer.
func AllCriteria(lang i18n.Lang, viewer Viewer) Criteria {
	return Criteria{Type: AllTypes, Lang: lang, Viewer: viewer}
}

// Engine applies criteria to entries.
type Engine struct {
	resolver *tags.Resolver
	fields   entry.FieldSet
}

// NewEngine returns an engine resolving tag labels with r.
// Visibility is enforced only when fields enables is_hidden.
func NewEngine(r *tags.Resolver, fields entry.FieldSet) *Engine {
	if r == nil {
		r = tags.NewResolver(nil, nil)
	}
	return &Engine{resolver: r, fields: fields}
}

// Apply returns the entries of all matching c, in their original order.
func (e *Engine) Apply(all []entry.Entry, c Criteria, known tags.Known) []entry.Entry {
	m := fold.NewMatcher(strings.TrimSpace(c.Search))
	out := make([]entry.Entry, 0, len(all))
	for _, it := range all {
		if !matchesType(it, c.Type) {
			continue
		}
		if !e.visible(it, c.Viewer) {
			continue
		}
		if !m.Empty() && !e.matchesSearch(it, m, c.Lang, known) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// CountByType counts the entries visible to viewer per type.
func (e *Engine) CountByType(all []entry.Entry, viewer Viewer) map[entry.Type]int {
	counts := make(map[entry.Type]int)
	for _, it := range all {
		if e.visible(it, viewer) {
			counts[it.Type]++
		}
	}
	return counts
}

func matchesType(it entry.Entry, typ string) bool {
	return typ == "" || typ == AllTypes || string(it.Type) == typ
}

func (e *Engine) visible(it entry.Entry, v Viewer) bool {
	if !e.fields.Has(entry.FieldHidden) {
		return true
	}
	return !it.IsHidden() || v.SeesHidden()
}

func (e *Engine) matchesSearch(it entry.Entry, m fold.Matcher, lang i18n.Lang, known tags.Known) bool {
	if m.Match(it.Name) {
		return true
	}
	if it.Description != nil && m.Match(*it.Description) {
		return true
	}
	for _, code := range it.Tags {
		if m.Match(code) || m.Match(e.resolver.Resolve(code, lang, known)) {
			return true
		}
	}
	return false
}

// FilterDefinitions returns the tag definitions matching search that viewer
// may see. Search covers the code, both names and the category.
func FilterDefinitions(defs []tags.Definition, search string, viewer Viewer) []tags.Definition {
	m := fold.NewMatcher(strings.TrimSpace(search))
	out := make([]tags.Definition, 0, len(defs))
	for _, d := range defs {
		if d.IsHidden() && !viewer.SeesHidden() {
			continue
		}
		if !m.Empty() && !m.Match(d.Code) && !m.Match(d.NameEN) && !m.Match(d.NameFR) && !m.Match(d.CategoryOrEmpty()) {
			continue
		}
		out = append(out, d)
	}
	return out
}
