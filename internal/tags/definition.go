// Package tags resolves tag codes to display labels.
//
// A code resolves through four tiers: definitions supplied by the caller,
// the definition cache, the built-in translation table, and finally the code
// itself. Resolution never fails.
package tags

import (
	"github.com/hpungsan/tome/internal/i18n"
)

// Definition is a stored tag vocabulary entry.
type Definition struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	NameEN    string  `json:"name_en"`
	NameFR    string  `json:"name_fr"`
	Category  *string `json:"category,omitempty"`
	Hidden    *bool   `json:"is_hidden,omitempty"`
	CreatedAt int64   `json:"created_at"`
	UpdatedAt int64   `json:"updated_at"`
}

// Name returns the label for l.
func (d Definition) Name(l i18n.Lang) string {
	if l == i18n.FR {
		return d.NameFR
	}
	return d.NameEN
}

// IsHidden treats an absent flag as visible.
func (d Definition) IsHidden() bool {
	return d.Hidden != nil && *d.Hidden
}

// CategoryOrEmpty returns the category or "".
func (d Definition) CategoryOrEmpty() string {
	if d.Category == nil {
		return ""
	}
	return *d.Category
}

// Known indexes caller-supplied definitions by code.
type Known map[string]Definition

// Index builds a Known from defs. The first definition wins when codes repeat.
func Index(defs []Definition) Known {
	known := make(Known, len(defs))
	for _, d := range defs {
		if d.Code == "" {
			continue
		}
		if _, dup := known[d.Code]; dup {
			continue
		}
		known[d.Code] = d
	}
	return known
}
