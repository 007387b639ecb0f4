// Package entry models ruleset entries as a tagged union over their type.
package entry

import (
	"encoding/json"
	"slices"
)

// Type identifies an entry variant. The set of types a deployment manages
// comes from configuration; types without dedicated fields carry PlainDetails.
type Type string

const (
	TypeTrait    Type = "trait"
	TypeObject   Type = "object"
	TypeClass    Type = "class"
	TypeAncestry Type = "ancestry"
	TypeSpell    Type = "spell"
	TypeTrap     Type = "trap"
	TypeMonster  Type = "monster"
)

// SpellLevel is a spell's tier.
type SpellLevel string

const (
	SpellMinor SpellLevel = "minor"
	SpellMajor SpellLevel = "major"
)

// ParseSpellLevel accepts "minor" or "major".
func ParseSpellLevel(s string) (SpellLevel, bool) {
	switch SpellLevel(s) {
	case SpellMinor, SpellMajor:
		return SpellLevel(s), true
	}
	return "", false
}

// Entry is one piece of ruleset content.
type Entry struct {
	ID              string
	Type            Type
	Name            string
	Description     *string
	Tags            []string
	Hidden          *bool
	MarkdownContent *string
	CreatedAt       int64
	UpdatedAt       int64
	Details         Details
}

// Details holds the type-specific fields of an Entry.
// The interface is sealed; the variants are listed below.
type Details interface {
	isDetails()
}

// TraitDetails are the fields of a trait.
type TraitDetails struct {
	Requirement *string
}

// ObjectDetails are the fields of an object.
type ObjectDetails struct {
	Rules *string
}

// SpellDetails are the fields of a spell.
type SpellDetails struct {
	Level SpellLevel
	Rules *string
}

// AncestryDetails are the fields of an ancestry.
type AncestryDetails struct {
	BaseHP    int
	BaseAC    int
	BaseTrait *string
}

// PlainDetails covers class, trap, monster and unrecognized types.
type PlainDetails struct {
	Rules *string
}

func (TraitDetails) isDetails()    {}
func (ObjectDetails) isDetails()   {}
func (SpellDetails) isDetails()    {}
func (AncestryDetails) isDetails() {}
func (PlainDetails) isDetails()    {}

// DetailsFor returns the zero details variant for t.
func DetailsFor(t Type) Details {
	switch t {
	case TypeTrait:
		return TraitDetails{}
	case TypeObject:
		return ObjectDetails{}
	case TypeSpell:
		return SpellDetails{}
	case TypeAncestry:
		return AncestryDetails{}
	default:
		return PlainDetails{}
	}
}

// IsHidden treats an absent flag as visible.
func (e Entry) IsHidden() bool {
	return e.Hidden != nil && *e.Hidden
}

// DescriptionText returns the description or "".
func (e Entry) DescriptionText() string {
	return deref(e.Description)
}

// MarkdownText returns the markdown content or "".
func (e Entry) MarkdownText() string {
	return deref(e.MarkdownContent)
}

// Rules returns the rules text for variants that carry it.
func (e Entry) Rules() string {
	switch d := e.Details.(type) {
	case ObjectDetails:
		return deref(d.Rules)
	case SpellDetails:
		return deref(d.Rules)
	case PlainDetails:
		return deref(d.Rules)
	default:
		return ""
	}
}

// Duplicate returns a copy of src without identity or timestamps.
// The type and every content field are kept.
func Duplicate(src Entry) Entry {
	dup := src
	dup.ID = ""
	dup.CreatedAt = 0
	dup.UpdatedAt = 0
	dup.Description = clonePtr(src.Description)
	dup.Tags = slices.Clone(src.Tags)
	dup.Hidden = clonePtr(src.Hidden)
	dup.MarkdownContent = clonePtr(src.MarkdownContent)
	switch d := src.Details.(type) {
	case TraitDetails:
		dup.Details = TraitDetails{Requirement: clonePtr(d.Requirement)}
	case ObjectDetails:
		dup.Details = ObjectDetails{Rules: clonePtr(d.Rules)}
	case SpellDetails:
		dup.Details = SpellDetails{Level: d.Level, Rules: clonePtr(d.Rules)}
	case AncestryDetails:
		dup.Details = AncestryDetails{BaseHP: d.BaseHP, BaseAC: d.BaseAC, BaseTrait: clonePtr(d.BaseTrait)}
	case PlainDetails:
		dup.Details = PlainDetails{Rules: clonePtr(d.Rules)}
	}
	return dup
}

// MarshalJSON emits the flat record shape with every field present.
func (e Entry) MarshalJSON() ([]byte, error) {
	rec := ToRecord(e, AllFields())
	rec["id"] = e.ID
	rec["type"] = string(e.Type)
	rec["created_at"] = e.CreatedAt
	rec["updated_at"] = e.UpdatedAt
	return json.Marshal(map[string]any(rec))
}

// Key returns the entry's identity; used by pagers.
func Key(e Entry) string {
	return e.ID
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
