package entry

import (
	"fmt"
	"strings"

	"github.com/hpungsan/tome/internal/store"
)

// FromRecord normalizes a raw store record of type t.
// Disabled optional fields are ignored. A record without id or name is an error.
func FromRecord(t Type, rec store.Record, fields FieldSet) (Entry, error) {
	id, _ := rec.String("id")
	if strings.TrimSpace(id) == "" {
		return Entry{}, fmt.Errorf("%s record missing id", t)
	}
	name, _ := rec.String("name")
	if strings.TrimSpace(name) == "" {
		return Entry{}, fmt.Errorf("%s record %s missing name", t, id)
	}

	e := Entry{
		ID:          id,
		Type:        t,
		Name:        name,
		Description: rec.OptString("description"),
		Tags:        rec.Strings("tags"),
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.CreatedAt, _ = rec.Time("created_at")
	e.UpdatedAt, _ = rec.Time("updated_at")

	if fields.Has(FieldHidden) {
		if b, ok := rec.Bool("is_hidden"); ok {
			e.Hidden = &b
		}
	}
	if fields.Has(FieldMarkdown) {
		e.MarkdownContent = rec.OptString("markdown_content")
	}

	e.Details = detailsFromRecord(t, rec, fields)
	return e, nil
}

func detailsFromRecord(t Type, rec store.Record, fields FieldSet) Details {
	rules := func() *string {
		if fields.Has(FieldRules) {
			return rec.OptString("rules")
		}
		return nil
	}

	switch d := DetailsFor(t).(type) {
	case TraitDetails:
		if fields.Has(FieldRequirement) {
			d.Requirement = rec.OptString("requirement")
		}
		return d
	case ObjectDetails:
		d.Rules = rules()
		return d
	case SpellDetails:
		if fields.Has(FieldSpellLevel) {
			s, _ := rec.String("spell_level")
			d.Level, _ = ParseSpellLevel(s)
		}
		d.Rules = rules()
		return d
	case AncestryDetails:
		if fields.Has(FieldAncestryStats) {
			d.BaseHP = nonNegative(rec, "base_hp")
			d.BaseAC = nonNegative(rec, "base_ac")
			d.BaseTrait = rec.OptString("base_trait")
		}
		return d
	case PlainDetails:
		d.Rules = rules()
		return d
	default:
		return d
	}
}

// ToRecord produces the writable fields of e. Identity, type and
// timestamps are owned by the store and omitted. Nil optional values are
// included so updates clear them.
func ToRecord(e Entry, fields FieldSet) store.Record {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	rec := store.Record{
		"name":        e.Name,
		"description": optValue(e.Description),
		"tags":        tags,
	}
	if fields.Has(FieldHidden) {
		rec["is_hidden"] = e.IsHidden()
	}
	if fields.Has(FieldMarkdown) {
		rec["markdown_content"] = optValue(e.MarkdownContent)
	}

	switch d := e.Details.(type) {
	case TraitDetails:
		if fields.Has(FieldRequirement) {
			rec["requirement"] = optValue(d.Requirement)
		}
	case ObjectDetails:
		if fields.Has(FieldRules) {
			rec["rules"] = optValue(d.Rules)
		}
	case SpellDetails:
		if fields.Has(FieldSpellLevel) {
			if d.Level == "" {
				rec["spell_level"] = nil
			} else {
				rec["spell_level"] = string(d.Level)
			}
		}
		if fields.Has(FieldRules) {
			rec["rules"] = optValue(d.Rules)
		}
	case AncestryDetails:
		if fields.Has(FieldAncestryStats) {
			rec["base_hp"] = d.BaseHP
			rec["base_ac"] = d.BaseAC
			rec["base_trait"] = optValue(d.BaseTrait)
		}
	case PlainDetails:
		if fields.Has(FieldRules) {
			rec["rules"] = optValue(d.Rules)
		}
	}
	return rec
}

func nonNegative(rec store.Record, key string) int {
	n, ok := rec.Int(key)
	if !ok || n < 0 {
		return 0
	}
	return int(n)
}

func optValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
