package entry

import (
	"encoding/json"
	"testing"

	"github.com/hpungsan/tome/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailsFor(t *testing.T) {
	tests := []struct {
		typ  Type
		want Details
	}{
		{TypeTrait, TraitDetails{}},
		{TypeObject, ObjectDetails{}},
		{TypeSpell, SpellDetails{}},
		{TypeAncestry, AncestryDetails{}},
		{TypeClass, PlainDetails{}},
		{TypeTrap, PlainDetails{}},
		{TypeMonster, PlainDetails{}},
		{Type("vehicle"), PlainDetails{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.IsType(t, tt.want, DetailsFor(tt.typ))
		})
	}
}

func TestParseSpellLevel(t *testing.T) {
	l, ok := ParseSpellLevel("major")
	assert.True(t, ok)
	assert.Equal(t, SpellMajor, l)

	_, ok = ParseSpellLevel("epic")
	assert.False(t, ok)
}

func TestFromRecord_Spell(t *testing.T) {
	rec := store.Record{
		"id":          "s1",
		"name":        "Fireball",
		"description": "A ball of fire",
		"tags":        []any{"fire", "damage"},
		"spell_level": "major",
		"rules":       "3d6 fire",
		"is_hidden":   int64(0),
		"created_at":  int64(1700000000),
	}

	e, err := FromRecord(TypeSpell, rec, AllFields())
	require.NoError(t, err)

	assert.Equal(t, "s1", e.ID)
	assert.Equal(t, TypeSpell, e.Type)
	assert.Equal(t, "A ball of fire", e.DescriptionText())
	assert.Equal(t, []string{"fire", "damage"}, e.Tags)
	require.NotNil(t, e.Hidden)
	assert.False(t, e.IsHidden())
	assert.Equal(t, int64(1700000000), e.CreatedAt)

	d, ok := e.Details.(SpellDetails)
	require.True(t, ok)
	assert.Equal(t, SpellMajor, d.Level)
	assert.Equal(t, "3d6 fire", e.Rules())
}

func TestFromRecord_Ancestry(t *testing.T) {
	rec := store.Record{
		"id":         "a1",
		"name":       "Dwarf",
		"base_hp":    float64(12),
		"base_ac":    int64(-3),
		"base_trait": "Stonecunning",
	}

	e, err := FromRecord(TypeAncestry, rec, AllFields())
	require.NoError(t, err)

	d := e.Details.(AncestryDetails)
	assert.Equal(t, 12, d.BaseHP)
	assert.Equal(t, 0, d.BaseAC, "negative stats clamp to zero")
	assert.Equal(t, "Stonecunning", *d.BaseTrait)
	assert.Equal(t, "", e.Rules())
	assert.Equal(t, []string{}, e.Tags)
}

func TestFromRecord_DisabledFieldsIgnored(t *testing.T) {
	rec := store.Record{
		"id":               "t1",
		"name":             "Brave",
		"is_hidden":        true,
		"requirement":      "Level 3",
		"markdown_content": "# hi",
	}

	e, err := FromRecord(TypeTrait, rec, NewFieldSet([]string{"markdown_content"}))
	require.NoError(t, err)

	assert.Nil(t, e.Hidden)
	assert.False(t, e.IsHidden())
	assert.Nil(t, e.Details.(TraitDetails).Requirement)
	assert.Equal(t, "# hi", e.MarkdownText())
}

func TestFromRecord_InvalidSpellLevelIsDropped(t *testing.T) {
	e, err := FromRecord(TypeSpell, store.Record{"id": "s", "name": "x", "spell_level": "epic"}, AllFields())
	require.NoError(t, err)
	assert.Equal(t, SpellLevel(""), e.Details.(SpellDetails).Level)
}

func TestFromRecord_Malformed(t *testing.T) {
	_, err := FromRecord(TypeTrait, store.Record{"name": "no id"}, AllFields())
	assert.Error(t, err)

	_, err = FromRecord(TypeTrait, store.Record{"id": "x", "name": "  "}, AllFields())
	assert.Error(t, err)
}

func TestToRecord(t *testing.T) {
	e := Entry{
		Type:        TypeSpell,
		Name:        "Fireball",
		Description: Ptr("hot"),
		Tags:        []string{"fire"},
		Hidden:      Ptr(true),
		Details:     SpellDetails{Level: SpellMinor},
	}

	rec := ToRecord(e, AllFields())
	assert.Equal(t, "Fireball", rec["name"])
	assert.Equal(t, "hot", rec["description"])
	assert.Equal(t, true, rec["is_hidden"])
	assert.Equal(t, "minor", rec["spell_level"])
	assert.Nil(t, rec["rules"])
	assert.Contains(t, rec, "rules", "nil optional fields are written so updates clear them")
	assert.NotContains(t, rec, "id")
	assert.NotContains(t, rec, "type")

	limited := ToRecord(e, NewFieldSet(nil))
	assert.NotContains(t, limited, "is_hidden")
	assert.NotContains(t, limited, "spell_level")
}

func TestRecordRoundTrip(t *testing.T) {
	orig := Entry{
		ID:      "a1",
		Type:    TypeAncestry,
		Name:    "Elf",
		Tags:    []string{"magic"},
		Details: AncestryDetails{BaseHP: 8, BaseAC: 12, BaseTrait: Ptr("Keen senses")},
	}
	rec := ToRecord(orig, AllFields())
	rec["id"] = orig.ID

	got, err := FromRecord(TypeAncestry, rec, AllFields())
	require.NoError(t, err)
	assert.Equal(t, orig.Details, got.Details)
	assert.Equal(t, orig.Tags, got.Tags)
}

func TestDuplicate(t *testing.T) {
	src := Entry{
		ID:          "o1",
		Type:        TypeObject,
		Name:        "Rope",
		Description: Ptr("50 ft"),
		Tags:        []string{"tool"},
		CreatedAt:   10,
		UpdatedAt:   20,
		Details:     ObjectDetails{Rules: Ptr("climb")},
	}

	dup := Duplicate(src)
	assert.Empty(t, dup.ID)
	assert.Zero(t, dup.CreatedAt)
	assert.Equal(t, TypeObject, dup.Type)
	assert.Equal(t, "climb", dup.Rules())

	*dup.Description = "changed"
	dup.Tags[0] = "changed"
	*dup.Details.(ObjectDetails).Rules = "changed"
	assert.Equal(t, "50 ft", *src.Description)
	assert.Equal(t, "tool", src.Tags[0])
	assert.Equal(t, "climb", src.Rules())
}

func TestMarshalJSON(t *testing.T) {
	e := Entry{ID: "t1", Type: TypeTrait, Name: "Brave", Details: TraitDetails{Requirement: Ptr("Lvl 2")}}
	data, err := json.Marshal(e)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "t1", out["id"])
	assert.Equal(t, "trait", out["type"])
	assert.Equal(t, "Lvl 2", out["requirement"])
	assert.Equal(t, false, out["is_hidden"])
}
