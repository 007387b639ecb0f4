package entry

// Field names an optional entry field that configuration can enable.
type Field string

const (
	FieldHidden        Field = "is_hidden"
	FieldMarkdown      Field = "markdown_content"
	FieldRequirement   Field = "requirement"
	FieldRules         Field = "rules"
	FieldSpellLevel    Field = "spell_level"
	FieldAncestryStats Field = "ancestry_stats"
)

// FieldSet is the set of enabled optional fields.
type FieldSet map[Field]bool

// NewFieldSet builds a set from configuration names.
func NewFieldSet(names []string) FieldSet {
	fs := make(FieldSet, len(names))
	for _, n := range names {
		fs[Field(n)] = true
	}
	return fs
}

// AllFields enables every optional field.
func AllFields() FieldSet {
	return FieldSet{
		FieldHidden:        true,
		FieldMarkdown:      true,
		FieldRequirement:   true,
		FieldRules:         true,
		FieldSpellLevel:    true,
		FieldAncestryStats: true,
	}
}

// Has reports whether f is enabled.
func (fs FieldSet) Has(f Field) bool {
	return fs[f]
}
