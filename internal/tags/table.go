package tags

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/hpungsan/tome/internal/i18n"
	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Translation is one row of the built-in table.
type Translation struct {
	EN string `yaml:"en" json:"en"`
	FR string `yaml:"fr" json:"fr"`
}

// In returns the label for l.
func (t Translation) In(l i18n.Lang) string {
	if l == i18n.FR {
		return t.FR
	}
	return t.EN
}

// Table is the static translation table with optional file overrides.
type Table struct {
	mu      sync.RWMutex
	base    map[string]Translation
	entries map[string]Translation
}

// ParseTable decodes a YAML mapping of code -> {en, fr}.
func ParseTable(data []byte) (map[string]Translation, error) {
	rows := make(map[string]Translation)
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse tag table: %w", err)
	}
	return rows, nil
}

// NewTable returns a table over base.
func NewTable(base map[string]Translation) *Table {
	b := maps.Clone(base)
	if b == nil {
		b = make(map[string]Translation)
	}
	return &Table{base: b, entries: maps.Clone(b)}
}

// DefaultTable returns the table compiled into the binary.
func DefaultTable() (*Table, error) {
	rows, err := ParseTable(builtinYAML)
	if err != nil {
		return nil, err
	}
	return NewTable(rows), nil
}

// MustDefaultTable is DefaultTable that panics on a broken embed.
func MustDefaultTable() *Table {
	t, err := DefaultTable()
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the non-empty label for code in l.
func (t *Table) Lookup(code string, l i18n.Lang) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.entries[code]
	if !ok {
		return "", false
	}
	label := row.In(l)
	return label, label != ""
}

// Codes returns every code in the table, sorted.
func (t *Table) Codes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.entries))
}

// Len returns the number of codes in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// ApplyOverrides replaces the override layer. Passing nil restores the base table.
func (t *Table) ApplyOverrides(over map[string]Translation) {
	entries := maps.Clone(t.base)
	maps.Copy(entries, over)

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
}

// LoadOverrideFile reads path and applies it as the override layer.
// A missing file clears the overrides.
func (t *Table) LoadOverrideFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			t.ApplyOverrides(nil)
			return nil
		}
		return fmt.Errorf("read tag table %s: %w", path, err)
	}
	over, err := ParseTable(data)
	if err != nil {
		return err
	}
	t.ApplyOverrides(over)
	return nil
}
