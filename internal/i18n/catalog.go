package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Catalog holds the UI strings for every supported language.
type Catalog struct {
	builder *catalog.Builder
	keys    map[Lang]map[string]string
}

// LoadCatalog parses locales/<lang>.yaml files from fsys.
// Nested YAML maps are flattened into dotted keys ("nav.tags").
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{
		builder: catalog.NewBuilder(catalog.Fallback(FR.Tag())),
		keys:    make(map[Lang]map[string]string),
	}
	for _, l := range supported {
		data, err := fs.ReadFile(fsys, path.Join("locales", string(l)+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("read %s catalog: %w", l, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s catalog: %w", l, err)
		}
		flat := make(map[string]string)
		flatten("", raw, flat)
		for key, msg := range flat {
			if err := c.builder.SetString(l.Tag(), key, msg); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", l, key, err)
			}
		}
		c.keys[l] = flat
	}
	return c, nil
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(localeFS)
}

// MustDefaultCatalog is DefaultCatalog that panics on a broken embed.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Printer returns a message printer for l backed by this catalog.
func (c *Catalog) Printer(l Lang) *message.Printer {
	return message.NewPrinter(l.Tag(), message.Catalog(c.builder))
}

// T translates key for l. Unknown keys come back unchanged.
func (c *Catalog) T(l Lang, key string, args ...any) string {
	if _, ok := c.keys[l][key]; !ok {
		if _, ok := c.keys[FR][key]; !ok {
			return key
		}
	}
	return c.Printer(l).Sprintf(key, args...)
}

// Keys returns the sorted message keys defined for l.
func (c *Catalog) Keys(l Lang) []string {
	keys := make([]string, 0, len(c.keys[l]))
	for k := range c.keys[l] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = strings.TrimSpace(fmt.Sprint(val))
		}
	}
}
