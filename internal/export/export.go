// Package export formats entries as a single Markdown document.
package export

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/tome/internal/entry"
)

// Separator joins the per-entry blocks.
const Separator = "\n\n---\n\n"

// Entry renders one entry as a heading block. Empty sections are omitted.
func Entry(e entry.Entry) string {
	var b strings.Builder
	b.WriteString("# " + e.Name + "\n\n")
	b.WriteString("**Type:** " + string(e.Type) + "\n\n")
	if d := e.DescriptionText(); d != "" {
		b.WriteString("## Description\n" + d + "\n\n")
	}
	if r := e.Rules(); r != "" {
		b.WriteString("## Rules\n" + r + "\n\n")
	}
	if len(e.Tags) > 0 {
		b.WriteString("## Tags\n" + strings.Join(e.Tags, ", ") + "\n\n")
	}
	return b.String()
}

// Markdown renders entries in order, separated by horizontal rules.
// Callers exclude entries the viewer may not see.
func Markdown(entries []entry.Entry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, Entry(e))
	}
	return strings.Join(blocks, Separator)
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

// HTML renders a Markdown export for preview. Raw HTML in the source is
// omitted by goldmark's default renderer.
func HTML(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
