package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/hpungsan/tome/internal/browse"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/markup"
	"github.com/hpungsan/tome/internal/tags"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title       string
	Version     string
	Nav         string // active nav item: "entries", "tags", "export"
	Lang        i18n.Lang
	Langs       []i18n.Lang
	Path        string // current request URI, used as the language switch target
	Admin       bool
	ShowHidden  bool
	GateEnabled bool
	Notice      string
}

// EntriesPageData is the template data for the entry list.
type EntriesPageData struct {
	PageData
	Snapshot browse.Snapshot
}

// DetailRow is one type-specific field on the entry page.
type DetailRow struct {
	Key   string // catalog key of the label
	Value template.HTML
}

// EntryPageData is the template data for the entry detail page.
type EntryPageData struct {
	PageData
	Entry   entry.Entry
	Labels  map[string]string
	Content template.HTML
	Details []DetailRow
}

// FormPageData is the template data for the entry create/edit form.
type FormPageData struct {
	PageData
	Action  string
	Editing bool
	Type    entry.Type
	Types   []entry.Type
	Fields  []FormField
	Error   string
}

// FormField is one input on the entry form.
type FormField struct {
	Name  string // form key, also the catalog key suffix under "field."
	Kind  string // text, textarea, number, checkbox, spell_level
	Value string
}

// TagsPageData is the template data for the tag definitions page.
type TagsPageData struct {
	PageData
	Snapshot browse.TagSnapshot
	Values   map[string]string
	Error    string
}

// ExportPageData is the template data for the export preview.
type ExportPageData struct {
	PageData
	Count    int
	Markdown string
	Preview  template.HTML
	Query    string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	catalog   *i18n.Catalog
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, cat *i18n.Catalog, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	funcMap := template.FuncMap{
		"t": func(l i18n.Lang, key string, args ...any) string {
			return cat.T(l, key, args...)
		},
		"typeLabel": func(l i18n.Lang, t entry.Type) string {
			return cat.T(l, "type."+string(t))
		},
		"tagName":    func(d tags.Definition, l i18n.Lang) string { return d.Name(l) },
		"markup":     markup.Render,
		"add":        func(a, b int) int { return a + b },
		"formatTime": formatTime,
		"join":       strings.Join,
		"deref":      deref,
		"hasValue":   hasValue,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"entries": "entries.html",
		"entry":   "entry.html",
		"form":    "form.html",
		"tags":    "tags.html",
		"export":  "export.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		catalog:   cat,
		logger:    logger,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For fragment requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if isFragment(req) {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock renders a specific named block from a page template.
// Used for partial swaps such as appending the next page of rows.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("template not found", slog.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("page", page), slog.String("block", block), slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, page PageData, err error) {
	tErr, ok := errors.As(err)
	if !ok {
		tErr = errors.NewInternal(err)
	}
	if tErr.Status >= 500 {
		r.logger.Error("request failed",
			slog.String("path", req.URL.Path), slog.String("code", string(tErr.Code)), slog.String("error", tErr.Message))
	}

	status := tErr.Status
	message := tErr.Message
	if tErr.Code == errors.ErrUnauthorized {
		message = r.catalog.T(page.Lang, "admin.required")
	}

	if isFragment(req) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(tErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	page.Title = r.catalog.T(page.Lang, "error.title")
	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData:   page,
		StatusCode: status,
		Message:    message,
	})
}

func isFragment(req *http.Request) bool {
	return req != nil && req.Header.Get("HX-Request") == "true"
}

func wantsJSON(req *http.Request) bool {
	return req != nil && strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// deref dereferences a pointer, returning the zero value if nil.
// Supports the optional pointer fields used in templates.
func deref(v any) any {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Zero(rv.Type().Elem()).Interface()
		}
		return rv.Elem().Interface()
	}
	return v
}

// hasValue checks if a pointer value is non-nil.
func hasValue(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return !rv.IsNil()
	}
	return true
}
