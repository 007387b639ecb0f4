package web

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/tome/internal/browse"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/export"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/markup"
	"github.com/hpungsan/tome/internal/metrics"
	"github.com/hpungsan/tome/internal/ops"
)

// ExportFilename is the download name for GET /export.md.
const ExportFilename = "tome-export.md"

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	env         *ops.Env
	cfg         *config.Config
	gate        *browse.Gate
	metrics     *metrics.Metrics
	logger      *slog.Logger
	renderer    *Renderer
	sessions    *Sessions
	static      fs.FS
	defaultLang i18n.Lang
}

// begin resolves the language, loads the caller's session and fills the
// common page fields.
func (h *Handlers) begin(w http.ResponseWriter, r *http.Request) (*session, PageData) {
	lang, persist := i18n.FromRequest(r, h.defaultLang)
	if persist {
		i18n.SetCookie(w, lang)
	}
	sess := h.sessions.Get(w, r, lang)
	sess.view.SetLanguage(lang)
	sess.view.Load(r.Context())

	viewer := sess.view.Viewer()
	page := PageData{
		Version:     h.renderer.version,
		Lang:        lang,
		Langs:       i18n.Supported(),
		Path:        r.URL.RequestURI(),
		Admin:       viewer.Admin,
		ShowHidden:  viewer.ShowHidden,
		GateEnabled: h.gate.Enabled(),
	}
	if !isFragment(r) {
		page.Notice = sess.takeNotice()
	}
	return sess, page
}

func (h *Handlers) t(l i18n.Lang, key string, args ...any) string {
	return h.renderer.catalog.T(l, key, args...)
}

// HandleEntries handles GET /entries. Renders the filtered, paged collection.
// The type and q parameters update the session criteria when present.
func (h *Handlers) HandleEntries(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	q := r.URL.Query()

	if q.Has("type") {
		if err := sess.view.SetType(q.Get("type")); err != nil {
			h.renderer.renderError(w, r, page, err)
			return
		}
	}
	if q.Has("q") {
		sess.view.SetSearch(q.Get("q"))
	}

	page.Title = h.t(page.Lang, "nav.entries")
	page.Nav = "entries"
	data := EntriesPageData{PageData: page, Snapshot: sess.view.Snapshot()}

	// Search-as-you-type swaps only the results section
	if isFragment(r) && r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "entries", "results", data)
		return
	}
	h.renderer.renderPage(w, r, "entries", data)
}

// HandleEntriesMore handles GET /entries/more. It reveals the next page and
// returns only the new rows. X-Has-More tells the client whether to keep
// observing the sentinel. The client sends its row count as shown; when the
// session list was reset since, the response carries X-Reload instead of rows.
func (h *Handlers) HandleEntriesMore(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)

	before := len(sess.view.Snapshot().Visible)
	if shown := parseIntParam(r, "shown", -1); shown >= 0 && shown != before {
		reloadList(w)
		return
	}
	sess.view.NearEnd()
	snap := sess.view.Snapshot()
	if before > len(snap.Visible) {
		reloadList(w)
		return
	}
	snap.Visible = snap.Visible[before:]

	w.Header().Set("X-Has-More", strconv.FormatBool(snap.HasMore))
	h.renderer.renderBlock(w, http.StatusOK, "entries", "entry-rows", EntriesPageData{PageData: page, Snapshot: snap})
}

// HandleEntry handles GET /entries/{id}. Renders the detail page.
func (h *Handlers) HandleEntry(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	id := r.PathValue("id")

	e, ok := sess.view.Entry(id)
	if !ok {
		h.renderer.renderError(w, r, page, errors.NewNotFound("entry", id))
		return
	}

	page.Title = e.Name
	page.Nav = "entries"
	h.renderer.renderPage(w, r, "entry", EntryPageData{
		PageData: page,
		Entry:    e,
		Labels:   sess.view.Labels(e.Tags),
		Content:  markup.Render(e.MarkdownText()),
		Details:  h.detailRows(e, page.Lang),
	})
}

// HandleNewEntry handles GET /entries/new. Renders the empty form.
func (h *Handlers) HandleNewEntry(w http.ResponseWriter, r *http.Request) {
	_, page := h.begin(w, r)
	if !page.Admin {
		h.renderer.renderError(w, r, page, errors.NewUnauthorized())
		return
	}

	types := h.env.Loader.Types()
	typ := entry.Type(r.URL.Query().Get("type"))
	if !h.env.Loader.HasType(typ) {
		typ = types[0]
	}

	page.Title = h.t(page.Lang, "entry.new")
	page.Nav = "entries"
	h.renderer.renderPage(w, r, "form", FormPageData{
		PageData: page,
		Action:   "/entries",
		Type:     typ,
		Types:    types,
		Fields:   h.formFields(typ, nil),
	})
}

// HandleCreateEntry handles POST /entries.
func (h *Handlers) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, page, errors.NewInvalidRequest("malformed form"))
		return
	}

	typ := entry.Type(r.PostForm.Get("type"))
	input, err := h.entryInput(r)
	if err == nil {
		var created entry.Entry
		created, err = sess.view.Create(r.Context(), ops.CreateEntryInput{Type: string(typ), EntryInput: input})
		if err == nil {
			sess.flash(h.t(page.Lang, "notice.created"))
			http.Redirect(w, r, "/entries/"+created.ID, http.StatusSeeOther)
			return
		}
	}

	h.renderFormError(w, r, page, FormPageData{
		Action: "/entries",
		Type:   typ,
		Types:  h.env.Loader.Types(),
		Fields: h.formFields(typ, formValues(r.PostForm)),
	}, err)
}

// HandleEditEntry handles GET /entries/{id}/edit.
func (h *Handlers) HandleEditEntry(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	if !page.Admin {
		h.renderer.renderError(w, r, page, errors.NewUnauthorized())
		return
	}
	id := r.PathValue("id")
	e, ok := sess.view.Entry(id)
	if !ok {
		h.renderer.renderError(w, r, page, errors.NewNotFound("entry", id))
		return
	}

	page.Title = e.Name
	page.Nav = "entries"
	h.renderer.renderPage(w, r, "form", FormPageData{
		PageData: page,
		Action:   "/entries/" + e.ID,
		Editing:  true,
		Type:     e.Type,
		Fields:   h.formFields(e.Type, entryValues(e)),
	})
}

// HandleUpdateEntry handles POST /entries/{id}.
func (h *Handlers) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, page, errors.NewInvalidRequest("malformed form"))
		return
	}
	id := r.PathValue("id")
	typ := entry.Type(r.PostForm.Get("type"))

	input, err := h.entryInput(r)
	if err == nil {
		_, err = sess.view.Update(r.Context(), ops.UpdateEntryInput{ID: id, Type: string(typ), EntryInput: input})
		if err == nil {
			sess.flash(h.t(page.Lang, "notice.updated"))
			http.Redirect(w, r, "/entries/"+id, http.StatusSeeOther)
			return
		}
	}

	h.renderFormError(w, r, page, FormPageData{
		Action:  "/entries/" + id,
		Editing: true,
		Type:    typ,
		Fields:  h.formFields(typ, formValues(r.PostForm)),
	}, err)
}

// HandleDeleteEntry handles POST /entries/{id}/delete. On failure the
// list is left as it was and the error is shown.
func (h *Handlers) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	if err := sess.view.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.renderer.renderError(w, r, page, err)
		return
	}
	sess.flash(h.t(page.Lang, "notice.deleted"))
	http.Redirect(w, r, "/entries", http.StatusSeeOther)
}

// HandleDuplicateEntry handles POST /entries/{id}/duplicate and opens the
// copy in the editor.
func (h *Handlers) HandleDuplicateEntry(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	dup, err := sess.view.Duplicate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, page, err)
		return
	}
	sess.flash(h.t(page.Lang, "notice.duplicated"))
	http.Redirect(w, r, "/entries/"+dup.ID+"/edit", http.StatusSeeOther)
}

// HandleTags handles GET /tags with search over tag definitions.
func (h *Handlers) HandleTags(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	sess.tags.Load(r.Context(), sess.view.Viewer())
	if q := r.URL.Query(); q.Has("q") {
		sess.tags.SetSearch(q.Get("q"))
	}
	h.renderTags(w, r, http.StatusOK, sess, page, nil, "")
}

// HandleTagsMore handles GET /tags/more.
func (h *Handlers) HandleTagsMore(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	sess.tags.Load(r.Context(), sess.view.Viewer())

	before := len(sess.tags.Snapshot().Visible)
	if shown := parseIntParam(r, "shown", -1); shown >= 0 && shown != before {
		reloadList(w)
		return
	}
	sess.tags.NearEnd()
	snap := sess.tags.Snapshot()
	if before > len(snap.Visible) {
		reloadList(w)
		return
	}
	snap.Visible = snap.Visible[before:]

	w.Header().Set("X-Has-More", strconv.FormatBool(snap.HasMore))
	h.renderer.renderBlock(w, http.StatusOK, "tags", "tag-rows", TagsPageData{PageData: page, Snapshot: snap})
}

// HandleSuggestTags handles GET /tags/suggest with JSON autocomplete for the
// entry form.
func (h *Handlers) HandleSuggestTags(w http.ResponseWriter, r *http.Request) {
	lang, _ := i18n.FromRequest(r, h.defaultLang)
	q := r.URL.Query()

	var selected []string
	if raw := q.Get("selected"); raw != "" {
		selected = strings.Split(raw, ",")
	}
	out, err := ops.SuggestTags(r.Context(), h.env, ops.SuggestTagsInput{
		Query:    q.Get("q"),
		Lang:     lang,
		Selected: selected,
		Limit:    parseIntParam(r, "limit", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, PageData{Lang: lang}, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleCreateTag handles POST /tags.
func (h *Handlers) HandleCreateTag(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, page, errors.NewInvalidRequest("malformed form"))
		return
	}
	viewer := sess.view.Viewer()
	sess.tags.Load(r.Context(), viewer)

	if _, err := sess.tags.Create(r.Context(), viewer, tagInput(r)); err != nil {
		h.renderTagError(w, r, sess, page, err)
		return
	}
	h.tagsChanged(w, r, sess, page)
}

// HandleUpdateTag handles POST /tags/{id}.
func (h *Handlers) HandleUpdateTag(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, page, errors.NewInvalidRequest("malformed form"))
		return
	}
	viewer := sess.view.Viewer()
	sess.tags.Load(r.Context(), viewer)

	input := ops.UpdateTagInput{ID: r.PathValue("id"), TagInput: tagInput(r)}
	if _, err := sess.tags.Update(r.Context(), viewer, input); err != nil {
		h.renderTagError(w, r, sess, page, err)
		return
	}
	h.tagsChanged(w, r, sess, page)
}

// HandleDeleteTag handles POST /tags/{id}/delete.
func (h *Handlers) HandleDeleteTag(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	viewer := sess.view.Viewer()
	sess.tags.Load(r.Context(), viewer)

	if err := sess.tags.Delete(r.Context(), viewer, r.PathValue("id")); err != nil {
		h.renderTagError(w, r, sess, page, err)
		return
	}
	sess.flash(h.t(page.Lang, "notice.tag_deleted"))
	sess.view.Refresh(r.Context())
	http.Redirect(w, r, "/tags", http.StatusSeeOther)
}

// tagsChanged reloads labels in the entry view after a definition changed.
func (h *Handlers) tagsChanged(w http.ResponseWriter, r *http.Request, sess *session, page PageData) {
	sess.flash(h.t(page.Lang, "notice.tag_saved"))
	sess.view.Refresh(r.Context())
	http.Redirect(w, r, "/tags", http.StatusSeeOther)
}

func (h *Handlers) renderTagError(w http.ResponseWriter, r *http.Request, sess *session, page PageData, err error) {
	tErr, ok := errors.As(err)
	if !ok || tErr.Status >= 500 || tErr.Code == errors.ErrUnauthorized || isFragment(r) || wantsJSON(r) {
		h.renderer.renderError(w, r, page, err)
		return
	}
	values := map[string]string{}
	for k := range r.PostForm {
		values[k] = r.PostForm.Get(k)
	}
	h.renderTags(w, r, tErr.Status, sess, page, values, tErr.Message)
}

func (h *Handlers) renderTags(w http.ResponseWriter, r *http.Request, status int, sess *session, page PageData, values map[string]string, msg string) {
	page.Title = h.t(page.Lang, "nav.tags")
	page.Nav = "tags"
	h.renderer.renderPageStatus(w, r, status, "tags", TagsPageData{
		PageData: page,
		Snapshot: sess.tags.Snapshot(),
		Values:   values,
		Error:    msg,
	})
}

// HandleExport handles GET /export with a rendered preview of the Markdown
// export of the current filtered collection.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	entries := sess.view.Filtered()
	md := export.Markdown(entries)

	preview, err := export.HTML(md)
	if err != nil {
		h.renderer.renderError(w, r, page, errors.NewInternal(err))
		return
	}

	page.Title = h.t(page.Lang, "export.title")
	page.Nav = "export"
	h.renderer.renderPage(w, r, "export", ExportPageData{
		PageData: page,
		Count:    len(entries),
		Markdown: md,
		Preview:  preview,
	})
}

// HandleExportMarkdown handles GET /export.md, the raw Markdown download.
func (h *Handlers) HandleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.begin(w, r)
	md := export.Markdown(sess.view.Filtered())

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	_, _ = w.Write([]byte(md))
}

// HandleLogin handles POST /login and enables admin mode for the session.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, page, errors.NewInvalidRequest("malformed form"))
		return
	}
	if err := sess.view.Login(r.PostForm.Get("password")); err != nil {
		h.logger.Info("admin login rejected", slog.String("remote", r.RemoteAddr))
		sess.flash(h.t(page.Lang, "admin.invalid_password"))
	}
	http.Redirect(w, r, safeNext(r.PostForm.Get("next")), http.StatusSeeOther)
}

// HandleLogout handles POST /logout.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.begin(w, r)
	sess.view.Logout()
	_ = r.ParseForm()
	http.Redirect(w, r, safeNext(r.PostForm.Get("next")), http.StatusSeeOther)
}

// HandleShowHidden handles POST /hidden, the admin show-hidden toggle.
func (h *Handlers) HandleShowHidden(w http.ResponseWriter, r *http.Request) {
	sess, page := h.begin(w, r)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, page, errors.NewInvalidRequest("malformed form"))
		return
	}
	if err := sess.view.SetShowHidden(r.PostForm.Get("show") == "on"); err != nil {
		h.renderer.renderError(w, r, page, err)
		return
	}
	http.Redirect(w, r, "/entries", http.StatusSeeOther)
}

// HandleLanguage handles GET /lang?lang=xx&next=/path. The language cookie
// is set by begin because the choice came from the query.
func (h *Handlers) HandleLanguage(w http.ResponseWriter, r *http.Request) {
	h.begin(w, r)
	http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
}

func (h *Handlers) renderFormError(w http.ResponseWriter, r *http.Request, page PageData, data FormPageData, err error) {
	tErr, ok := errors.As(err)
	if !ok || tErr.Status >= 500 || tErr.Code == errors.ErrUnauthorized || isFragment(r) || wantsJSON(r) {
		h.renderer.renderError(w, r, page, err)
		return
	}
	if data.Types == nil {
		data.Types = h.env.Loader.Types()
	}
	page.Title = h.t(page.Lang, "entry.edit")
	page.Nav = "entries"
	data.PageData = page
	data.Error = tErr.Message
	h.renderer.renderPageStatus(w, r, tErr.Status, "form", data)
}

// formFields lists the inputs for typ, filled from values.
func (h *Handlers) formFields(typ entry.Type, values formValues) []FormField {
	fields := h.env.Loader.Fields()
	add := func(out []FormField, name, kind string) []FormField {
		return append(out, FormField{Name: name, Kind: kind, Value: values.get(name)})
	}

	out := make([]FormField, 0, 8)
	out = add(out, "name", "text")
	out = add(out, "description", "textarea")
	out = add(out, "tags", "tags")
	if fields.Has(entry.FieldHidden) {
		out = add(out, "is_hidden", "checkbox")
	}
	if fields.Has(entry.FieldMarkdown) {
		out = add(out, "markdown_content", "textarea")
	}

	switch entry.DetailsFor(typ).(type) {
	case entry.TraitDetails:
		if fields.Has(entry.FieldRequirement) {
			out = add(out, "requirement", "textarea")
		}
	case entry.SpellDetails:
		if fields.Has(entry.FieldSpellLevel) {
			out = add(out, "spell_level", "spell_level")
		}
		if fields.Has(entry.FieldRules) {
			out = add(out, "rules", "textarea")
		}
	case entry.AncestryDetails:
		if fields.Has(entry.FieldAncestryStats) {
			out = add(out, "base_hp", "number")
			out = add(out, "base_ac", "number")
			out = add(out, "base_trait", "text")
		}
	default:
		if fields.Has(entry.FieldRules) {
			out = add(out, "rules", "textarea")
		}
	}
	return out
}

// entryInput reads the submitted form. Keys missing from the form are
// left unchanged; the hidden checkbox is always applied when enabled.
func (h *Handlers) entryInput(r *http.Request) (ops.EntryInput, error) {
	form := r.PostForm
	in := ops.EntryInput{
		Name:            formPtr(form, "name"),
		Description:     formPtr(form, "description"),
		MarkdownContent: formPtr(form, "markdown_content"),
		Requirement:     formPtr(form, "requirement"),
		Rules:           formPtr(form, "rules"),
		SpellLevel:      formPtr(form, "spell_level"),
		BaseTrait:       formPtr(form, "base_trait"),
	}
	if form.Has("tags") {
		in.Tags = splitTags(form.Get("tags"))
	}
	if h.env.Loader.Fields().Has(entry.FieldHidden) {
		hidden := form.Get("is_hidden") == "on"
		in.Hidden = &hidden
	}

	for _, key := range []string{"base_hp", "base_ac"} {
		raw := strings.TrimSpace(form.Get(key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return ops.EntryInput{}, errors.NewInvalidRequest(key + " must be a whole number")
		}
		if key == "base_hp" {
			in.BaseHP = &n
		} else {
			in.BaseAC = &n
		}
	}
	return in, nil
}

// detailRows lists the type-specific fields of e that carry a value.
func (h *Handlers) detailRows(e entry.Entry, lang i18n.Lang) []DetailRow {
	var rows []DetailRow
	text := func(key, v string) {
		if v != "" {
			rows = append(rows, DetailRow{Key: key, Value: template.HTML(template.HTMLEscapeString(v))})
		}
	}
	rich := func(key, v string) {
		if v != "" {
			rows = append(rows, DetailRow{Key: key, Value: markup.Render(v)})
		}
	}

	switch d := e.Details.(type) {
	case entry.TraitDetails:
		rich("field.requirement", str(d.Requirement))
	case entry.SpellDetails:
		if d.Level != "" {
			text("field.spell_level", h.t(lang, "spell."+string(d.Level)))
		}
	case entry.AncestryDetails:
		text("field.base_hp", strconv.Itoa(d.BaseHP))
		text("field.base_ac", strconv.Itoa(d.BaseAC))
		text("field.base_trait", str(d.BaseTrait))
	}
	rich("field.rules", e.Rules())
	return rows
}

// formValues is the string form of an entry or a submitted form.
type formValues map[string][]string

func (v formValues) get(key string) string {
	if vs := v[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func entryValues(e entry.Entry) formValues {
	v := formValues{
		"name":             {e.Name},
		"description":      {e.DescriptionText()},
		"tags":             {strings.Join(e.Tags, ", ")},
		"markdown_content": {e.MarkdownText()},
		"rules":            {e.Rules()},
	}
	if e.IsHidden() {
		v["is_hidden"] = []string{"on"}
	}
	switch d := e.Details.(type) {
	case entry.TraitDetails:
		v["requirement"] = []string{str(d.Requirement)}
	case entry.SpellDetails:
		v["spell_level"] = []string{string(d.Level)}
	case entry.AncestryDetails:
		v["base_hp"] = []string{strconv.Itoa(d.BaseHP)}
		v["base_ac"] = []string{strconv.Itoa(d.BaseAC)}
		v["base_trait"] = []string{str(d.BaseTrait)}
	}
	return v
}

func tagInput(r *http.Request) ops.TagInput {
	hidden := r.PostForm.Get("is_hidden") == "on"
	return ops.TagInput{
		Code:     formPtr(r.PostForm, "code"),
		NameEN:   formPtr(r.PostForm, "name_en"),
		NameFR:   formPtr(r.PostForm, "name_fr"),
		Category: formPtr(r.PostForm, "category"),
		Hidden:   &hidden,
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// formPtr returns nil when key was not submitted.
func formPtr(form map[string][]string, key string) *string {
	vs, ok := form[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	s := vs[0]
	return &s
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/entries"
	}
	return next
}

// reloadList tells the client its rows no longer match the session list.
func reloadList(w http.ResponseWriter) {
	w.Header().Set("X-Reload", "true")
	w.Header().Set("X-Has-More", "false")
	w.WriteHeader(http.StatusOK)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
