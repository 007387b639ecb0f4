package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env, cfg *config.Config) *Handlers {
	return &Handlers{env: env, cfg: cfg}
}

// Request types for each tool

// EntryListRequest represents the arguments for entry_list.
type EntryListRequest struct {
	Type          string `json:"type,omitempty"`
	Search        string `json:"search,omitempty"`
	Lang          string `json:"lang,omitempty"`
	IncludeHidden bool   `json:"include_hidden,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// EntryFetchRequest represents the arguments for entry_fetch.
type EntryFetchRequest struct {
	ID            string `json:"id"`
	Type          string `json:"type,omitempty"`
	Lang          string `json:"lang,omitempty"`
	IncludeHidden bool   `json:"include_hidden,omitempty"`
}

// EntryFetchResult is the entry_fetch payload.
type EntryFetchResult struct {
	Entry  entry.Entry       `json:"entry"`
	Labels map[string]string `json:"labels"`
}

// EntryExportRequest represents the arguments for entry_export.
type EntryExportRequest struct {
	Type          string `json:"type,omitempty"`
	Search        string `json:"search,omitempty"`
	Lang          string `json:"lang,omitempty"`
	IncludeHidden bool   `json:"include_hidden,omitempty"`
	Path          string `json:"path,omitempty"`
}

// TagListRequest represents the arguments for tag_list.
type TagListRequest struct {
	Search        string `json:"search,omitempty"`
	IncludeHidden bool   `json:"include_hidden,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// TagResolveRequest represents the arguments for tag_resolve.
type TagResolveRequest struct {
	Codes []string `json:"codes"`
	Lang  string   `json:"lang,omitempty"`
}

// TagSuggestRequest represents the arguments for tag_suggest.
type TagSuggestRequest struct {
	Query    string   `json:"query"`
	Lang     string   `json:"lang,omitempty"`
	Selected []string `json:"selected,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// parseLang accepts "", "en" or "fr"; "" falls back to the configured default.
func (h *Handlers) parseLang(raw string) (i18n.Lang, error) {
	if raw == "" {
		if h.cfg == nil {
			return i18n.FR, nil
		}
		return i18n.ParseOr(h.cfg.DefaultLanguage, i18n.FR), nil
	}
	l, ok := i18n.Parse(raw)
	if !ok {
		return "", errors.NewInvalidRequest("lang must be en or fr")
	}
	return l, nil
}

// Handler implementations

// HandleEntryList handles the entry_list tool call.
func (h *Handlers) HandleEntryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EntryListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	lang, err := h.parseLang(input.Lang)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListEntries(ctx, h.env, ops.ListEntriesInput{
		Type:          input.Type,
		Search:        input.Search,
		Lang:          lang,
		IncludeHidden: input.IncludeHidden,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleEntryFetch handles the entry_fetch tool call.
func (h *Handlers) HandleEntryFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EntryFetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	lang, err := h.parseLang(input.Lang)
	if err != nil {
		return errorResult(err), nil
	}

	found, err := ops.FindEntry(ctx, h.env, ops.FindEntryInput{ID: input.ID, Type: input.Type})
	if err != nil {
		return errorResult(err), nil
	}
	e := found.Entry
	if e.IsHidden() && h.env.Loader.Fields().Has(entry.FieldHidden) && !input.IncludeHidden {
		return errorResult(errors.NewNotFound("entry", input.ID)), nil
	}

	labels := map[string]string{}
	if len(e.Tags) > 0 {
		resolved, err := ops.ResolveTags(ctx, h.env, ops.ResolveTagsInput{Codes: e.Tags, Lang: lang})
		if err != nil {
			return errorResult(err), nil
		}
		labels = resolved.Labels
	}

	return successResult(EntryFetchResult{Entry: e, Labels: labels})
}

// HandleEntryExport handles the entry_export tool call.
func (h *Handlers) HandleEntryExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EntryExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	lang, err := h.parseLang(input.Lang)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ExportEntries(ctx, h.env, ops.ExportInput{
		Type:          input.Type,
		Search:        input.Search,
		Lang:          lang,
		IncludeHidden: input.IncludeHidden,
		Path:          input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagList handles the tag_list tool call.
func (h *Handlers) HandleTagList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListTags(ctx, h.env, ops.ListTagsInput{
		Search:        input.Search,
		IncludeHidden: input.IncludeHidden,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagResolve handles the tag_resolve tool call.
func (h *Handlers) HandleTagResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagResolveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	lang, err := h.parseLang(input.Lang)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ResolveTags(ctx, h.env, ops.ResolveTagsInput{Codes: input.Codes, Lang: lang})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagSuggest handles the tag_suggest tool call.
func (h *Handlers) HandleTagSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagSuggestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	lang, err := h.parseLang(input.Lang)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SuggestTags(ctx, h.env, ops.SuggestTagsInput{
		Query:    input.Query,
		Lang:     lang,
		Selected: input.Selected,
		Limit:    input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		// Only include details for non-internal errors
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		if tErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
