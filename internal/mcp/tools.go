package mcp

import "github.com/mark3labs/mcp-go/mcp"

var langOption = mcp.WithString("lang",
	mcp.Description("Display language for tag labels: en or fr (default fr)"),
	mcp.Enum("en", "fr"),
)

var entryListToolDef = mcp.NewTool("entry_list",
	mcp.WithDescription("List ruleset entries across every configured type, filtered by type and text search. "+
		"Search is case and accent insensitive and matches names, descriptions and tag labels."),
	mcp.WithString("type", mcp.Description(`Entry type, or "all" (default)`)),
	mcp.WithString("search", mcp.Description("Text to match")),
	langOption,
	mcp.WithBoolean("include_hidden", mcp.Description("Include entries flagged hidden")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var entryFetchToolDef = mcp.NewTool("entry_fetch",
	mcp.WithDescription("Fetch one entry by id, with its tag labels resolved."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
	mcp.WithString("type", mcp.Description("Entry type; narrows the lookup")),
	langOption,
	mcp.WithBoolean("include_hidden", mcp.Description("Allow fetching a hidden entry")),
)

var entryExportToolDef = mcp.NewTool("entry_export",
	mcp.WithDescription("Export the selected entries as one Markdown document. "+
		"With path, the document is written to a .md file instead of returned."),
	mcp.WithString("type", mcp.Description(`Entry type, or "all" (default)`)),
	mcp.WithString("search", mcp.Description("Text to match")),
	langOption,
	mcp.WithBoolean("include_hidden", mcp.Description("Include entries flagged hidden")),
	mcp.WithString("path", mcp.Description("Destination .md file")),
)

var tagListToolDef = mcp.NewTool("tag_list",
	mcp.WithDescription("List stored tag definitions ordered by code."),
	mcp.WithString("search", mcp.Description("Match code, names or category")),
	mcp.WithBoolean("include_hidden", mcp.Description("Include hidden definitions")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 100, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var tagResolveToolDef = mcp.NewTool("tag_resolve",
	mcp.WithDescription("Resolve tag codes to display labels. Unknown codes come back as the code itself."),
	mcp.WithArray("codes", mcp.Required(), mcp.WithStringItems(), mcp.Description("Tag codes")),
	langOption,
)

var tagSuggestToolDef = mcp.NewTool("tag_suggest",
	mcp.WithDescription("Suggest tag codes whose code or label contains the query."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Partial code or label")),
	langOption,
	mcp.WithArray("selected", mcp.WithStringItems(), mcp.Description("Codes to leave out")),
	mcp.WithNumber("limit", mcp.Description("Maximum suggestions")),
)
