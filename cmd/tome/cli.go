package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tome/internal/browse"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/web"
)

// stdout and stdin are swapped by tests.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// newCLIApp creates the CLI application with all commands.
// rt may be nil when only help or version output is needed.
func newCLIApp(rt *runtime) *cli.App {
	app := &cli.App{
		Name:    "tome",
		Usage:   "Ruleset content catalog",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(rt),
			listCmd(rt),
			showCmd(rt),
			addCmd(rt),
			updateCmd(rt),
			deleteCmd(rt),
			duplicateCmd(rt),
			exportCmd(rt),
			tagsCmd(rt),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			cfg := *rt.cfg
			if c.IsSet("bind") {
				cfg.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				cfg.Port = c.Int("port")
			}
			if err := cfg.Validate(); err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			gate, err := browse.NewGate(cfg.AdminPassword)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if !gate.Enabled() {
				rt.logger.Info("no admin password configured; editing is disabled")
			}

			srv, err := web.NewServer(web.Options{
				Env:     rt.env,
				Gate:    gate,
				Config:  &cfg,
				Metrics: rt.metrics,
				Logger:  rt.logger,
				Version: Version,
			})
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()
			rt.watchTagTable(ctx)

			return web.Run(srv, rt.logger)
		},
	}
}

// listCmd creates the list command.
func listCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List entries across every configured type",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "all", Usage: "Entry type or all"},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Search name, description and tag labels"},
			&cli.StringFlag{Name: "lang", Usage: "Language for tag labels: en|fr"},
			&cli.BoolFlag{Name: "include-hidden", Usage: "Include hidden entries"},
			&cli.IntFlag{Name: "limit", Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			lang, err := langFlag(c, rt)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.ListEntries(c.Context, rt.env, ops.ListEntriesInput{
				Type:          c.String("type"),
				Search:        c.String("search"),
				Lang:          lang,
				IncludeHidden: c.Bool("include-hidden"),
				Limit:         c.Int("limit"),
				Offset:        c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showOutput is an entry with its tag labels resolved.
type showOutput struct {
	Entry  any               `json:"entry"`
	Labels map[string]string `json:"labels"`
}

// showCmd creates the show command.
func showCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one entry with resolved tag labels",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Entry type (narrows the lookup)"},
			&cli.StringFlag{Name: "lang", Usage: "Language for tag labels: en|fr"},
		},
		Action: func(c *cli.Context) error {
			lang, err := langFlag(c, rt)
			if err != nil {
				return outputError(err)
			}

			found, err := ops.FindEntry(c.Context, rt.env, ops.FindEntryInput{
				ID:   c.Args().First(),
				Type: c.String("type"),
			})
			if err != nil {
				return outputError(err)
			}

			labels := map[string]string{}
			if len(found.Entry.Tags) > 0 {
				resolved, err := ops.ResolveTags(c.Context, rt.env, ops.ResolveTagsInput{Codes: found.Entry.Tags, Lang: lang})
				if err != nil {
					return outputError(err)
				}
				labels = resolved.Labels
			}

			return outputJSON(showOutput{Entry: found.Entry, Labels: labels})
		},
	}
}

// entryFlags are shared by add and update.
func entryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Entry name"},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description (basic markup)"},
		&cli.StringFlag{Name: "tags", Usage: "Comma-separated tag codes"},
		&cli.BoolFlag{Name: "hidden", Usage: "Hide the entry from non-admin views"},
		&cli.StringFlag{Name: "markdown", Aliases: []string{"m"}, Usage: "Markdown content, or - to read it from stdin"},
		&cli.StringFlag{Name: "requirement", Usage: "Requirement (trait)"},
		&cli.StringFlag{Name: "rules", Usage: "Rules text (object, spell, class, trap, monster)"},
		&cli.StringFlag{Name: "spell-level", Usage: "Spell level: minor|major"},
		&cli.IntFlag{Name: "base-hp", Usage: "Base HP (ancestry)"},
		&cli.IntFlag{Name: "base-ac", Usage: "Base AC (ancestry)"},
		&cli.StringFlag{Name: "base-trait", Usage: "Base trait (ancestry)"},
	}
}

// entryInputFromFlags maps explicitly set flags to an EntryInput.
// Unset flags stay nil so updates leave those fields unchanged.
func entryInputFromFlags(c *cli.Context) (ops.EntryInput, error) {
	var in ops.EntryInput
	if c.IsSet("name") {
		in.Name = ptr(c.String("name"))
	}
	if c.IsSet("description") {
		in.Description = ptr(c.String("description"))
	}
	if c.IsSet("tags") {
		in.Tags = parseTags(c.String("tags"))
		if in.Tags == nil {
			in.Tags = []string{}
		}
	}
	if c.IsSet("hidden") {
		in.Hidden = ptr(c.Bool("hidden"))
	}
	if c.IsSet("markdown") {
		text := c.String("markdown")
		if text == "-" {
			var err error
			if text, err = readStdin(); err != nil {
				return in, errors.NewInternal(err)
			}
		}
		in.MarkdownContent = &text
	}
	if c.IsSet("requirement") {
		in.Requirement = ptr(c.String("requirement"))
	}
	if c.IsSet("rules") {
		in.Rules = ptr(c.String("rules"))
	}
	if c.IsSet("spell-level") {
		in.SpellLevel = ptr(c.String("spell-level"))
	}
	if c.IsSet("base-hp") {
		in.BaseHP = ptr(c.Int("base-hp"))
	}
	if c.IsSet("base-ac") {
		in.BaseAC = ptr(c.Int("base-ac"))
	}
	if c.IsSet("base-trait") {
		in.BaseTrait = ptr(c.String("base-trait"))
	}
	return in, nil
}

// addCmd creates the add command.
func addCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create an entry",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "Entry type"},
		}, entryFlags()...),
		Action: func(c *cli.Context) error {
			in, err := entryInputFromFlags(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.CreateEntry(c.Context, rt.env, ops.CreateEntryInput{
				Type:       c.String("type"),
				EntryInput: in,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update an entry; only the given fields change",
		ArgsUsage: "<id>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Entry type (must match the stored type)"},
		}, entryFlags()...),
		Action: func(c *cli.Context) error {
			in, err := entryInputFromFlags(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.UpdateEntry(c.Context, rt.env, ops.UpdateEntryInput{
				ID:         c.Args().First(),
				Type:       c.String("type"),
				EntryInput: in,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete an entry",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Entry type (looked up when omitted)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.DeleteEntry(c.Context, rt.env, ops.DeleteEntryInput{
				ID:   c.Args().First(),
				Type: c.String("type"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// duplicateCmd creates the duplicate command.
func duplicateCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "duplicate",
		Usage:     "Copy an entry under a new id",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Entry type (looked up when omitted)"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Name of the copy (default: source name + \" (copy)\")"},
		},
		Action: func(c *cli.Context) error {
			input := ops.DuplicateEntryInput{
				ID:   c.Args().First(),
				Type: c.String("type"),
			}
			if c.IsSet("name") {
				input.Name = ptr(c.String("name"))
			}

			output, err := ops.DuplicateEntry(c.Context, rt.env, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export entries as one Markdown document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "all", Usage: "Entry type or all"},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Search filter"},
			&cli.StringFlag{Name: "lang", Usage: "Language for tag labels: en|fr"},
			&cli.BoolFlag{Name: "include-hidden", Usage: "Include hidden entries"},
			&cli.StringFlag{Name: "path", Usage: "Write the document to this .md file"},
		},
		Action: func(c *cli.Context) error {
			lang, err := langFlag(c, rt)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.ExportEntries(c.Context, rt.env, ops.ExportInput{
				Type:          c.String("type"),
				Search:        c.String("search"),
				Lang:          lang,
				IncludeHidden: c.Bool("include-hidden"),
				Path:          c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// tagsCmd groups the tag definition commands.
func tagsCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "Manage tag definitions",
		Subcommands: []*cli.Command{
			tagsListCmd(rt),
			tagsAddCmd(rt),
			tagsUpdateCmd(rt),
			tagsDeleteCmd(rt),
			tagsResolveCmd(rt),
			tagsSuggestCmd(rt),
		},
	}
}

func tagFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "code", Usage: "Unique tag code"},
		&cli.StringFlag{Name: "en", Usage: "English label"},
		&cli.StringFlag{Name: "fr", Usage: "French label"},
		&cli.StringFlag{Name: "category", Usage: "Category (blank clears)"},
		&cli.BoolFlag{Name: "hidden", Usage: "Hide the tag from non-admin views"},
	}
}

func tagInputFromFlags(c *cli.Context) ops.TagInput {
	var in ops.TagInput
	if c.IsSet("code") {
		in.Code = ptr(c.String("code"))
	}
	if c.IsSet("en") {
		in.NameEN = ptr(c.String("en"))
	}
	if c.IsSet("fr") {
		in.NameFR = ptr(c.String("fr"))
	}
	if c.IsSet("category") {
		in.Category = ptr(c.String("category"))
	}
	if c.IsSet("hidden") {
		in.Hidden = ptr(c.Bool("hidden"))
	}
	return in
}

func tagsListCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List tag definitions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Match code or either label"},
			&cli.BoolFlag{Name: "include-hidden", Usage: "Include hidden tags"},
			&cli.IntFlag{Name: "limit", Value: ops.DefaultTagLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListTags(c.Context, rt.env, ops.ListTagsInput{
				Search:        c.String("search"),
				IncludeHidden: c.Bool("include-hidden"),
				Limit:         c.Int("limit"),
				Offset:        c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func tagsAddCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create a tag definition",
		Flags: tagFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.CreateTag(c.Context, rt.env, tagInputFromFlags(c))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func tagsUpdateCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a tag definition; only the given fields change",
		ArgsUsage: "<id>",
		Flags:     tagFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.UpdateTag(c.Context, rt.env, ops.UpdateTagInput{
				ID:       c.Args().First(),
				TagInput: tagInputFromFlags(c),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func tagsDeleteCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a tag definition",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.DeleteTag(c.Context, rt.env, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func tagsResolveCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve tag codes to labels",
		ArgsUsage: "<code>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Usage: "Label language: en|fr"},
		},
		Action: func(c *cli.Context) error {
			lang, err := langFlag(c, rt)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.ResolveTags(c.Context, rt.env, ops.ResolveTagsInput{
				Codes: c.Args().Slice(),
				Lang:  lang,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func tagsSuggestCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Suggest tag codes for a partial label",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Usage: "Label language: en|fr"},
			&cli.StringFlag{Name: "selected", Usage: "Comma-separated codes to skip"},
			&cli.IntFlag{Name: "limit", Usage: "Max suggestions"},
		},
		Action: func(c *cli.Context) error {
			lang, err := langFlag(c, rt)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.SuggestTags(c.Context, rt.env, ops.SuggestTagsInput{
				Query:    strings.Join(c.Args().Slice(), " "),
				Lang:     lang,
				Selected: parseTags(c.String("selected")),
				Limit:    c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// Helper functions

// langFlag reads --lang, falling back to the configured default.
func langFlag(c *cli.Context, rt *runtime) (i18n.Lang, error) {
	raw := c.String("lang")
	if raw == "" {
		return i18n.ParseOr(rt.cfg.DefaultLanguage, i18n.FR), nil
	}
	lang, ok := i18n.Parse(raw)
	if !ok {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unsupported language %q (want en or fr)", raw))
	}
	return lang, nil
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func ptr[T any](v T) *T {
	return &v
}
