package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/db"
)

// setupRuntime wires a runtime over a temporary database.
func setupRuntime(t *testing.T) *runtime {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	rt, err := newRuntime(database, config.DefaultConfig(), quiet)
	require.NoError(t, err)
	return rt
}

// runCLI runs one command and returns what it wrote to stdout.
func runCLI(t *testing.T, rt *runtime, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	app := newCLIApp(rt)
	app.Writer = io.Discard
	err := app.Run(append([]string{"tome"}, args...))
	return buf.String(), err
}

// mustRun runs a command that must succeed and decodes its JSON output.
func mustRun(t *testing.T, rt *runtime, args ...string) map[string]any {
	t.Helper()
	out, err := runCLI(t, rt, args...)
	require.NoError(t, err, "tome %s", strings.Join(args, " "))
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

func entryOf(t *testing.T, v map[string]any) map[string]any {
	t.Helper()
	e, ok := v["entry"].(map[string]any)
	require.True(t, ok, "no entry in %v", v)
	return e
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"single tag", "fire", []string{"fire"}},
		{"multiple tags", "fire,cold,magic", []string{"fire", "cold", "magic"}},
		{"tags with spaces", " fire , cold ", []string{"fire", "cold"}},
		{"empty tags filtered", "fire,,cold,", []string{"fire", "cold"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseTags(tt.input))
		})
	}
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"WARN", false, false},
		{"bogus", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := newLogger(tt.level, io.Discard)
			assert.Equal(t, tt.wantDebug, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, l.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestCLIHelpWithoutRuntime(t *testing.T) {
	_, err := runCLI(t, nil, "--help")
	assert.NoError(t, err)
}

func TestCLIAddShowList(t *testing.T) {
	rt := setupRuntime(t)

	created := entryOf(t, mustRun(t, rt, "add",
		"--type=spell", "--name=Fireball", "--description=Hot **stuff**",
		"--tags=fire, cold", "--spell-level=major"))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "spell", created["type"])
	assert.Equal(t, "major", created["spell_level"])

	shown := mustRun(t, rt, "show", "--lang=en", id)
	assert.Equal(t, "Fireball", entryOf(t, shown)["name"])
	assert.Equal(t, map[string]any{"fire": "Fire", "cold": "Cold"}, shown["labels"])

	shown = mustRun(t, rt, "show", id)
	assert.Equal(t, "Feu", shown["labels"].(map[string]any)["fire"], "default language is french")

	mustRun(t, rt, "add", "--type=trait", "--name=Brave")

	listed := mustRun(t, rt, "list", "--type=spell")
	items := listed["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Fireball", items[0].(map[string]any)["name"])

	listed = mustRun(t, rt, "list", "-q", "froid")
	assert.Len(t, listed["items"].([]any), 1, "search matches french tag labels")

	listed = mustRun(t, rt, "list")
	assert.Equal(t, float64(2), listed["pagination"].(map[string]any)["total"])
}

func TestCLIAddErrors(t *testing.T) {
	rt := setupRuntime(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown type", []string{"add", "--type=vehicle", "--name=Cart"}, "[UNKNOWN_TYPE]"},
		{"missing name", []string{"add", "--type=trait"}, "[INVALID_REQUEST]"},
		{"bad spell level", []string{"add", "--type=spell", "--name=Zap", "--spell-level=epic"}, "[INVALID_REQUEST]"},
		{"bad language", []string{"list", "--lang=de"}, "[INVALID_REQUEST]"},
		{"show without id", []string{"show"}, "[INVALID_REQUEST]"},
		{"show unknown id", []string{"show", "nope"}, "[NOT_FOUND]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, rt, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.code)
		})
	}
}

func TestCLIAddRequiresType(t *testing.T) {
	rt := setupRuntime(t)
	_, err := runCLI(t, rt, "add", "--name=Orphan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

func TestCLIUpdate(t *testing.T) {
	rt := setupRuntime(t)
	id := entryOf(t, mustRun(t, rt, "add", "--type=trait", "--name=Brave", "--requirement=Level 2"))["id"].(string)

	updated := entryOf(t, mustRun(t, rt, "update", "--name=Bold", id))
	assert.Equal(t, "Bold", updated["name"])
	assert.Equal(t, "Level 2", updated["requirement"], "unset flags leave fields unchanged")

	updated = entryOf(t, mustRun(t, rt, "update", "--requirement=", id))
	assert.Nil(t, updated["requirement"], "blank clears an optional field")

	_, err := runCLI(t, rt, "update", "--type=spell", "--name=Bold", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[TYPE_IMMUTABLE]")
}

func TestCLIMarkdownFromStdin(t *testing.T) {
	rt := setupRuntime(t)

	old := stdin
	stdin = strings.NewReader("# Lore\n\nAncient.\n")
	defer func() { stdin = old }()

	created := entryOf(t, mustRun(t, rt, "add", "--type=object", "--name=Relic", "--markdown=-"))
	assert.Equal(t, "# Lore\n\nAncient.", created["markdown_content"])
}

func TestCLIDuplicateDelete(t *testing.T) {
	rt := setupRuntime(t)
	id := entryOf(t, mustRun(t, rt, "add", "--type=trait", "--name=Brave", "--tags=fire"))["id"].(string)

	dup := entryOf(t, mustRun(t, rt, "duplicate", id))
	assert.Equal(t, "Brave (copy)", dup["name"])
	assert.NotEqual(t, id, dup["id"])
	assert.Equal(t, []any{"fire"}, dup["tags"])

	named := entryOf(t, mustRun(t, rt, "duplicate", "--name=Braver", id))
	assert.Equal(t, "Braver", named["name"])

	deleted := mustRun(t, rt, "delete", id)
	assert.Equal(t, true, deleted["deleted"])

	_, err := runCLI(t, rt, "show", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[NOT_FOUND]")

	listed := mustRun(t, rt, "list")
	assert.Len(t, listed["items"].([]any), 2)
}

func TestCLIExport(t *testing.T) {
	rt := setupRuntime(t)
	mustRun(t, rt, "add", "--type=spell", "--name=Arcane Bolt", "--description=Zap")
	mustRun(t, rt, "add", "--type=trait", "--name=Secret", "--hidden")

	inline := mustRun(t, rt, "export")
	assert.Equal(t, float64(1), inline["count"])
	assert.Contains(t, inline["markdown"], "Arcane Bolt")
	assert.NotContains(t, inline["markdown"], "Secret")

	all := mustRun(t, rt, "export", "--include-hidden")
	assert.Equal(t, float64(2), all["count"])

	path := filepath.Join(t.TempDir(), "tome.md")
	written := mustRun(t, rt, "export", "--path="+path)
	assert.Equal(t, path, written["path"])
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Arcane Bolt")

	_, err = runCLI(t, rt, "export", "--path="+filepath.Join(t.TempDir(), "tome.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[INVALID_REQUEST]")
}

func TestCLITags(t *testing.T) {
	rt := setupRuntime(t)

	created := mustRun(t, rt, "tags", "add", "--code=glimmer", "--en=Glimmer", "--fr=Lueur", "--category=light")
	tag := created["tag"].(map[string]any)
	id := tag["id"].(string)
	require.NotEmpty(t, id)

	_, err := runCLI(t, rt, "tags", "add", "--code=glimmer", "--en=Other", "--fr=Autre")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[CODE_ALREADY_EXISTS]")

	resolved := mustRun(t, rt, "tags", "resolve", "--lang=en", "glimmer", "fire", "unheard")
	assert.Equal(t, map[string]any{"glimmer": "Glimmer", "fire": "Fire", "unheard": "unheard"}, resolved["labels"])

	suggested := mustRun(t, rt, "tags", "suggest", "--lang=fr", "lueu")
	var codes []string
	for _, s := range suggested["suggestions"].([]any) {
		codes = append(codes, s.(map[string]any)["code"].(string))
	}
	assert.Contains(t, codes, "glimmer")

	updated := mustRun(t, rt, "tags", "update", "--en=Shimmer", id)
	assert.Equal(t, "Shimmer", updated["tag"].(map[string]any)["name_en"])
	assert.Equal(t, "Lueur", updated["tag"].(map[string]any)["name_fr"])

	listed := mustRun(t, rt, "tags", "list")
	assert.Len(t, listed["items"].([]any), 1)

	deleted := mustRun(t, rt, "tags", "delete", id)
	assert.Equal(t, true, deleted["deleted"])

	listed = mustRun(t, rt, "tags", "list")
	assert.Empty(t, listed["items"])
}
