package ops

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tome/internal/catalog"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/store"
	"github.com/hpungsan/tome/internal/tags"
)

func stringPtr(s string) *string {
	return &s
}

func intPtr(n int) *int {
	return &n
}

func boolPtr(b bool) *bool {
	return &b
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEnv(backend store.Backend, cfg *config.Config) *Env {
	table := tags.NewTable(map[string]tags.Translation{
		"fire": {EN: "Fire", FR: "Feu"},
		"cold": {EN: "Cold", FR: "Froid"},
	})
	return &Env{
		Backend:  backend,
		Loader:   catalog.NewLoader(backend, cfg, quiet, nil),
		Resolver: tags.NewResolver(tags.NewCache(), table, tags.WithFetcher(backend), tags.WithLogger(quiet)),
		Logger:   quiet,
	}
}

// newTestEnv returns an Env over a fresh SQLite database.
func newTestEnv(t *testing.T) *Env {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return newEnv(db.NewStore(database), config.DefaultConfig())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name          string
		limit, offset int
		want          []int
		wantPage      Pagination
	}{
		{"defaults", 0, 0, []int{1, 2, 3, 4, 5}, Pagination{Limit: 20, Offset: 0, HasMore: false, Total: 5}},
		{"first page", 2, 0, []int{1, 2}, Pagination{Limit: 2, Offset: 0, HasMore: true, Total: 5}},
		{"last page", 2, 4, []int{5}, Pagination{Limit: 2, Offset: 4, HasMore: false, Total: 5}},
		{"past end", 2, 10, []int{}, Pagination{Limit: 2, Offset: 10, HasMore: false, Total: 5}},
		{"negative offset", 3, -1, []int{1, 2, 3}, Pagination{Limit: 3, Offset: 0, HasMore: true, Total: 5}},
		{"limit clamped", 1000, 0, []int{1, 2, 3, 4, 5}, Pagination{Limit: MaxListLimit, Offset: 0, HasMore: false, Total: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, page := paginate(items, tt.limit, tt.offset, DefaultListLimit, MaxListLimit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPage, page)
		})
	}
}

func TestCleanTags(t *testing.T) {
	assert.Equal(t, []string{"fire", "cold"}, cleanTags([]string{" fire", "", "cold", "fire ", "  "}))
	assert.Equal(t, []string{}, cleanTags(nil))
}

func TestEnvGeneration_CountsSuccessfulMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	assert.Equal(t, uint64(0), env.Generation())

	created := createTrait(t, env)
	assert.Equal(t, uint64(1), env.Generation())

	_, err := UpdateEntry(ctx, env, UpdateEntryInput{ID: "missing", EntryInput: EntryInput{Name: stringPtr("x")}})
	require.Error(t, err)
	assert.Equal(t, uint64(1), env.Generation(), "failed mutations leave the generation alone")

	_, err = CreateTag(ctx, env, TagInput{Code: stringPtr("blaze"), NameEN: stringPtr("Blaze"), NameFR: stringPtr("Brasier")})
	require.NoError(t, err)
	_, err = DuplicateEntry(ctx, env, DuplicateEntryInput{ID: created.ID})
	require.NoError(t, err)
	_, err = DeleteEntry(ctx, env, DeleteEntryInput{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), env.Generation())
}
