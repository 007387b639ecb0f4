package ops

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/entry"
	tomeerrors "github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/store"
	"github.com/hpungsan/tome/internal/store/storetest"
)

func createTrait(t *testing.T, env *Env) entry.Entry {
	t.Helper()
	out, err := CreateEntry(context.Background(), env, CreateEntryInput{
		Type: "trait",
		EntryInput: EntryInput{
			Name:        stringPtr("Brave"),
			Description: stringPtr("Fearless."),
			Tags:        []string{"fire"},
			Requirement: stringPtr("Level 2"),
		},
	})
	require.NoError(t, err)
	return out.Entry
}

func TestUpdateEntry_PartialMerge(t *testing.T) {
	env := newTestEnv(t)
	created := createTrait(t, env)

	out, err := UpdateEntry(context.Background(), env, UpdateEntryInput{
		ID:         created.ID,
		EntryInput: EntryInput{Name: stringPtr("Braver")},
	})
	require.NoError(t, err)

	e := out.Entry
	assert.Equal(t, created.ID, e.ID)
	assert.Equal(t, "Braver", e.Name)
	assert.Equal(t, "Fearless.", e.DescriptionText())
	assert.Equal(t, []string{"fire"}, e.Tags)
	assert.Equal(t, entry.TraitDetails{Requirement: stringPtr("Level 2")}, e.Details)
}

func TestUpdateEntry_ClearsFields(t *testing.T) {
	env := newTestEnv(t)
	created := createTrait(t, env)

	out, err := UpdateEntry(context.Background(), env, UpdateEntryInput{
		ID: created.ID,
		EntryInput: EntryInput{
			Description: stringPtr(""),
			Tags:        []string{},
			Requirement: stringPtr(" "),
		},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Entry.Description)
	assert.Empty(t, out.Entry.Tags)
	assert.Equal(t, entry.TraitDetails{}, out.Entry.Details)
}

func TestUpdateEntry_TypeImmutable(t *testing.T) {
	env := newTestEnv(t)
	created := createTrait(t, env)

	_, err := UpdateEntry(context.Background(), env, UpdateEntryInput{
		ID:         created.ID,
		Type:       "spell",
		EntryInput: EntryInput{Name: stringPtr("Now a spell")},
	})
	require.True(t, tomeerrors.Is(err, tomeerrors.ErrTypeImmutable), "got %v", err)

	found, err := FindEntry(context.Background(), env, FindEntryInput{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, "Brave", found.Entry.Name)
	assert.Equal(t, entry.TypeTrait, found.Entry.Type)
}

func TestUpdateEntry_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := UpdateEntry(context.Background(), env, UpdateEntryInput{ID: "missing", EntryInput: EntryInput{Name: stringPtr("x")}})
	assert.True(t, tomeerrors.Is(err, tomeerrors.ErrNotFound), "got %v", err)
}

func TestUpdateEntry_StoreFailureLeavesEntry(t *testing.T) {
	fake := storetest.New()
	fake.Seed("trait", store.Record{"id": "t1", "name": "Brave"})
	fake.Fail("UpdateEntity", errors.New("timeout"))
	env := newEnv(fake, config.DefaultConfig())

	_, err := UpdateEntry(context.Background(), env, UpdateEntryInput{ID: "t1", EntryInput: EntryInput{Name: stringPtr("Braver")}})
	require.Error(t, err)

	found, err := FindEntry(context.Background(), env, FindEntryInput{ID: "t1", Type: "trait"})
	require.NoError(t, err)
	assert.Equal(t, "Brave", found.Entry.Name)
}

func TestUpdateEntry_TypedLookupSurvivesOtherListingFailure(t *testing.T) {
	fake := storetest.New()
	fake.Seed("trait", store.Record{"id": "t1", "name": "Brave"})
	fake.Seed("spell", store.Record{"id": "s1", "name": "Fireball"})
	fake.Fail("ListEntities:trait", errors.New("trait table down"))
	env := newEnv(fake, config.DefaultConfig())

	out, err := UpdateEntry(context.Background(), env, UpdateEntryInput{
		ID:         "s1",
		Type:       "spell",
		EntryInput: EntryInput{Name: stringPtr("Greater Fireball")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Greater Fireball", out.Entry.Name)
	assert.Equal(t, entry.TypeSpell, out.Entry.Type)

	_, err = UpdateEntry(context.Background(), env, UpdateEntryInput{
		ID:         "s1",
		EntryInput: EntryInput{Name: stringPtr("Fireball")},
	})
	assert.True(t, tomeerrors.Is(err, tomeerrors.ErrStoreUnavailable), "untyped lookup walks every listing, got %v", err)
}

func TestFindEntry(t *testing.T) {
	env := newTestEnv(t)
	created := createTrait(t, env)

	out, err := FindEntry(context.Background(), env, FindEntryInput{ID: created.ID, Type: "trait"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, out.Entry.ID)

	_, err = FindEntry(context.Background(), env, FindEntryInput{ID: created.ID, Type: "spell"})
	assert.True(t, tomeerrors.Is(err, tomeerrors.ErrNotFound))

	_, err = FindEntry(context.Background(), env, FindEntryInput{ID: " "})
	assert.True(t, tomeerrors.Is(err, tomeerrors.ErrInvalidRequest))
}
