package browse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tome/internal/catalog"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/entry"
	tomeerrors "github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/store"
	"github.com/hpungsan/tome/internal/store/storetest"
	"github.com/hpungsan/tome/internal/tags"
)

const testPassword = "open sesame"

func newTestView(t *testing.T, fake *storetest.Fake) *View {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultConfig()
	table := tags.NewTable(map[string]tags.Translation{"fire": {EN: "Fire", FR: "Feu"}})
	env := &ops.Env{
		Backend:  fake,
		Loader:   catalog.NewLoader(fake, cfg, quiet, nil),
		Resolver: tags.NewResolver(tags.NewCache(), table, tags.WithFetcher(fake), tags.WithLogger(quiet)),
		Logger:   quiet,
	}
	gate, err := NewGate(testPassword)
	require.NoError(t, err)

	v := NewView(env, gate, 12, i18n.FR)
	v.Load(context.Background())
	return v
}

func visibleIDs(s Snapshot) []string {
	ids := make([]string, 0, len(s.Visible))
	for _, e := range s.Visible {
		ids = append(ids, e.ID)
	}
	return ids
}

func seedTraits(f *storetest.Fake, n int) {
	for i := range n {
		f.Seed("trait", store.Record{"id": fmt.Sprintf("t%02d", i), "name": fmt.Sprintf("Trait %02d", i)})
	}
}

func TestView_Paging(t *testing.T) {
	f := storetest.New()
	seedTraits(f, 25)
	v := newTestView(t, f)

	s := v.Snapshot()
	assert.Len(t, s.Visible, 12)
	assert.True(t, s.HasMore)
	assert.Equal(t, 25, s.Matched)

	v.NearEnd()
	s = v.Snapshot()
	assert.Len(t, s.Visible, 24)
	assert.True(t, s.HasMore)

	v.NearEnd()
	v.NearEnd()
	s = v.Snapshot()
	assert.Len(t, s.Visible, 25)
	assert.False(t, s.HasMore)
}

func TestView_CriteriaChangeResetsPager(t *testing.T) {
	f := storetest.New()
	seedTraits(f, 25)
	v := newTestView(t, f)
	v.NearEnd()
	require.Len(t, v.Snapshot().Visible, 24)

	v.SetSearch("trait 1")
	s := v.Snapshot()
	assert.Equal(t, 10, s.Matched)
	assert.Len(t, s.Visible, 10)
	assert.False(t, s.HasMore)

	v.SetSearch("")
	assert.Len(t, v.Snapshot().Visible, 12)
}

func TestView_SearchByResolvedLabel(t *testing.T) {
	f := storetest.New()
	f.Seed("spell", store.Record{"id": "s1", "name": "Fireball", "tags": []string{"fire", "damage"}})
	f.Seed("spell", store.Record{"id": "s2", "name": "Frost Ray"})
	v := newTestView(t, f)

	v.SetSearch("feu")
	s := v.Snapshot()
	assert.Equal(t, []string{"s1"}, visibleIDs(s))
	assert.Equal(t, "Feu", s.Labels["fire"])
	assert.Equal(t, "damage", s.Labels["damage"])

	v.SetLanguage(i18n.EN)
	assert.Empty(t, v.Snapshot().Visible)
}

func TestView_TypeFilter(t *testing.T) {
	f := storetest.New()
	f.Seed("spell", store.Record{"id": "s1", "name": "Fireball"})
	f.Seed("trait", store.Record{"id": "t1", "name": "Brave"})
	v := newTestView(t, f)

	require.NoError(t, v.SetType("spell"))
	assert.Equal(t, []string{"s1"}, visibleIDs(v.Snapshot()))
	assert.Equal(t, map[entry.Type]int{entry.TypeSpell: 1, entry.TypeTrait: 1}, v.Snapshot().Counts)

	err := v.SetType("vehicle")
	assert.True(t, tomeerrors.Is(err, tomeerrors.ErrUnknownType))
	assert.Equal(t, "spell", v.Snapshot().Criteria.Type)
}

func TestView_AdminAndHidden(t *testing.T) {
	f := storetest.New()
	f.Seed("trait", store.Record{"id": "t1", "name": "Brave"})
	f.Seed("trait", store.Record{"id": "t2", "name": "Cursed", "is_hidden": true})
	v := newTestView(t, f)

	assert.Equal(t, []string{"t1"}, visibleIDs(v.Snapshot()))
	assert.True(t, tomeerrors.Is(v.SetShowHidden(true), tomeerrors.ErrUnauthorized))
	assert.True(t, tomeerrors.Is(v.Login("wrong"), tomeerrors.ErrUnauthorized))
	_, ok := v.Entry("t2")
	assert.False(t, ok)

	require.NoError(t, v.Login(testPassword))
	assert.Equal(t, []string{"t1"}, visibleIDs(v.Snapshot()), "admin still needs the toggle")
	_, ok = v.Entry("t2")
	assert.True(t, ok)

	require.NoError(t, v.SetShowHidden(true))
	assert.Equal(t, []string{"t1", "t2"}, visibleIDs(v.Snapshot()))

	v.Logout()
	s := v.Snapshot()
	assert.False(t, s.Admin)
	assert.False(t, s.ShowHidden)
	assert.Equal(t, []string{"t1"}, visibleIDs(s))
}

func TestView_MutationsRequireAdmin(t *testing.T) {
	f := storetest.New()
	f.Seed("trait", store.Record{"id": "t1", "name": "Brave"})
	v := newTestView(t, f)
	ctx := context.Background()

	name := "New"
	_, err := v.Create(ctx, ops.CreateEntryInput{Type: "trait", EntryInput: ops.EntryInput{Name: &name}})
	assert.True(t, tomeerrors.Is(err, tomeerrors.ErrUnauthorized))
	assert.True(t, tomeerrors.Is(v.Delete(ctx, "t1"), tomeerrors.ErrUnauthorized))
	_, err = v.Duplicate(ctx, "t1")
	assert.True(t, tomeerrors.Is(err, tomeerrors.ErrUnauthorized))
	assert.Zero(t, f.Calls("CreateEntity"))
	assert.Zero(t, f.Calls("DeleteEntity"))
}

func TestView_CreateUpdateDuplicate(t *testing.T) {
	f := storetest.New()
	f.Seed("trait", store.Record{"id": "t1", "name": "Brave"})
	f.Seed("trait", store.Record{"id": "t2", "name": "Zealous"})
	v := newTestView(t, f)
	ctx := context.Background()
	require.NoError(t, v.Login(testPassword))

	name := "Mighty"
	created, err := v.Create(ctx, ops.CreateEntryInput{Type: "trait", EntryInput: ops.EntryInput{Name: &name}})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", created.ID, "t2"}, visibleIDs(v.Snapshot()))

	rename := "Agile"
	_, err = v.Update(ctx, ops.UpdateEntryInput{ID: created.ID, EntryInput: ops.EntryInput{Name: &rename}})
	require.NoError(t, err)
	assert.Equal(t, []string{created.ID, "t1", "t2"}, visibleIDs(v.Snapshot()))

	dup, err := v.Duplicate(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Brave (copy)", dup.Name)
	assert.Equal(t, 4, v.Snapshot().Total)
}

func TestView_LoadPicksUpOtherSessionsMutations(t *testing.T) {
	f := storetest.New()
	f.Seed("trait", store.Record{"id": "t1", "name": "Brave"})
	admin := newTestView(t, f)
	reader := NewView(admin.env, admin.gate, 12, i18n.FR)
	ctx := context.Background()
	reader.Load(ctx)
	require.Equal(t, []string{"t1"}, visibleIDs(reader.Snapshot()))

	require.NoError(t, admin.Login(testPassword))
	code, en, fr := "blaze", "Blaze", "Brasier"
	tag, err := ops.CreateTag(ctx, admin.env, ops.TagInput{Code: &code, NameEN: &en, NameFR: &fr})
	require.NoError(t, err)
	name := "Brand New Trait"
	created, err := admin.Create(ctx, ops.CreateEntryInput{Type: "trait", EntryInput: ops.EntryInput{Name: &name, Tags: []string{"blaze"}}})
	require.NoError(t, err)

	reader.Load(ctx)
	snap := reader.Snapshot()
	assert.Contains(t, visibleIDs(snap), created.ID)
	assert.Equal(t, "Brasier", snap.Labels["blaze"])

	renamed := "Incendie"
	_, err = ops.UpdateTag(ctx, admin.env, ops.UpdateTagInput{ID: tag.Tag.ID, TagInput: ops.TagInput{NameFR: &renamed}})
	require.NoError(t, err)

	reader.Load(ctx)
	assert.Equal(t, "Incendie", reader.Snapshot().Labels["blaze"])

	calls := f.Calls("ListEntities")
	reader.Load(ctx)
	assert.Equal(t, calls, f.Calls("ListEntities"), "no reload without new mutations")
}

func TestView_FailedDeleteLeavesStateUnchanged(t *testing.T) {
	f := storetest.New()
	seedTraits(f, 25)
	v := newTestView(t, f)
	ctx := context.Background()
	require.NoError(t, v.Login(testPassword))
	v.NearEnd()
	before := v.Snapshot()

	f.Fail("DeleteEntity", errors.New("network unreachable"))
	err := v.Delete(ctx, "t03")
	require.Error(t, err)
	assert.True(t, tomeerrors.Is(err, tomeerrors.ErrStoreUnavailable))

	after := v.Snapshot()
	assert.Equal(t, before.Visible, after.Visible)
	assert.Equal(t, before.HasMore, after.HasMore)
	assert.Equal(t, before.Total, after.Total)

	f.Fail("DeleteEntity", nil)
	require.NoError(t, v.Delete(ctx, "t03"))
	after = v.Snapshot()
	assert.Equal(t, 24, after.Total)
	assert.NotContains(t, visibleIDs(after), "t03")
}

func TestView_PartialLoadFailure(t *testing.T) {
	f := storetest.New()
	f.Seed("trait", store.Record{"id": "t1", "name": "Brave"})
	f.Seed("spell", store.Record{"id": "s1", "name": "Fireball"})
	f.Fail("ListEntities:spell", errors.New("boom"))
	v := newTestView(t, f)

	s := v.Snapshot()
	assert.Equal(t, []string{"t1"}, visibleIDs(s))
	assert.Equal(t, []entry.Type{entry.TypeSpell}, s.FailedTypes)

	f.Fail("ListEntities:spell", nil)
	v.Refresh(context.Background())
	s = v.Snapshot()
	assert.Empty(t, s.FailedTypes)
	assert.Len(t, s.Visible, 2)
}

func TestGate(t *testing.T) {
	g, err := NewGate("")
	require.NoError(t, err)
	assert.False(t, g.Enabled())
	assert.Error(t, g.Check(""))

	g, err = NewGate("secret")
	require.NoError(t, err)
	assert.True(t, g.Enabled())
	assert.NoError(t, g.Check("secret"))
	assert.Error(t, g.Check("Secret"))
	assert.Error(t, g.Check(""))
}
