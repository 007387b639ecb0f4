package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hpungsan/tome/internal/store"
	"github.com/hpungsan/tome/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAccessors(t *testing.T) {
	rec := store.Record{
		"name":       "Fireball",
		"blank":      "  ",
		"hp":         float64(12),
		"frac":       1.5,
		"num":        json.Number("7"),
		"hidden":     int64(1),
		"flag":       true,
		"tags":       []any{"fire", "", 3, "damage"},
		"tags2":      []string{"a", " "},
		"created_at": "2024-05-01T10:00:00Z",
	}

	s, ok := rec.String("name")
	assert.True(t, ok)
	assert.Equal(t, "Fireball", s)

	assert.Nil(t, rec.OptString("blank"))
	assert.Nil(t, rec.OptString("missing"))
	assert.Equal(t, "Fireball", *rec.OptString("name"))

	n, ok := rec.Int("hp")
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)
	_, ok = rec.Int("frac")
	assert.False(t, ok)
	n, _ = rec.Int("num")
	assert.Equal(t, int64(7), n)

	b, ok := rec.Bool("hidden")
	assert.True(t, ok)
	assert.True(t, b)
	b, _ = rec.Bool("flag")
	assert.True(t, b)
	_, ok = rec.Bool("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"fire", "damage"}, rec.Strings("tags"))
	assert.Equal(t, []string{"a"}, rec.Strings("tags2"))
	assert.Nil(t, rec.Strings("missing"))

	ts, ok := rec.Time("created_at")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Unix(), ts)
}

func TestWithTimeout(t *testing.T) {
	fake := storetest.New()
	fake.SetDelay(200 * time.Millisecond)

	b := store.WithTimeout(fake, 20*time.Millisecond)
	_, err := b.ListEntities(context.Background(), "spell")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestWithTimeout_ZeroIsPassthrough(t *testing.T) {
	fake := storetest.New()
	assert.Same(t, fake, store.WithTimeout(fake, 0))
}
