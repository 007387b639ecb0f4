package paging

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id string
}

func itemKey(it item) string { return it.id }

func makeItems(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{id: strconv.Itoa(i)}
	}
	return out
}

func TestPager_TwentyFiveItems(t *testing.T) {
	p := New(12, itemKey)
	p.Reset(makeItems(25))

	assert.Len(t, p.Visible(), 12)
	assert.True(t, p.HasMore())
	assert.Equal(t, 1, p.Page())

	require.True(t, p.LoadMore())
	assert.Len(t, p.Visible(), 24)
	assert.True(t, p.HasMore())

	require.True(t, p.LoadMore())
	assert.Len(t, p.Visible(), 25)
	assert.False(t, p.HasMore())

	assert.False(t, p.LoadMore())
	assert.Len(t, p.Visible(), 25)
	assert.Equal(t, 3, p.Page())
}

func TestPager_ExactMultiple(t *testing.T) {
	p := New(12, itemKey)
	p.Reset(makeItems(24))

	require.True(t, p.LoadMore())
	assert.Len(t, p.Visible(), 24)
	assert.False(t, p.HasMore())
}

func TestPager_Empty(t *testing.T) {
	p := New(12, itemKey)
	assert.Empty(t, p.Visible())
	assert.False(t, p.HasMore())
	assert.False(t, p.LoadMore())

	p.Reset([]item{})
	assert.Empty(t, p.Visible())
	assert.Equal(t, 1, p.Page())
}

func TestPager_ResetStartsOver(t *testing.T) {
	p := New(5, itemKey)
	p.Reset(makeItems(20))
	p.LoadMore()
	p.LoadMore()
	require.Len(t, p.Visible(), 15)

	p.Reset(makeItems(7))
	assert.Len(t, p.Visible(), 5)
	assert.True(t, p.HasMore())
	assert.Equal(t, 1, p.Page())
}

func TestPager_DuplicatesSuppressed(t *testing.T) {
	items := []item{{"a"}, {"b"}, {"a"}, {"c"}}
	p := New(2, itemKey)
	p.Reset(items)

	p.LoadMore()
	var got []string
	for _, it := range p.Visible() {
		got = append(got, it.id)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.False(t, p.HasMore())
}

func TestPager_ReentrantLoadIsNoop(t *testing.T) {
	var p *Pager[item]
	nested := 0
	p = New(2, func(it item) string {
		if p != nil && p.Loading() {
			if p.LoadMore() {
				nested++
			}
		}
		return it.id
	})
	p.Reset(makeItems(10))

	require.True(t, p.LoadMore())
	assert.Zero(t, nested)
	assert.Len(t, p.Visible(), 4)
	assert.False(t, p.Loading())
}

func TestPager_DefaultSize(t *testing.T) {
	p := New(0, itemKey)
	assert.Equal(t, DefaultPageSize, p.Size())
}

func TestSentinel_DrivesPager(t *testing.T) {
	p := New(12, itemKey)
	p.Reset(makeItems(25))

	var s Sentinel
	p.Attach(&s)

	s.Fire()
	assert.Len(t, p.Visible(), 24)
	s.Fire()
	s.Fire()
	assert.Len(t, p.Visible(), 25)
	assert.Equal(t, 25, p.Total())
}
