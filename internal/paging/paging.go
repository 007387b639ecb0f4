// Package paging reveals an in-memory collection one page at a time.
package paging

// DefaultPageSize is used when New is given a non-positive size.
const DefaultPageSize = 12

// Trigger signals that the viewer has scrolled near the end of the
// revealed items.
type Trigger interface {
	OnNearEnd(fn func())
}

// Pager is a cooperative state machine over a resident collection.
// It is not safe for concurrent use; callers serialize access.
type Pager[T any] struct {
	size     int
	key      func(T) string
	items    []T
	visible  []T
	seen     map[string]bool
	page     int
	hasMore  bool
	inFlight bool
}

// New returns an empty pager revealing size items per page. key returns an
// item's identity for duplicate suppression.
func New[T any](size int, key func(T) string) *Pager[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	p := &Pager[T]{size: size, key: key}
	p.Reset(nil)
	return p
}

// Reset replaces the collection and shows its first page.
func (p *Pager[T]) Reset(items []T) {
	p.items = items
	p.page = 1
	p.visible = make([]T, 0, min(len(items), p.size))
	p.seen = make(map[string]bool, min(len(items), p.size))
	p.inFlight = false
	p.reveal(0, p.size)
	p.hasMore = len(items) > p.size
}

// LoadMore reveals the next page. It is a no-op while a load is in flight
// or when nothing remains, and reports whether it advanced.
func (p *Pager[T]) LoadMore() bool {
	if p.inFlight || !p.hasMore {
		return false
	}
	p.inFlight = true
	defer func() { p.inFlight = false }()

	start := p.page * p.size
	p.reveal(start, start+p.size)
	p.page++
	p.hasMore = p.page*p.size < len(p.items)
	return true
}

func (p *Pager[T]) reveal(from, to int) {
	to = min(to, len(p.items))
	for i := from; i < to; i++ {
		it := p.items[i]
		k := p.key(it)
		if p.seen[k] {
			continue
		}
		p.seen[k] = true
		p.visible = append(p.visible, it)
	}
}

// Attach subscribes the pager to t.
func (p *Pager[T]) Attach(t Trigger) {
	t.OnNearEnd(func() { p.LoadMore() })
}

// Visible returns the revealed items. The slice must not be modified.
func (p *Pager[T]) Visible() []T { return p.visible }

// HasMore reports whether items remain beyond the revealed end.
func (p *Pager[T]) HasMore() bool { return p.hasMore }

// Page returns the number of pages revealed.
func (p *Pager[T]) Page() int { return p.page }

// Loading reports whether a LoadMore is in progress.
func (p *Pager[T]) Loading() bool { return p.inFlight }

// Size returns the page size.
func (p *Pager[T]) Size() int { return p.size }

// Total returns the length of the underlying collection.
func (p *Pager[T]) Total() int { return len(p.items) }

// Sentinel is a Trigger fired explicitly, by tests or by the web layer
// when the browser reports the end marker is in view.
type Sentinel struct {
	callbacks []func()
}

// OnNearEnd registers fn.
func (s *Sentinel) OnNearEnd(fn func()) {
	s.callbacks = append(s.callbacks, fn)
}

// Fire invokes every registered callback.
func (s *Sentinel) Fire() {
	for _, fn := range s.callbacks {
		fn()
	}
}
