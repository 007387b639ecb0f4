// Package storetest provides an in-memory store.Backend for tests.
package storetest

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/store"
	"github.com/hpungsan/tome/internal/tags"
)

// Fake is an in-memory Backend with per-operation fault injection.
//
// Operation keys for Fail and Calls are the Backend method names. List
// failures can also target one type: "ListEntities:spell".
type Fake struct {
	mu      sync.Mutex
	seq     int
	now     int64
	entries map[string]fakeEntry
	defs    map[string]tags.Definition
	fail    map[string]error
	calls   map[string]int
	delay   time.Duration
}

type fakeEntry struct {
	typ    string
	fields store.Record
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		now:     1700000000,
		entries: make(map[string]fakeEntry),
		defs:    make(map[string]tags.Definition),
		fail:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

var _ store.Backend = (*Fake)(nil)

// Fail makes op return err until cleared with Fail(op, nil).
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

// SetDelay makes every call wait d or until its context ends.
func (f *Fake) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Seed inserts an entry directly, bypassing fault injection.
// fields must include "id" and "name".
func (f *Fake) Seed(typ string, fields store.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := maps.Clone(fields)
	rec["type"] = typ
	id, _ := rec.String("id")
	f.entries[id] = fakeEntry{typ: typ, fields: rec}
}

// SeedTag inserts a tag definition directly.
func (f *Fake) SeedTag(def tags.Definition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if def.ID == "" {
		f.seq++
		def.ID = fmt.Sprintf("t%d", f.seq)
	}
	f.defs[def.ID] = def
}

func (f *Fake) enter(ctx context.Context, op string, extra ...string) error {
	f.mu.Lock()
	f.calls[op]++
	err := f.fail[op]
	for _, e := range extra {
		if err == nil {
			err = f.fail[op+":"+e]
		}
	}
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *Fake) ListEntities(ctx context.Context, typ string) ([]store.Record, error) {
	if err := f.enter(ctx, "ListEntities", typ); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Record
	for _, e := range f.entries {
		if e.typ == typ {
			out = append(out, maps.Clone(e.fields))
		}
	}
	slices.SortFunc(out, func(a, b store.Record) int {
		an, _ := a.String("name")
		bn, _ := b.String("name")
		return strings.Compare(an, bn)
	})
	return out, nil
}

func (f *Fake) CreateEntity(ctx context.Context, typ string, fields store.Record) (store.Record, error) {
	if err := f.enter(ctx, "CreateEntity", typ); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.now++
	rec := maps.Clone(fields)
	rec["id"] = fmt.Sprintf("e%d", f.seq)
	rec["type"] = typ
	rec["created_at"] = f.now
	rec["updated_at"] = f.now
	f.entries[rec["id"].(string)] = fakeEntry{typ: typ, fields: rec}
	return maps.Clone(rec), nil
}

func (f *Fake) UpdateEntity(ctx context.Context, id, typ string, fields store.Record) (store.Record, error) {
	if err := f.enter(ctx, "UpdateEntity", typ); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.typ != typ {
		return nil, errors.NewNotFound("entry", id)
	}
	f.now++
	maps.Copy(e.fields, fields)
	e.fields["updated_at"] = f.now
	return maps.Clone(e.fields), nil
}

func (f *Fake) DeleteEntity(ctx context.Context, id, typ string) error {
	if err := f.enter(ctx, "DeleteEntity", typ); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.typ != typ {
		return errors.NewNotFound("entry", id)
	}
	delete(f.entries, id)
	return nil
}

func (f *Fake) ListTagDefinitions(ctx context.Context) ([]tags.Definition, error) {
	if err := f.enter(ctx, "ListTagDefinitions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Collect(maps.Values(f.defs))
	slices.SortFunc(out, func(a, b tags.Definition) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out, nil
}

func (f *Fake) GetTagDefinitionByCode(ctx context.Context, code string) (*tags.Definition, error) {
	if err := f.enter(ctx, "GetTagDefinitionByCode"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.defs {
		if d.Code == code {
			return &d, nil
		}
	}
	return nil, nil
}

func (f *Fake) CreateTagDefinition(ctx context.Context, def tags.Definition) (tags.Definition, error) {
	if err := f.enter(ctx, "CreateTagDefinition"); err != nil {
		return tags.Definition{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.defs {
		if d.Code == def.Code {
			return tags.Definition{}, errors.NewCodeAlreadyExists(def.Code)
		}
	}
	f.seq++
	f.now++
	def.ID = fmt.Sprintf("t%d", f.seq)
	def.CreatedAt, def.UpdatedAt = f.now, f.now
	f.defs[def.ID] = def
	return def, nil
}

func (f *Fake) UpdateTagDefinition(ctx context.Context, id string, def tags.Definition) (tags.Definition, error) {
	if err := f.enter(ctx, "UpdateTagDefinition"); err != nil {
		return tags.Definition{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.defs[id]
	if !ok {
		return tags.Definition{}, errors.NewNotFound("tag definition", id)
	}
	for otherID, d := range f.defs {
		if otherID != id && d.Code == def.Code {
			return tags.Definition{}, errors.NewCodeAlreadyExists(def.Code)
		}
	}
	f.now++
	def.ID = id
	def.CreatedAt = prev.CreatedAt
	def.UpdatedAt = f.now
	f.defs[id] = def
	return def, nil
}

func (f *Fake) DeleteTagDefinition(ctx context.Context, id string) error {
	if err := f.enter(ctx, "DeleteTagDefinition"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.defs[id]; !ok {
		return errors.NewNotFound("tag definition", id)
	}
	delete(f.defs, id)
	return nil
}
