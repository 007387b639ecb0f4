// Package catalog aggregates entries of every configured type into one
// sorted collection.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/metrics"
	"github.com/hpungsan/tome/internal/store"
)

// Loader fetches and merges entries from a Backend.
type Loader struct {
	backend store.Backend
	types   []entry.Type
	fields  entry.FieldSet
	sortKey string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// LoadResult is one aggregation. Failures maps each type whose listing
// failed to its error; those types contribute no entries.
type LoadResult struct {
	Entries  []entry.Entry
	Failures map[entry.Type]error
}

// FailedTypes returns the failed types in configuration order.
func (r *LoadResult) FailedTypes(order []entry.Type) []entry.Type {
	var out []entry.Type
	for _, t := range order {
		if _, ok := r.Failures[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// NewLoader builds a loader from configuration.
func NewLoader(backend store.Backend, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	types := make([]entry.Type, 0, len(cfg.EntryTypes))
	for _, t := range cfg.EntryTypes {
		types = append(types, entry.Type(t))
	}
	return &Loader{
		backend: backend,
		types:   types,
		fields:  entry.NewFieldSet(cfg.OptionalFields),
		sortKey: cfg.SortKey,
		logger:  logger,
		metrics: m,
	}
}

// Types returns the configured entry types.
func (l *Loader) Types() []entry.Type {
	return slices.Clone(l.types)
}

// Fields returns the enabled optional fields.
func (l *Loader) Fields() entry.FieldSet {
	return l.fields
}

// SortKey returns the configured sort key.
func (l *Loader) SortKey() string {
	return l.sortKey
}

// HasType reports whether t is configured.
func (l *Loader) HasType(t entry.Type) bool {
	return slices.Contains(l.types, t)
}

// LoadAll lists every configured type concurrently and merges the results.
// A failing type is logged and skipped; LoadAll itself never fails.
func (l *Loader) LoadAll(ctx context.Context) *LoadResult {
	start := time.Now()
	perType := make([][]entry.Entry, len(l.types))

	var (
		mu       sync.Mutex
		failures = make(map[entry.Type]error)
		g        errgroup.Group
	)
	for i, typ := range l.types {
		g.Go(func() error {
			records, err := l.backend.ListEntities(ctx, string(typ))
			if err != nil {
				l.logger.Warn("entry listing failed",
					slog.String("type", string(typ)),
					slog.String("error", err.Error()))
				l.metrics.ObserveLoadFailure(string(typ))
				mu.Lock()
				failures[typ] = err
				mu.Unlock()
				return nil
			}
			perType[i] = l.normalize(typ, records)
			return nil
		})
	}
	_ = g.Wait()

	var all []entry.Entry
	for _, entries := range perType {
		all = append(all, entries...)
	}
	Sort(all, l.sortKey)

	l.metrics.ObserveLoad(time.Since(start))
	return &LoadResult{Entries: all, Failures: failures}
}

func (l *Loader) normalize(typ entry.Type, records []store.Record) []entry.Entry {
	out := make([]entry.Entry, 0, len(records))
	for _, rec := range records {
		e, err := entry.FromRecord(typ, rec, l.fields)
		if err != nil {
			l.logger.Warn("skipping malformed record",
				slog.String("type", string(typ)),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, e)
	}
	return out
}

// Sort orders entries in place by key: config.SortByName (case-insensitive,
// ascending, ties by id) or config.SortByRecent (newest first, ties by name).
func Sort(entries []entry.Entry, key string) {
	if key == config.SortByRecent {
		c := newCollator()
		slices.SortStableFunc(entries, func(a, b entry.Entry) int {
			if a.CreatedAt != b.CreatedAt {
				if a.CreatedAt > b.CreatedAt {
					return -1
				}
				return 1
			}
			return c.CompareString(a.Name, b.Name)
		})
		return
	}

	c := newCollator()
	slices.SortStableFunc(entries, func(a, b entry.Entry) int {
		if n := c.CompareString(a.Name, b.Name); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// newCollator returns a case-insensitive collator. Collators are not safe
// for concurrent use, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}
