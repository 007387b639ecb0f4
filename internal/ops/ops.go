package ops

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/hpungsan/tome/internal/catalog"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/filter"
	"github.com/hpungsan/tome/internal/metrics"
	"github.com/hpungsan/tome/internal/store"
	"github.com/hpungsan/tome/internal/tags"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	DefaultTagLimit  = 100
	MaxTagLimit      = 500
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Env carries the collaborators every operation needs.
type Env struct {
	Backend  store.Backend
	Loader   *catalog.Loader
	Resolver *tags.Resolver
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	gen atomic.Uint64
}

// Generation counts successful mutations of entries and tag definitions.
// Holders of a loaded copy compare it to know when to reload.
func (env *Env) Generation() uint64 {
	return env.gen.Load()
}

func (env *Env) engine() *filter.Engine {
	return filter.NewEngine(env.Resolver, env.Loader.Fields())
}

// Log returns the configured logger or the default one.
func (env *Env) Log() *slog.Logger {
	if env.Logger == nil {
		return slog.Default()
	}
	return env.Logger
}

// observe records a mutation outcome and passes err through.
func (env *Env) observe(op string, err error) error {
	env.Metrics.ObserveMutation(op, err)
	if err != nil {
		env.Log().Warn("mutation failed", slog.String("op", op), slog.String("error", err.Error()))
		return err
	}
	env.gen.Add(1)
	return nil
}

// storeErr keeps structured errors and marks anything else as a store failure.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewStoreUnavailable(op, err)
}

// paginate clamps limit and offset and slices items.
func paginate[T any](items []T, limit, offset, def, maxLimit int) ([]T, Pagination) {
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = max(offset, 0)

	total := len(items)
	start := min(offset, total)
	end := min(start+limit, total)
	page := items[start:end]

	return page, Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
		Total:   total,
	}
}

// cleanOptionalString trims s and maps blank to nil.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// cleanTags trims codes, drops blanks and removes duplicates, keeping order.
func cleanTags(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
