// Package catalog caches the entity collections lists and search work on.
// Collections are loaded wholesale on first use and dropped when a change
// notification names their table.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/consultation"
	"github.com/dossiers/dossiers/internal/domain/observation"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/domain/todo"
	"github.com/dossiers/dossiers/internal/domain/worksession"
	"github.com/dossiers/dossiers/internal/platform/telemetry"
	"github.com/dossiers/dossiers/internal/search"
)

// Loaders fetch a whole collection from the store.
type Loaders struct {
	Patients      func(ctx context.Context) ([]*patient.Patient, error)
	Observations  func(ctx context.Context) ([]*observation.Observation, error)
	Consultations func(ctx context.Context) ([]*consultation.Consultation, error)
	Todos         func(ctx context.Context) ([]*todo.Todo, error)
	WorkSessions  func(ctx context.Context) ([]*worksession.WorkSession, error)
}

// LoadTimeout bounds one collection fetch. Fetches run detached from the
// requesting context, since other requests may be waiting on them.
const LoadTimeout = 30 * time.Second

type Cache struct {
	loaders Loaders
	timeout time.Duration
	flight  singleflight.Group
	metrics *telemetry.Provider
	logger  zerolog.Logger

	mu   sync.Mutex
	data map[string]any
	gen  map[string]uint64
}

func New(loaders Loaders, logger zerolog.Logger) *Cache {
	return &Cache{
		loaders: loaders,
		timeout: LoadTimeout,
		logger:  logger.With().Str("component", "catalog").Logger(),
		data:    make(map[string]any),
		gen:     make(map[string]uint64),
	}
}

func (c *Cache) SetMetrics(p *telemetry.Provider) { c.metrics = p }

// load returns the cached collection for table, fetching it when absent.
// Concurrent misses share one fetch; a fetch that raced an invalidation is
// returned but not kept. A caller whose context ends stops waiting without
// failing the shared fetch.
func load[T any](ctx context.Context, c *Cache, table string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if fetch == nil {
		return nil, fmt.Errorf("no loader for %s", table)
	}
	c.mu.Lock()
	if v, ok := c.data[table]; ok {
		c.mu.Unlock()
		return v.([]T), nil
	}
	gen := c.gen[table]
	c.mu.Unlock()

	ch := c.flight.DoChan(table, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		items, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen[table] == gen {
			c.data[table] = items
		}
		c.mu.Unlock()
		c.logger.Debug().Str("table", table).Int("count", len(items)).Msg("collection loaded")
		return items, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", table, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, fmt.Errorf("load %s: %w", table, r.Err)
		}
		return r.Val.([]T), nil
	}
}

func (c *Cache) Patients(ctx context.Context) ([]*patient.Patient, error) {
	return load(ctx, c, domain.TablePatients, c.loaders.Patients)
}

func (c *Cache) Observations(ctx context.Context) ([]*observation.Observation, error) {
	return load(ctx, c, domain.TableObservations, c.loaders.Observations)
}

func (c *Cache) Consultations(ctx context.Context) ([]*consultation.Consultation, error) {
	return load(ctx, c, domain.TableConsultations, c.loaders.Consultations)
}

func (c *Cache) Todos(ctx context.Context) ([]*todo.Todo, error) {
	return load(ctx, c, domain.TableTodos, c.loaders.Todos)
}

func (c *Cache) WorkSessions(ctx context.Context) ([]*worksession.WorkSession, error) {
	return load(ctx, c, domain.TableWorkSessions, c.loaders.WorkSessions)
}

// Collections returns the four searchable collections, loading missing ones
// concurrently.
func (c *Cache) Collections(ctx context.Context) (search.Collections, error) {
	var out search.Collections
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.Patients, err = c.Patients(gctx); return })
	g.Go(func() (err error) { out.Observations, err = c.Observations(gctx); return })
	g.Go(func() (err error) { out.Consultations, err = c.Consultations(gctx); return })
	g.Go(func() (err error) { out.Todos, err = c.Todos(gctx); return })
	if err := g.Wait(); err != nil {
		return search.Collections{}, err
	}
	return out, nil
}

// Invalidate drops table and the collections that embed it.
func (c *Cache) Invalidate(table string) {
	tables := domain.AffectedTables(table)
	c.mu.Lock()
	for _, t := range tables {
		delete(c.data, t)
		c.gen[t]++
	}
	c.mu.Unlock()
	for _, t := range tables {
		c.metrics.CacheInvalidated(t)
	}
	c.logger.Debug().Strs("tables", tables).Msg("collections invalidated")
}

// Changed makes the cache a domain.Notifier.
func (c *Cache) Changed(_ context.Context, table string) { c.Invalidate(table) }

// Cached reports whether table is currently held.
func (c *Cache) Cached(table string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[table]
	return ok
}
