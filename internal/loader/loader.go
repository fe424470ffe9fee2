// Package loader resolves which variant of the sector tables the dashboard
// shows and memoizes what it read from the store.
package loader

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Duddu64/economia/internal/dataset"
	"github.com/Duddu64/economia/internal/store"
)

// Dataset is what one view works on.
type Dataset struct {
	store.Tables

	// Requested is the variant the caller asked for; Tables.Variant is the
	// one that was actually read.
	Requested store.Variant
}

// FellBack reports whether the updated variant was asked for but the
// original one was read.
func (d Dataset) FellBack() bool {
	return d.Requested != d.Variant
}

// Range is the smallest year range covering both sector tables.
func (d Dataset) Range() (dataset.YearRange, bool) {
	var (
		r     dataset.YearRange
		found bool
	)
	for _, s := range dataset.Sectors {
		span, ok := dataset.Span(d.Sector(s))
		if !ok {
			continue
		}
		if !found {
			r, found = span, true
			continue
		}
		r.Start = min(r.Start, span.Start)
		r.End = max(r.End, span.End)
	}
	return r, found
}

// Filter restricts every table of d to r.
func (d Dataset) Filter(r dataset.YearRange) Dataset {
	out := d
	out.Sectors = make(map[dataset.Sector][]dataset.SectorRecord, len(d.Sectors))
	for s, records := range d.Sectors {
		out.Sectors[s] = dataset.FilterYears(records, r)
	}
	if d.FGTS != nil {
		out.FGTS = dataset.FilterYears(d.FGTS, r)
	}
	return out
}

// Loader reads variants from a store, caching each one until Invalidate.
type Loader struct {
	store *store.Store
	log   *zap.Logger

	mu    sync.Mutex
	cache map[store.Variant]store.Tables
}

// New creates a Loader over s.
func New(s *store.Store, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{store: s, log: log, cache: make(map[store.Variant]store.Tables)}
}

// Store is the store the loader reads from.
func (l *Loader) Store() *store.Store { return l.store }

// Load reads variant v. An absent updated variant falls back to the
// original; when that is absent too a *dataset.MissingDatasetError names the
// missing files.
func (l *Loader) Load(v store.Variant) (Dataset, error) {
	resolved := v
	if v == store.Updated && !l.store.Has(store.Updated) {
		l.log.Info("updated tables absent, using original")
		resolved = store.Original
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.cache[resolved]; ok {
		return Dataset{Tables: t, Requested: v}, nil
	}
	t, err := l.store.Read(resolved)
	if err != nil {
		return Dataset{}, err
	}
	for _, w := range t.Warnings {
		l.log.Warn(w.String())
	}
	l.cache[resolved] = t
	return Dataset{Tables: t, Requested: v}, nil
}

// Invalidate drops every cached variant.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.cache)
	l.log.Debug("dataset cache invalidated")
}

// State derives the dashboard state from the files on disk: the updated
// variant is selected whenever it exists.
func (l *Loader) State() DashboardState {
	v := store.Original
	if l.store.Has(store.Updated) {
		v = store.Updated
	}
	return DashboardState{Variant: v, Cache: l}
}
