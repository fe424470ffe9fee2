package loader

import (
	"github.com/Duddu64/economia/internal/store"
)

// DashboardState is passed to every view: which variant to show and the
// cache to read it through.
type DashboardState struct {
	Variant store.Variant
	Cache   *Loader
}

// Updated reports whether the state selects the updated variant.
func (s DashboardState) Updated() bool {
	return s.Variant == store.Updated
}

// Load reads the selected variant through the cache.
func (s DashboardState) Load() (Dataset, error) {
	return s.Cache.Load(s.Variant)
}

// With returns a copy of s selecting v.
func (s DashboardState) With(v store.Variant) DashboardState {
	s.Variant = v
	return s
}
