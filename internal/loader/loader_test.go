package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duddu64/economia/internal/dataset"
	"github.com/Duddu64/economia/internal/store"
)

func newLoader(t *testing.T, files ...string) *Loader {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join("..", "store", "testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
	}
	return New(store.New(dir, nil), nil)
}

var originalFiles = []string{"tabela1_construcao_civil.csv", "tabela2_atividades_imobiliarias.csv", store.FGTSFile}

func synthetic(years ...int) []dataset.SectorRecord {
	var out []dataset.SectorRecord
	for _, y := range years {
		out = append(out, dataset.SectorRecord{Year: y, TotalOccupied: 7, Provenance: dataset.Synthetic})
	}
	return out
}

func TestLoadFallsBackToOriginal(t *testing.T) {
	l := newLoader(t, originalFiles...)

	st := l.State()
	assert.False(t, st.Updated())

	d, err := st.With(store.Updated).Load()
	require.NoError(t, err)
	assert.Equal(t, store.Original, d.Variant)
	assert.True(t, d.FellBack())
	assert.Len(t, d.Sector(dataset.Construction), 3)
}

func TestLoadMissing(t *testing.T) {
	l := newLoader(t)

	for _, v := range []store.Variant{store.Original, store.Updated} {
		_, err := l.Load(v)
		var me *dataset.MissingDatasetError
		require.True(t, errors.As(err, &me), "%v", err)
		assert.Contains(t, me.Files, l.Store().Path(dataset.Construction, store.Original))
	}
}

func TestLoadMemoizesUntilInvalidate(t *testing.T) {
	l := newLoader(t, originalFiles...)

	first, err := l.Load(store.Original)
	require.NoError(t, err)

	require.NoError(t, os.Remove(l.Store().Path(dataset.RealEstate, store.Original)))
	cached, err := l.Load(store.Original)
	require.NoError(t, err)
	if diff := cmp.Diff(first, cached); diff != "" {
		t.Errorf("cached dataset differs (-first +cached):\n%s", diff)
	}

	l.Invalidate()
	_, err = l.Load(store.Original)
	var me *dataset.MissingDatasetError
	assert.True(t, errors.As(err, &me))
}

func TestStateFollowsDisk(t *testing.T) {
	l := newLoader(t, originalFiles...)
	require.NoError(t, l.Store().WriteUpdated(map[dataset.Sector][]dataset.SectorRecord{
		dataset.Construction: synthetic(2012, 2013),
		dataset.RealEstate:   synthetic(2012, 2013),
	}))

	st := l.State()
	require.True(t, st.Updated())
	d, err := st.Load()
	require.NoError(t, err)
	assert.False(t, d.FellBack())
	assert.Equal(t, []int{2012, 2013}, dataset.Years(d.Sector(dataset.RealEstate)))
	assert.True(t, d.Sector(dataset.RealEstate)[0].IsSynthetic())

	require.NoError(t, l.Store().RemoveUpdated())
	l.Invalidate()
	assert.False(t, l.State().Updated())
}

func TestDatasetFilterAndRange(t *testing.T) {
	l := newLoader(t, originalFiles...)
	d, err := l.Load(store.Original)
	require.NoError(t, err)

	r, ok := d.Range()
	require.True(t, ok)
	assert.Equal(t, dataset.YearRange{Start: 2014, End: 2016}, r)

	f := d.Filter(dataset.YearRange{Start: 2015, End: 2015})
	assert.Equal(t, []int{2015}, dataset.Years(f.Sector(dataset.Construction)))
	assert.Equal(t, []int{2015}, dataset.Years(f.Sector(dataset.RealEstate)))
	assert.Equal(t, []int{2015}, dataset.Years(f.FGTS))
	assert.Len(t, d.Sector(dataset.Construction), 3, "filter must not touch the cached tables")

	empty := d.Filter(dataset.YearRange{Start: 1990, End: 1991})
	assert.Empty(t, empty.Sector(dataset.Construction))
	_, ok = empty.Range()
	assert.False(t, ok)
}
