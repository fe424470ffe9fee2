package dataset

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// InformalPJ is the informal plus self-employed (PJ) workforce of a record, in millions.
func (r SectorRecord) InformalPJ() float64 {
	return r.SelfEmployed + r.WithoutContract
}

// Correlation is the Pearson correlation between informal/PJ work and the
// FGTS collection over the measured years that have an FGTS value.
// Synthetic records are skipped. ok is false with fewer than two usable
// years or when either series is constant.
func Correlation(rows []FGTSJoinRow) (corr float64, n int, ok bool) {
	var x, y []float64
	for _, r := range rows {
		if r.GrossCollection == nil || r.IsSynthetic() {
			continue
		}
		x = append(x, r.InformalPJ())
		y = append(y, *r.GrossCollection)
	}
	if len(x) < 2 {
		return 0, len(x), false
	}
	corr = stat.Correlation(x, y, nil)
	if math.IsNaN(corr) {
		return 0, len(x), false
	}
	return corr, len(x), true
}

// Latest returns the last record of a table sorted by year.
func Latest(records []SectorRecord) (SectorRecord, bool) {
	if len(records) == 0 {
		return SectorRecord{}, false
	}
	return records[len(records)-1], true
}
