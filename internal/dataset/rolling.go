package dataset

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// RateWindow is the trailing window of the interest-rate moving average.
const RateWindow = 6

// RollingPoint is one point of a moving-average series.
type RollingPoint struct {
	Date time.Time `json:"data"`
	Mean *float64  `json:"media_movel"` // nil while the window is incomplete
}

// RollingMean computes the trailing mean of obs over window points. The first
// window-1 points have no mean.
func RollingMean(obs []InterestRateObservation, window int) []RollingPoint {
	out := make([]RollingPoint, len(obs))
	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Value
		out[i].Date = o.Date
	}
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		m := stat.Mean(values[i-window+1:i+1], nil)
		out[i].Mean = &m
	}
	return out
}

// RateSummary describes an interest series over the selected period.
type RateSummary struct {
	Last      float64                   `json:"ultima"`
	Mean      float64                   `json:"media"`
	Max       float64                   `json:"maximo"`
	AboveMean []InterestRateObservation `json:"acima_da_media"`
}

// SummarizeRates returns the last, mean and max values of obs and the
// observations above the mean. ok is false for an empty series.
func SummarizeRates(obs []InterestRateObservation) (s RateSummary, ok bool) {
	if len(obs) == 0 {
		return RateSummary{}, false
	}
	values := make([]float64, len(obs))
	s.Max = math.Inf(-1)
	for i, o := range obs {
		values[i] = o.Value
		s.Max = math.Max(s.Max, o.Value)
	}
	s.Last = values[len(values)-1]
	s.Mean = stat.Mean(values, nil)
	for _, o := range obs {
		if o.Value > s.Mean {
			s.AboveMean = append(s.AboveMean, o)
		}
	}
	return s, true
}

// FinancingImpact gives the first month interest and the compounded balance
// of a loan of principal at ratePct per month over months.
func FinancingImpact(principal, ratePct float64, months int) (firstInterest, compounded float64) {
	r := ratePct / 100
	return principal * r, principal * math.Pow(1+r, float64(months))
}
