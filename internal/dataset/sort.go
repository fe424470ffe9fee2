package dataset

import (
	"cmp"

	"golang.org/x/exp/slices"
)

// SortByYear sorts rows by ascending year, in place.
func SortByYear[T Yearly](rows []T) {
	slices.SortStableFunc(rows, func(a, b T) int {
		return cmp.Compare(a.YearKey(), b.YearKey())
	})
}

// SortByDate sorts observations by ascending date, in place.
func SortByDate(obs []InterestRateObservation) {
	slices.SortStableFunc(obs, func(a, b InterestRateObservation) int {
		return a.Date.Compare(b.Date)
	})
}

// DuplicateYears returns the years that appear more than once, in first-seen order.
func DuplicateYears[T Yearly](rows []T) []int {
	seen := make(map[int]int, len(rows))
	var dups []int
	for _, row := range rows {
		y := row.YearKey()
		seen[y]++
		if seen[y] == 2 {
			dups = append(dups, y)
		}
	}
	return dups
}
