package dataset

// FilterYears returns the rows whose year lies in r, keeping their order.
// An invalid range yields an empty, non-nil slice.
func FilterYears[T Yearly](rows []T, r YearRange) []T {
	out := make([]T, 0, len(rows))
	if !r.Valid() {
		return out
	}
	for _, row := range rows {
		if r.Contains(row.YearKey()) {
			out = append(out, row)
		}
	}
	return out
}

// FilterDates returns the observations whose calendar year lies in r.
func FilterDates(obs []InterestRateObservation, r YearRange) []InterestRateObservation {
	out := make([]InterestRateObservation, 0, len(obs))
	if !r.Valid() {
		return out
	}
	for _, o := range obs {
		if r.Contains(o.Date.Year()) {
			out = append(out, o)
		}
	}
	return out
}

// Years lists the year of every row, in row order.
func Years[T Yearly](rows []T) []int {
	years := make([]int, len(rows))
	for i, row := range rows {
		years[i] = row.YearKey()
	}
	return years
}
