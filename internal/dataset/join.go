package dataset

// JoinKind selects what happens to left rows without a matching year.
type JoinKind int

const (
	// Inner drops left rows without a match.
	Inner JoinKind = iota
	// Left keeps every left row and leaves the right side empty.
	Left
)

func (k JoinKind) String() string {
	if k == Left {
		return "left"
	}
	return "inner"
}

// SectorJoinRow is one year of two sector tables side by side.
type SectorJoinRow struct {
	Year  int
	Left  SectorRecord
	Right *SectorRecord // nil on a left join gap
}

// YearKey implements Yearly.
func (r SectorJoinRow) YearKey() int { return r.Year }

// FGTSJoinRow is one sector year with the FGTS collection of that year, if any.
type FGTSJoinRow struct {
	SectorRecord
	GrossCollection *float64 // R$ bilhões; nil when unknown
}

// JoinSectors joins two sector tables on year, in the order of left.
func JoinSectors(left, right []SectorRecord, kind JoinKind) []SectorJoinRow {
	byYear := make(map[int]SectorRecord, len(right))
	for _, r := range right {
		byYear[r.Year] = r
	}

	out := make([]SectorJoinRow, 0, len(left))
	for _, l := range left {
		row := SectorJoinRow{Year: l.Year, Left: l}
		if r, ok := byYear[l.Year]; ok {
			row.Right = &r
		} else if kind == Inner {
			continue
		}
		out = append(out, row)
	}
	return out
}

// JoinFGTS attaches the FGTS collection to each sector year. A nil fgts means
// the optional table is absent: every record is kept and the FGTS column is
// left empty whatever the join kind.
func JoinFGTS(records []SectorRecord, fgts []FGTSContribution, kind JoinKind) []FGTSJoinRow {
	out := make([]FGTSJoinRow, 0, len(records))
	if fgts == nil {
		for _, r := range records {
			out = append(out, FGTSJoinRow{SectorRecord: r})
		}
		return out
	}

	byYear := make(map[int]float64, len(fgts))
	for _, c := range fgts {
		byYear[c.Year] = c.GrossCollection
	}
	for _, r := range records {
		row := FGTSJoinRow{SectorRecord: r}
		if v, ok := byYear[r.Year]; ok {
			row.GrossCollection = &v
		} else if kind == Inner {
			continue
		}
		out = append(out, row)
	}
	return out
}
