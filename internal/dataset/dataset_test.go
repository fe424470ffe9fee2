package dataset

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(years ...int) []SectorRecord {
	out := make([]SectorRecord, 0, len(years))
	for _, y := range years {
		out = append(out, SectorRecord{Year: y, TotalOccupied: float64(y-2000) / 2})
	}
	return out
}

func TestFilterYears(t *testing.T) {
	table := records(2012, 2013, 2015, 2016, 2019, 2020, 2023)

	for _, r := range []YearRange{{2012, 2023}, {2014, 2016}, {2013, 2013}, {2021, 2022}, {1990, 2100}} {
		got := FilterYears(table, r)
		for i, rec := range got {
			assert.True(t, r.Contains(rec.Year), "year %d outside %s", rec.Year, r)
			if i > 0 {
				assert.Less(t, got[i-1].Year, rec.Year)
			}
		}
		// filtering again by the same or a wider range changes nothing
		assert.Empty(t, cmp.Diff(got, FilterYears(got, r)))
		assert.Empty(t, cmp.Diff(got, FilterYears(got, YearRange{r.Start - 5, r.End + 5})))
	}

	assert.Equal(t, []int{2015, 2016}, Years(FilterYears(table, YearRange{2014, 2017})))
	assert.Empty(t, FilterYears(table, YearRange{2017, 2018}))
	assert.NotNil(t, FilterYears(table, YearRange{2020, 2010}))
	assert.Empty(t, FilterYears(table, YearRange{2020, 2010}))
}

func TestFilterDates(t *testing.T) {
	obs := []InterestRateObservation{
		{Date: time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC), Value: 0.7},
		{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Value: 0.6},
		{Date: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Value: 0.5},
	}
	got := FilterDates(obs, YearRange{2020, 2020})
	require.Len(t, got, 1)
	assert.Equal(t, 0.6, got[0].Value)
}

func TestJoinSectors(t *testing.T) {
	construction := records(2012, 2013, 2014)
	realEstate := records(2013, 2014, 2015)

	inner := JoinSectors(construction, realEstate, Inner)
	assert.Equal(t, []int{2013, 2014}, Years(inner))
	for _, row := range inner {
		require.NotNil(t, row.Right)
		assert.Equal(t, row.Year, row.Right.Year)
	}

	left := JoinSectors(construction, realEstate, Left)
	assert.Equal(t, []int{2012, 2013, 2014}, Years(left))
	assert.Nil(t, left[0].Right)
	assert.NotNil(t, left[1].Right)
}

func TestJoinFGTS(t *testing.T) {
	construction := records(2018, 2019, 2020)
	fgts := []FGTSContribution{{Year: 2019, GrossCollection: 150.5}, {Year: 2020, GrossCollection: 160}}

	inner := JoinFGTS(construction, fgts, Inner)
	assert.Equal(t, []int{2019, 2020}, Years(inner))
	assert.Equal(t, 150.5, *inner[0].GrossCollection)

	left := JoinFGTS(construction, fgts, Left)
	assert.Len(t, left, 3)
	assert.Nil(t, left[0].GrossCollection)

	// tabela do FGTS ausente: colunas somem, linhas ficam
	absent := JoinFGTS(construction, nil, Inner)
	assert.Len(t, absent, 3)
	for _, row := range absent {
		assert.Nil(t, row.GrossCollection)
	}

	assert.Empty(t, JoinFGTS(construction, []FGTSContribution{}, Inner))
}

func TestRollingMean(t *testing.T) {
	var obs []InterestRateObservation
	for m := 1; m <= 12; m++ {
		obs = append(obs, InterestRateObservation{
			Date:  time.Date(2023, time.Month(m), 1, 0, 0, 0, 0, time.UTC),
			Value: float64(m),
		})
	}

	got := RollingMean(obs, RateWindow)
	require.Len(t, got, 12)

	defined := 0
	for i, p := range got {
		assert.Equal(t, obs[i].Date, p.Date)
		if i < RateWindow-1 {
			assert.Nil(t, p.Mean, "point %d", i+1)
			continue
		}
		require.NotNil(t, p.Mean)
		defined++
	}
	assert.Equal(t, 7, defined)
	assert.InDelta(t, 3.5, *got[5].Mean, 1e-9)  // (1..6)/6
	assert.InDelta(t, 9.5, *got[11].Mean, 1e-9) // (7..12)/6

	short := RollingMean(obs[:3], RateWindow)
	for _, p := range short {
		assert.Nil(t, p.Mean)
	}
}

func TestSummarizeRates(t *testing.T) {
	_, ok := SummarizeRates(nil)
	assert.False(t, ok)

	obs := []InterestRateObservation{{Value: 1}, {Value: 3}, {Value: 2}}
	s, ok := SummarizeRates(obs)
	require.True(t, ok)
	assert.Equal(t, 2.0, s.Last)
	assert.Equal(t, 2.0, s.Mean)
	assert.Equal(t, 3.0, s.Max)
	assert.Equal(t, []InterestRateObservation{{Value: 3}}, s.AboveMean)

	first, total := FinancingImpact(500000, 1, 1)
	assert.InDelta(t, 5000, first, 1e-9)
	assert.InDelta(t, 505000, total, 1e-6)
}

func TestCorrelationSkipsSynthetic(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	rows := []FGTSJoinRow{
		{SectorRecord: SectorRecord{Year: 2018, SelfEmployed: 1, WithoutContract: 1}, GrossCollection: v(10)},
		{SectorRecord: SectorRecord{Year: 2019, SelfEmployed: 2, WithoutContract: 1}, GrossCollection: v(20)},
		{SectorRecord: SectorRecord{Year: 2020, SelfEmployed: 3, WithoutContract: 1}, GrossCollection: v(30)},
		{SectorRecord: SectorRecord{Year: 2021, SelfEmployed: 9, Provenance: Synthetic}, GrossCollection: v(0)},
		{SectorRecord: SectorRecord{Year: 2022, SelfEmployed: 5}},
	}
	corr, n, ok := Correlation(rows)
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.InDelta(t, 1.0, corr, 1e-9)

	_, _, ok = Correlation(rows[:1])
	assert.False(t, ok)
}

func TestFold(t *testing.T) {
	for in, want := range map[string]string{
		"Total de Ocupados (PNAD, milhões)":  "total de ocupados pnad milhoes",
		"Taxa de Informalidade Setorial (%)": "taxa de informalidade setorial",
		"Arrecadacao_Bruta_R_Bilhoes":        "arrecadacao bruta r bilhoes",
		"  Construção   ":                    "construcao",
		"Proveniência":                       "proveniencia",
	} {
		assert.Equal(t, want, Fold(in), in)
	}
	assert.True(t, ContainsFolded("F - Construção", "construcao"))
	assert.True(t, ContainsFolded("L - Atividades imobiliárias", "Atividades Imobiliárias"))
}

func TestParseSector(t *testing.T) {
	s, err := ParseSector("Construção Civil")
	require.NoError(t, err)
	assert.Equal(t, Construction, s)

	s, err = ParseSector("imobiliario")
	require.NoError(t, err)
	assert.Equal(t, RealEstate, s)

	_, err = ParseSector("agro")
	assert.Error(t, err)
}

func TestSortAndDuplicates(t *testing.T) {
	table := records(2014, 2012, 2013, 2012)
	SortByYear(table)
	assert.Equal(t, []int{2012, 2012, 2013, 2014}, Years(table))
	assert.Equal(t, []int{2012}, DuplicateYears(table))

	span, ok := Span(table)
	require.True(t, ok)
	assert.Equal(t, YearRange{2012, 2014}, span)
	assert.Equal(t, []int{2012, 2013, 2014}, span.Years())
}
