// Package chart builds the plotly figures of the dashboard views.
package chart

import (
	grob "github.com/MetalBlueberry/go-plotly/graph_objects"

	"github.com/Duddu64/economia/internal/dataset"
)

const height = 500

// cores
const (
	colorConstructionOccupied    = "#1f77b4"
	colorConstructionInformality = "#ff7f0e"
	colorRealEstateOccupied      = "#2ca02c"
	colorRealEstateInformality   = "#d62728"
	colorWithContract            = "#66c5cc"
	colorWithoutContract         = "#f6cf71"
	colorSelfEmployed            = "#f89c74"
	colorInformalPJ              = "#FF7F0E"
	colorFGTS                    = "#1F77B4"
	colorRate                    = "#888"
	colorRateTrend               = "#E377C2"
	colorRateHigh                = "red"
)

var linesMarkers = grob.ScatterMode("lines+markers")

func newFigure(title, xLabel, yLabel string) *grob.Fig {
	return &grob.Fig{
		Layout: &grob.Layout{
			Title:      &grob.LayoutTitle{Text: title},
			Height:     height,
			Showlegend: grob.True,
			Xaxis:      &grob.LayoutXaxis{Title: &grob.LayoutXaxisTitle{Text: xLabel}},
			Yaxis:      &grob.LayoutYaxis{Title: &grob.LayoutYaxisTitle{Text: yLabel}},
		},
	}
}

func occupiedColor(s dataset.Sector) string {
	if s == dataset.RealEstate {
		return colorRealEstateOccupied
	}
	return colorConstructionOccupied
}

func informalityColor(s dataset.Sector) string {
	if s == dataset.RealEstate {
		return colorRealEstateInformality
	}
	return colorConstructionInformality
}

func column(records []dataset.SectorRecord, field func(dataset.SectorRecord) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = field(r)
	}
	return out
}

// Occupied shows the total of occupied persons of each sector as grouped bars.
func Occupied(tables map[dataset.Sector][]dataset.SectorRecord, sectors []dataset.Sector) *grob.Fig {
	fig := newFigure("Evolução do Total de Ocupados", "Ano", "Total de Ocupados (milhões)")
	fig.Layout.Barmode = grob.LayoutBarmodeGroup
	for _, s := range sectors {
		records := tables[s]
		fig.AddTraces(&grob.Bar{
			Type:    grob.TraceTypeBar,
			Name:    "Ocupados - " + s.Label(),
			X:       dataset.Years(records),
			Y:       column(records, func(r dataset.SectorRecord) float64 { return r.TotalOccupied }),
			Marker:  &grob.BarMarker{Color: occupiedColor(s)},
			Opacity: 0.7,
		})
	}
	return fig
}

// Informality draws the informality rate of each sector over the years.
func Informality(tables map[dataset.Sector][]dataset.SectorRecord, sectors []dataset.Sector) *grob.Fig {
	fig := newFigure("Taxa de Informalidade Setorial ao Longo do Tempo", "Ano", "Taxa de Informalidade (%)")
	for _, s := range sectors {
		records := tables[s]
		fig.AddTraces(&grob.Scatter{
			Type: grob.TraceTypeScatter,
			Name: s.Label(),
			X:    dataset.Years(records),
			Y:    column(records, func(r dataset.SectorRecord) float64 { return r.InformalityRate }),
			Mode: linesMarkers,
			Line: &grob.ScatterLine{Color: informalityColor(s), Width: 3},
		})
	}
	return fig
}

// Composition stacks the employment of one sector by kind of contract.
func Composition(s dataset.Sector, records []dataset.SectorRecord) *grob.Fig {
	fig := newFigure("Composição do Emprego - "+s.Label(), "Ano", "Ocupados (milhões)")
	fig.Layout.Barmode = grob.LayoutBarmodeStack
	years := dataset.Years(records)
	for _, part := range []struct {
		name  string
		color string
		field func(dataset.SectorRecord) float64
	}{
		{"Empregados com Carteira", colorWithContract, func(r dataset.SectorRecord) float64 { return r.WithContract }},
		{"Empregados sem Carteira", colorWithoutContract, func(r dataset.SectorRecord) float64 { return r.WithoutContract }},
		{"Conta Própria", colorSelfEmployed, func(r dataset.SectorRecord) float64 { return r.SelfEmployed }},
	} {
		fig.AddTraces(&grob.Bar{
			Type:   grob.TraceTypeBar,
			Name:   part.name,
			X:      years,
			Y:      column(records, part.field),
			Marker: &grob.BarMarker{Color: part.color},
		})
	}
	return fig
}

// InformalPJ shows the informal plus self-employed workforce of the joined rows.
func InformalPJ(rows []dataset.FGTSJoinRow) *grob.Fig {
	fig := newFigure("Crescimento do Trabalho Informal/PJ", "Ano", "Trabalho Informal/PJ (milhões)")
	years := make([]int, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		years[i] = r.Year
		values[i] = r.InformalPJ()
	}
	fig.AddTraces(&grob.Bar{
		Type:    grob.TraceTypeBar,
		Name:    "Trabalho Informal/PJ (milhões)",
		X:       years,
		Y:       values,
		Marker:  &grob.BarMarker{Color: colorInformalPJ},
		Opacity: 0.7,
	})
	return fig
}

// FGTS draws the gross FGTS collection of the joined rows. Years without a
// value are left as gaps.
func FGTS(rows []dataset.FGTSJoinRow) *grob.Fig {
	fig := newFigure("Arrecadação do FGTS", "Ano", "Arrecadação FGTS (R$ Bi)")
	years := make([]int, 0, len(rows))
	values := make([]any, 0, len(rows))
	for _, r := range rows {
		years = append(years, r.Year)
		if r.GrossCollection == nil {
			values = append(values, nil)
			continue
		}
		values = append(values, *r.GrossCollection)
	}
	fig.AddTraces(&grob.Scatter{
		Type: grob.TraceTypeScatter,
		Name: "Arrecadação FGTS (R$ Bi)",
		X:    years,
		Y:    values,
		Mode: linesMarkers,
		Line: &grob.ScatterLine{Color: colorFGTS, Width: 3},
	})
	return fig
}

const dateLayout = "2006-01-02"

// Rates draws an interest series, its trailing mean and the points above the
// period mean.
func Rates(obs []dataset.InterestRateObservation, window int) *grob.Fig {
	fig := newFigure("Evolução da Taxa de Juros para Financiamento Imobiliário", "Data", "Taxa Mensal (%)")

	dates := make([]string, len(obs))
	values := make([]float64, len(obs))
	for i, o := range obs {
		dates[i] = o.Date.Format(dateLayout)
		values[i] = o.Value
	}
	fig.AddTraces(&grob.Scatter{
		Type: grob.TraceTypeScatter,
		Name: "Juros (% a.m.)",
		X:    dates,
		Y:    values,
		Mode: grob.ScatterModeLines,
		Line: &grob.ScatterLine{Color: colorRate, Width: 1},
	})

	trend := make([]any, len(obs))
	for i, p := range dataset.RollingMean(obs, window) {
		if p.Mean == nil {
			continue
		}
		trend[i] = *p.Mean
	}
	fig.AddTraces(&grob.Scatter{
		Type: grob.TraceTypeScatter,
		Name: "Tendência (6 meses)",
		X:    dates,
		Y:    trend,
		Mode: grob.ScatterModeLines,
		Line: &grob.ScatterLine{Color: colorRateTrend, Width: 3},
	})

	if s, ok := dataset.SummarizeRates(obs); ok {
		highDates := make([]string, len(s.AboveMean))
		highValues := make([]float64, len(s.AboveMean))
		for i, o := range s.AboveMean {
			highDates[i] = o.Date.Format(dateLayout)
			highValues[i] = o.Value
		}
		fig.AddTraces(&grob.Scatter{
			Type:   grob.TraceTypeScatter,
			Name:   "Juros Elevados",
			X:      highDates,
			Y:      highValues,
			Mode:   grob.ScatterModeMarkers,
			Marker: &grob.ScatterMarker{Color: colorRateHigh, Size: 8},
		})
	}
	return fig
}
