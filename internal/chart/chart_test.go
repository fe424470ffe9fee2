package chart

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Duddu64/economia/internal/dataset"
)

func tables() map[dataset.Sector][]dataset.SectorRecord {
	return map[dataset.Sector][]dataset.SectorRecord{
		dataset.Construction: {
			{Year: 2014, TotalOccupied: 7.8, WithContract: 2.9, WithoutContract: 2.0, SelfEmployed: 2.9, InformalityRate: 58.9, Provenance: dataset.Measured},
			{Year: 2015, TotalOccupied: 7.5, WithContract: 2.6, WithoutContract: 2.1, SelfEmployed: 2.8, InformalityRate: 61.3, Provenance: dataset.Measured},
			{Year: 2016, TotalOccupied: 7.0, WithContract: 2.3, WithoutContract: 2.0, SelfEmployed: 2.7, InformalityRate: 63.2, Provenance: dataset.Measured},
		},
		dataset.RealEstate: {
			{Year: 2014, TotalOccupied: 0.9, InformalityRate: 48.5, Provenance: dataset.Measured},
		},
	}
}

// traces decodes the data array of a figure.
func traces(t *testing.T, fig *grob.Fig) []map[string]any {
	t.Helper()
	b, err := json.Marshal(fig)
	require.NoError(t, err)
	var out struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	return out.Data
}

func TestOccupiedAndInformality(t *testing.T) {
	occupied := traces(t, Occupied(tables(), dataset.Sectors))
	require.Len(t, occupied, 2)
	assert.Equal(t, "bar", occupied[0]["type"])
	assert.Equal(t, "Ocupados - Construção Civil", occupied[0]["name"])
	assert.Equal(t, []any{2014.0, 2015.0, 2016.0}, occupied[0]["x"])

	informality := traces(t, Informality(tables(), []dataset.Sector{dataset.RealEstate}))
	require.Len(t, informality, 1)
	assert.Equal(t, "Atividades Imobiliárias", informality[0]["name"])
	assert.Equal(t, []any{48.5}, informality[0]["y"])
}

func TestCompositionStacksThreeParts(t *testing.T) {
	fig := Composition(dataset.Construction, tables()[dataset.Construction])
	tr := traces(t, fig)
	require.Len(t, tr, 3)
	assert.Equal(t, []any{2.9, 2.6, 2.3}, tr[0]["y"])
	assert.Equal(t, []any{2.9, 2.8, 2.7}, tr[2]["y"])
}

func TestRatesTrendHasGaps(t *testing.T) {
	var obs []dataset.InterestRateObservation
	for m := 1; m <= 8; m++ {
		obs = append(obs, dataset.InterestRateObservation{Date: time.Date(2023, time.Month(m), 1, 0, 0, 0, 0, time.UTC), Value: float64(m)})
	}
	tr := traces(t, Rates(obs, 6))
	require.Len(t, tr, 3)
	trend := tr[1]["y"].([]any)
	require.Len(t, trend, 8)
	for i := 0; i < 5; i++ {
		assert.Nil(t, trend[i], "point %d", i)
	}
	assert.Equal(t, 3.5, trend[5])
	assert.Equal(t, []any{"2023-05-01", "2023-06-01", "2023-07-01", "2023-08-01"}, tr[2]["x"])
}

func TestBuildEmptyInput(t *testing.T) {
	for _, v := range Views {
		t.Run(string(v), func(t *testing.T) {
			p := Build(v, Input{Sectors: dataset.Sectors})
			assert.Equal(t, v.Title(), p.Title)
			assert.NotEmpty(t, p.Figures)
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, p))
		})
	}
}

func TestBuildOverviewCards(t *testing.T) {
	p := Build(Overview, Input{Tables: tables(), Sectors: dataset.Sectors})
	require.Len(t, p.Cards, 4)
	assert.Equal(t, Card{Label: "Ocupados (Construção Civil)", Value: "7,0M"}, p.Cards[0])
	assert.Equal(t, Card{Label: "Informalidade (Atividades Imobiliárias)", Value: "48,5%"}, p.Cards[3])
}

func TestBuildPJFGTS(t *testing.T) {
	p := Build(PJFGTS, Input{Tables: tables(), Sectors: dataset.Sectors})
	assert.Len(t, p.Figures, 1)
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], "fgts_arrecadacao.csv")

	fgts := []dataset.FGTSContribution{{Year: 2014, GrossCollection: 110}, {Year: 2015, GrossCollection: 117.6}, {Year: 2016, GrossCollection: 118}}
	p = Build(PJFGTS, Input{Tables: tables(), FGTS: fgts, Sectors: dataset.Sectors})
	assert.Len(t, p.Figures, 2)
	assert.Empty(t, p.Warnings)
	require.Len(t, p.Cards, 1)
	assert.True(t, strings.HasPrefix(p.Cards[0].Value, "-"), p.Cards[0].Value)
}

func TestBuildFinancing(t *testing.T) {
	obs := []dataset.InterestRateObservation{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 0.9},
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Value: 1.1},
	}
	p := Build(Financing, Input{Rates: obs})
	require.Len(t, p.Cards, 3)
	assert.Equal(t, "1,10%", p.Cards[0].Value)
	assert.Equal(t, "1,00%", p.Cards[1].Value)
	require.Len(t, p.Notes, 1)
	assert.Contains(t, p.Notes[0], "R$ 5.500/mês")
}

func TestRender(t *testing.T) {
	p := Build(Informal, Input{Tables: tables(), Sectors: dataset.Sectors})
	p.Source = "Dados originais"
	p.Nav = []Link{{Label: "Visão Geral", Href: "/views/visao-geral"}}
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	html := buf.String()
	assert.Contains(t, html, "Análise de Informalidade")
	assert.Contains(t, html, "Dados originais")
	assert.Contains(t, html, `Plotly.newPlot("fig0"`)
	assert.Contains(t, html, `"name":"Construção Civil"`)
}

func TestParseView(t *testing.T) {
	v, err := ParseView("juros")
	require.NoError(t, err)
	assert.True(t, v.NeedsRates())
	_, err = ParseView("mapa")
	assert.Error(t, err)
}
