package chart

import (
	"fmt"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Duddu64/economia/internal/dataset"
)

// View identifies one analysis of the dashboard.
type View string

const (
	Overview  View = "visao-geral"
	Informal  View = "informalidade"
	Composed  View = "composicao"
	PJFGTS    View = "pj-fgts"
	Financing View = "juros"
)

// Views lists every view in menu order.
var Views = []View{Overview, Informal, Composed, PJFGTS, Financing}

// Title is the menu label of v.
func (v View) Title() string {
	switch v {
	case Overview:
		return "Visão Geral"
	case Informal:
		return "Análise de Informalidade"
	case Composed:
		return "Composição do Emprego"
	case PJFGTS:
		return "Crescimento PJ/Informal + FGTS"
	case Financing:
		return "Juros no Financiamento Imobiliário"
	}
	return string(v)
}

// NeedsRates reports whether v shows the interest series.
func (v View) NeedsRates() bool { return v == Financing }

// ParseView returns the view named s.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Input is the already filtered data a view is built from.
type Input struct {
	Tables  map[dataset.Sector][]dataset.SectorRecord
	FGTS    []dataset.FGTSContribution // nil when the table is absent
	Rates   []dataset.InterestRateObservation
	Sectors []dataset.Sector
}

// Financing impact example of the interest view.
const (
	loanPrincipal = 500000
	loanMonths    = 360
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Number formats v with the given decimals using Brazilian separators.
func Number(v float64, decimals int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// Build assembles the content of view v. Empty input yields empty figures,
// never an error.
func Build(v View, in Input) Page {
	p := Page{Title: v.Title()}
	switch v {
	case Overview:
		p.Cards = overviewCards(in.Tables)
		p.Figures = []*grob.Fig{Occupied(in.Tables, in.Sectors), Informality(in.Tables, in.Sectors)}
	case Informal:
		p.Figures = []*grob.Fig{Informality(in.Tables, in.Sectors)}
	case Composed:
		for _, s := range in.Sectors {
			p.Figures = append(p.Figures, Composition(s, in.Tables[s]))
		}
	case PJFGTS:
		buildPJFGTS(&p, in)
	case Financing:
		buildFinancing(&p, in)
	}
	return p
}

func overviewCards(tables map[dataset.Sector][]dataset.SectorRecord) []Card {
	var cards []Card
	for _, s := range dataset.Sectors {
		last, ok := dataset.Latest(tables[s])
		if !ok {
			continue
		}
		cards = append(cards, Card{Label: "Ocupados (" + s.Label() + ")", Value: Number(last.TotalOccupied, 1) + "M"})
	}
	for _, s := range dataset.Sectors {
		last, ok := dataset.Latest(tables[s])
		if !ok {
			continue
		}
		cards = append(cards, Card{Label: "Informalidade (" + s.Label() + ")", Value: Number(last.InformalityRate, 1) + "%"})
	}
	return cards
}

func buildPJFGTS(p *Page, in Input) {
	p.Notes = append(p.Notes, "O aumento do trabalho por conta própria (PJ) e informal na construção civil reduz a base de contribuições do FGTS.")
	rows := dataset.JoinFGTS(in.Tables[dataset.Construction], in.FGTS, dataset.Left)
	p.Figures = append(p.Figures, InformalPJ(rows))
	if in.FGTS == nil {
		p.Warnings = append(p.Warnings, dataset.PartialDataWarning{File: "fgts_arrecadacao.csv"}.String())
		return
	}
	p.Figures = append(p.Figures, FGTS(rows))

	corr, n, ok := dataset.Correlation(rows)
	if !ok {
		p.Notes = append(p.Notes, "Correlação indisponível: são necessários ao menos dois anos medidos com arrecadação do FGTS.")
		return
	}
	p.Cards = append(p.Cards, Card{Label: "Correlação Informal/PJ x FGTS", Value: Number(corr, 2)})
	p.Notes = append(p.Notes, printer.Sprintf("Correlação calculada sobre %d anos medidos; anos sintéticos não entram no cálculo.", n))
}

func buildFinancing(p *Page, in Input) {
	p.Figures = append(p.Figures, Rates(in.Rates, dataset.RateWindow))
	s, ok := dataset.SummarizeRates(in.Rates)
	if !ok {
		p.Warnings = append(p.Warnings, "Não há dados de juros para o período selecionado.")
		return
	}
	p.Cards = []Card{
		{Label: "Taxa Atual", Value: Number(s.Last, 2) + "%"},
		{Label: "Média no Período", Value: Number(s.Mean, 2) + "%"},
		{Label: "Máximo Histórico", Value: Number(s.Max, 2) + "%"},
	}
	first, total := dataset.FinancingImpact(loanPrincipal, s.Last, loanMonths)
	p.Notes = append(p.Notes,
		fmt.Sprintf("Uma taxa de %s%% a.m. num financiamento de R$ %s significa prestação inicial de R$ %s/mês e custo total de R$ %s em 30 anos.",
			Number(s.Last, 2), Number(loanPrincipal, 0), Number(first, 0), Number(total, 0)))
}
