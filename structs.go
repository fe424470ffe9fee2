package main

import (
	"github.com/Duddu64/economia/internal/dataset"
)

// Resumo condensa uma tabela setorial no período selecionado.
type Resumo struct {
	Setor            string  `csv:"setor"`
	AnoInicial       int     `csv:"ano inicial"`
	AnoFinal         int     `csv:"ano final"`
	Ocupados         float64 `csv:"ocupados milhoes"`      // último ano
	VariacaoOcupados float64 `csv:"variacao de ocupados"`  // % sobre o primeiro ano
	Informalidade    float64 `csv:"taxa de informalidade"` // último ano
	ContaPropria     float64 `csv:"conta propria milhoes"` // último ano
	SaldoFormal      float64 `csv:"saldo formal acumulado mil"`
	AnosSinteticos   int     `csv:"anos sinteticos"`
}

var resumoHeader = []string{
	"Setor",
	"Ano Inicial",
	"Ano Final",
	"Ocupados (milhões)",
	"Variação de Ocupados (%)",
	"Taxa de Informalidade (%)",
	"Conta Própria (milhões)",
	"Saldo Formal Acumulado (mil)",
	"Anos Sintéticos",
}

// resumir assumes records sorted by year. ok is false when there is nothing
// to summarize.
func resumir(s dataset.Sector, records []dataset.SectorRecord) (r Resumo, ok bool) {
	if len(records) == 0 {
		return Resumo{}, false
	}
	first, last := records[0], records[len(records)-1]
	r = Resumo{
		Setor:         s.Label(),
		AnoInicial:    first.Year,
		AnoFinal:      last.Year,
		Ocupados:      last.TotalOccupied,
		Informalidade: last.InformalityRate,
		ContaPropria:  last.SelfEmployed,
	}
	if first.TotalOccupied != 0 {
		r.VariacaoOcupados = (last.TotalOccupied/first.TotalOccupied - 1) * 100
	}
	for _, rec := range records {
		r.SaldoFormal += rec.FormalNetChange
		if rec.IsSynthetic() {
			r.AnosSinteticos++
		}
	}
	return r, true
}
