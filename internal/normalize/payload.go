package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Shape of the IBGE aggregates answer (/agregados/{tabela}/variaveis/...).

type sidraVariable struct {
	ID         string        `json:"id"`
	Variavel   string        `json:"variavel"`
	Unidade    string        `json:"unidade"`
	Resultados []sidraResult `json:"resultados"`
}

type sidraResult struct {
	Classificacoes []sidraClassification `json:"classificacoes"`
	Series         []sidraSeries         `json:"series"`
}

type sidraClassification struct {
	ID        string            `json:"id"`
	Nome      string            `json:"nome"`
	Categoria map[string]string `json:"categoria"`
}

type sidraSeries struct {
	Localidade struct {
		ID   string `json:"id"`
		Nome string `json:"nome"`
	} `json:"localidade"`
	Serie map[string]any `json:"serie"`
}

// labels are the names a series can be recognized by: its locality and the
// categories of the classification it belongs to.
func (s sidraSeries) labels(r sidraResult) []string {
	out := []string{s.Localidade.Nome}
	for _, c := range r.Classificacoes {
		for _, name := range c.Categoria {
			out = append(out, name)
		}
	}
	return out
}

// sentinels mark a period without a published value.
var sentinels = map[string]bool{"": true, "...": true, "..": true, "-": true, "x": true, "X": true}

// yearlyValues reduces a period->value map to one value per year. Annual
// keys ("2019") win; otherwise sub-annual keys ("201901") are averaged.
func yearlyValues(serie map[string]any) (map[int]float64, error) {
	annual := make(map[int]float64)
	sums := make(map[int]float64)
	counts := make(map[int]int)

	for period, raw := range serie {
		if len(period) < 4 {
			return nil, fmt.Errorf("invalid period %q", period)
		}
		year, err := strconv.Atoi(period[:4])
		if err != nil {
			return nil, fmt.Errorf("invalid period %q: %w", period, err)
		}
		v, ok := parseValue(raw)
		if !ok {
			continue
		}
		if len(period) == 4 {
			annual[year] = v
			continue
		}
		sums[year] += v
		counts[year]++
	}

	for year, n := range counts {
		if _, ok := annual[year]; !ok {
			annual[year] = sums[year] / float64(n)
		}
	}
	return annual, nil
}

func parseValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case map[string]any:
		// formato antigo do SIDRA: {"V": "7000"}
		return parseValue(v["V"])
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		if sentinels[s] {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
