// Package normalize turns the IBGE aggregates payload into one SectorRecord
// per sector and year.
//
// Only the total of occupied persons is read from the payload. The
// breakdown the dashboard needs (contract, self-employed, informality, net
// formal change) is filled in with fixed formulas and every such record is
// tagged dataset.Synthetic.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Duddu64/economia/internal/dataset"
)

// DefaultEpoch is the first year of a refreshed series.
const DefaultEpoch = 2012

// netChangeAnchor is the year the formal net change trend is centered on.
const netChangeAnchor = 2020

// Policy holds the formulas used to complete one sector.
type Policy struct {
	Sector  dataset.Sector
	Keyword string // matched against locality and category names

	SelfEmployedShare float64

	// Informality rate = InformalityBase + InformalitySlope*(year-epoch),
	// clamped to [InformalityMin, InformalityMax].
	InformalityBase  float64
	InformalitySlope float64
	InformalityMin   float64
	InformalityMax   float64

	// Formal net change = NetChangeBase + NetChangeSlope*(year-2020), in thousands.
	NetChangeBase  float64
	NetChangeSlope float64
}

// DefaultPolicies are the sector formulas of the dashboard.
var DefaultPolicies = []Policy{
	{
		Sector:            dataset.Construction,
		Keyword:           "construcao",
		SelfEmployedShare: 0.25,
		InformalityBase:   60,
		InformalitySlope:  -1.5,
		InformalityMin:    0,
		InformalityMax:    65,
		NetChangeBase:     25,
		NetChangeSlope:    15,
	},
	{
		Sector:            dataset.RealEstate,
		Keyword:           "atividades imobiliarias",
		SelfEmployedShare: 0.15,
		InformalityBase:   30,
		InformalitySlope:  -0.5,
		InformalityMin:    35,
		InformalityMax:    100,
		NetChangeBase:     10,
		NetChangeSlope:    5,
	},
}

// InformalityRate applies the sector trend and band for year.
func (p Policy) InformalityRate(year, epoch int) float64 {
	rate := p.InformalityBase + p.InformalitySlope*float64(year-epoch)
	return math.Min(math.Max(rate, p.InformalityMin), p.InformalityMax)
}

// Record completes a sector year from its measured total of occupied persons (millions).
func (p Policy) Record(year, epoch int, totalOccupied float64) dataset.SectorRecord {
	rate := p.InformalityRate(year, epoch)
	self := totalOccupied * p.SelfEmployedShare
	informal := totalOccupied * rate / 100
	without := math.Max(informal-self, 0)
	with := math.Max(totalOccupied-self-without, 0)

	return dataset.SectorRecord{
		Year:            year,
		TotalOccupied:   totalOccupied,
		WithContract:    with,
		WithoutContract: without,
		SelfEmployed:    self,
		FormalNetChange: p.NetChangeBase + p.NetChangeSlope*float64(year-netChangeAnchor),
		InformalityRate: rate,
		Provenance:      dataset.Synthetic,
	}
}

// Normalizer converts aggregates payloads into sector tables.
type Normalizer struct {
	OccupiedVariable string // SIDRA variable holding occupied persons (thousands); first variable if empty
	Epoch            int
	Policies         []Policy
}

// New returns a Normalizer with the default sector policies.
func New(occupiedVariable string, epoch int) *Normalizer {
	if epoch == 0 {
		epoch = DefaultEpoch
	}
	return &Normalizer{OccupiedVariable: occupiedVariable, Epoch: epoch, Policies: DefaultPolicies}
}

// Result is the output of one normalization.
type Result struct {
	Tables  map[dataset.Sector][]dataset.SectorRecord
	Dropped map[dataset.Sector][]int // years without a usable value
	Matched map[dataset.Sector]int   // payload series recognized per sector
}

// Table returns the records of one sector.
func (r Result) Table(s dataset.Sector) []dataset.SectorRecord {
	return r.Tables[s]
}

var errNoVariables = errors.New("payload has no variables")

// Normalize builds one record per sector and year in [Epoch, currentYear].
// Years without a value are dropped, not interpolated. A sector without any
// usable year makes the whole call fail with a *dataset.ParseError.
func (n *Normalizer) Normalize(payload json.RawMessage, currentYear int) (Result, error) {
	var vars []sidraVariable
	if err := json.Unmarshal(payload, &vars); err != nil {
		return Result{}, &dataset.ParseError{Source: "ibge aggregates", Err: err}
	}
	if len(vars) == 0 {
		return Result{}, &dataset.ParseError{Source: "ibge aggregates", Err: errNoVariables}
	}

	variable, err := n.occupied(vars)
	if err != nil {
		return Result{}, err
	}

	yearly, matched, err := n.categorize(variable)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Tables:  make(map[dataset.Sector][]dataset.SectorRecord, len(n.Policies)),
		Dropped: make(map[dataset.Sector][]int, len(n.Policies)),
		Matched: matched,
	}
	years := dataset.YearRange{Start: n.Epoch, End: currentYear}
	for _, p := range n.Policies {
		values := yearly[p.Sector]
		table := make([]dataset.SectorRecord, 0, len(years.Years()))
		for _, y := range years.Years() {
			v, ok := values[y]
			if !ok {
				res.Dropped[p.Sector] = append(res.Dropped[p.Sector], y)
				continue
			}
			// a API publica milhares de pessoas; as tabelas usam milhões
			table = append(table, p.Record(y, n.Epoch, v/1000))
		}
		if len(table) == 0 {
			return Result{}, &dataset.ParseError{
				Source: "ibge aggregates",
				Err:    fmt.Errorf("no usable observation for sector %s in %s", p.Sector, years),
			}
		}
		res.Tables[p.Sector] = table
	}
	return res, nil
}

func (n *Normalizer) occupied(vars []sidraVariable) (sidraVariable, error) {
	if n.OccupiedVariable == "" {
		return vars[0], nil
	}
	for _, v := range vars {
		if v.ID == n.OccupiedVariable {
			return v, nil
		}
	}
	return sidraVariable{}, &dataset.ParseError{
		Source: "ibge aggregates",
		Err:    fmt.Errorf("variable %s not found in payload", n.OccupiedVariable),
	}
}

// categorize assigns each series of the variable to a sector and reduces it
// to yearly values. The first series recognized for a sector is kept; later
// ones only count toward Matched.
func (n *Normalizer) categorize(v sidraVariable) (map[dataset.Sector]map[int]float64, map[dataset.Sector]int, error) {
	yearly := make(map[dataset.Sector]map[int]float64, len(n.Policies))
	matched := make(map[dataset.Sector]int, len(n.Policies))

	for _, r := range v.Resultados {
		for _, s := range r.Series {
			labels := s.labels(r)
			for _, p := range n.Policies {
				if !matchesAny(labels, p.Keyword) {
					continue
				}
				matched[p.Sector]++
				if _, done := yearly[p.Sector]; done {
					continue
				}
				values, err := yearlyValues(s.Serie)
				if err != nil {
					return nil, nil, &dataset.ParseError{Source: "ibge aggregates", Err: err}
				}
				yearly[p.Sector] = values
			}
		}
	}
	return yearly, matched, nil
}

func matchesAny(labels []string, keyword string) bool {
	for _, l := range labels {
		if dataset.ContainsFolded(l, keyword) {
			return true
		}
	}
	return false
}
