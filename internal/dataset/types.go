// Package dataset holds the employment tables the dashboard works on and the
// pure operations over them: year filters, joins, rolling means and the
// correlation used by the FGTS analysis.
package dataset

import (
	"fmt"
	"time"
)

// Sector identifies one of the two tables of the dashboard.
type Sector int

const (
	Construction Sector = iota
	RealEstate
)

// Sectors lists every sector in file order (tabela1, tabela2).
var Sectors = []Sector{Construction, RealEstate}

func (s Sector) String() string {
	switch s {
	case Construction:
		return "construcao"
	case RealEstate:
		return "imobiliario"
	}
	return fmt.Sprintf("sector(%d)", int(s))
}

// Label is the name shown on charts and sidebar filters.
func (s Sector) Label() string {
	switch s {
	case Construction:
		return "Construção Civil"
	case RealEstate:
		return "Atividades Imobiliárias"
	}
	return s.String()
}

// FileBase is the file name of the sector table without variant suffix and extension.
func (s Sector) FileBase() string {
	switch s {
	case Construction:
		return "tabela1_construcao_civil"
	case RealEstate:
		return "tabela2_atividades_imobiliarias"
	}
	return s.String()
}

// ColumnSuffix is appended to column names when both sectors share one table.
func (s Sector) ColumnSuffix() string {
	switch s {
	case Construction:
		return "_construcao"
	case RealEstate:
		return "_imob"
	}
	return "_" + s.String()
}

// ParseSector accepts the sector key or its label, ignoring accents and case.
func ParseSector(name string) (Sector, error) {
	key := Fold(name)
	for _, s := range Sectors {
		if key == s.String() || key == Fold(s.Label()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown sector %q", name)
}

// Provenance tells whether a record was measured by the source survey or
// filled in by the normalizer's formulas.
type Provenance string

const (
	Measured  Provenance = "medido"
	Synthetic Provenance = "sintetico"
)

// MarshalCSV implements gocsv.TypeMarshaller.
func (p Provenance) MarshalCSV() (string, error) {
	if p == "" {
		return string(Measured), nil
	}
	return string(p), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller. Bundled tables carry no
// provenance column and are read as measured.
func (p *Provenance) UnmarshalCSV(s string) error {
	switch Fold(s) {
	case "", string(Measured):
		*p = Measured
	case string(Synthetic):
		*p = Synthetic
	default:
		return fmt.Errorf("invalid provenance %q", s)
	}
	return nil
}

// SectorRecord is one year of one sector.
type SectorRecord struct {
	Year            int        `csv:"ano" json:"ano"`
	TotalOccupied   float64    `csv:"total de ocupados pnad milhoes" json:"total_ocupados"`     // milhões
	WithContract    float64    `csv:"empregados com carteira pnad milhoes" json:"com_carteira"` // milhões
	WithoutContract float64    `csv:"empregados sem carteira pnad milhoes" json:"sem_carteira"` // milhões
	SelfEmployed    float64    `csv:"conta propria pnad milhoes" json:"conta_propria"`          // milhões
	FormalNetChange float64    `csv:"saldo formal caged mil" json:"saldo_formal"`               // mil
	InformalityRate float64    `csv:"taxa de informalidade setorial" json:"taxa_informalidade"` // %
	Provenance      Provenance `csv:"proveniencia" json:"proveniencia"`
}

// YearKey implements Yearly.
func (r SectorRecord) YearKey() int { return r.Year }

// IsSynthetic reports whether any field of the record came from a formula.
func (r SectorRecord) IsSynthetic() bool { return r.Provenance == Synthetic }

// Header is the column header of the sector tables, in file order.
var Header = []string{
	"Ano",
	"Total de Ocupados (PNAD, milhões)",
	"Empregados com Carteira (PNAD, milhões)",
	"Empregados sem Carteira (PNAD, milhões)",
	"Conta Própria (PNAD, milhões)",
	"Saldo Formal (CAGED, mil)",
	"Taxa de Informalidade Setorial (%)",
	"Proveniência",
}

// FGTSContribution is the yearly gross FGTS collection.
type FGTSContribution struct {
	Year            int     `csv:"ano" json:"ano"`
	GrossCollection float64 `csv:"arrecadacao bruta r bilhoes" json:"arrecadacao_bruta"` // R$ bilhões
}

// YearKey implements Yearly.
func (c FGTSContribution) YearKey() int { return c.Year }

// FGTSHeader is the column header of fgts_arrecadacao.csv.
var FGTSHeader = []string{"Ano", "Arrecadacao_Bruta_R_Bilhoes"}

// InterestRateObservation is one monthly value of a Banco Central series.
type InterestRateObservation struct {
	Date  time.Time `json:"data"`
	Value float64   `json:"valor"` // % a.m.
}

// Yearly is implemented by every row keyed by year.
type Yearly interface {
	YearKey() int
}

// YearRange is an inclusive range of years.
type YearRange struct {
	Start int `json:"inicio"`
	End   int `json:"fim"`
}

// Valid reports whether Start <= End.
func (r YearRange) Valid() bool { return r.Start <= r.End }

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool { return year >= r.Start && year <= r.End }

// Years lists every year of the range in ascending order.
func (r YearRange) Years() []int {
	if !r.Valid() {
		return nil
	}
	years := make([]int, 0, r.End-r.Start+1)
	for y := r.Start; y <= r.End; y++ {
		years = append(years, y)
	}
	return years
}

func (r YearRange) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// Span returns the range covering the first and last year of records,
// which must be sorted by year. ok is false for an empty slice.
func Span[T Yearly](records []T) (r YearRange, ok bool) {
	if len(records) == 0 {
		return YearRange{}, false
	}
	return YearRange{Start: records[0].YearKey(), End: records[len(records)-1].YearKey()}, true
}
