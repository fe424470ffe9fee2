package store

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/Duddu64/economia/internal/dataset"
)

// JoinedRecord is one year of both sector tables side by side, as offered for
// download.
type JoinedRecord struct {
	Year int `csv:"ano"`

	TotalOccupiedC   float64            `csv:"total de ocupados pnad milhoes construcao"`
	WithContractC    float64            `csv:"empregados com carteira pnad milhoes construcao"`
	WithoutContractC float64            `csv:"empregados sem carteira pnad milhoes construcao"`
	SelfEmployedC    float64            `csv:"conta propria pnad milhoes construcao"`
	FormalNetChangeC float64            `csv:"saldo formal caged mil construcao"`
	InformalityRateC float64            `csv:"taxa de informalidade setorial construcao"`
	ProvenanceC      dataset.Provenance `csv:"proveniencia construcao"`

	TotalOccupiedI   float64            `csv:"total de ocupados pnad milhoes imob"`
	WithContractI    float64            `csv:"empregados com carteira pnad milhoes imob"`
	WithoutContractI float64            `csv:"empregados sem carteira pnad milhoes imob"`
	SelfEmployedI    float64            `csv:"conta propria pnad milhoes imob"`
	FormalNetChangeI float64            `csv:"saldo formal caged mil imob"`
	InformalityRateI float64            `csv:"taxa de informalidade setorial imob"`
	ProvenanceI      dataset.Provenance `csv:"proveniencia imob"`
}

// JoinHeader is the header of the joined table: the sector columns suffixed
// with the sector they come from.
func JoinHeader() []string {
	header := []string{dataset.Header[0]}
	for _, s := range dataset.Sectors {
		for _, h := range dataset.Header[1:] {
			header = append(header, h+s.ColumnSuffix())
		}
	}
	return header
}

// Join pairs the construction and real estate records of the same year.
// Years missing from either table are left out.
func Join(construction, realEstate []dataset.SectorRecord) []JoinedRecord {
	rows := dataset.JoinSectors(construction, realEstate, dataset.Inner)
	out := make([]JoinedRecord, 0, len(rows))
	for _, r := range rows {
		c, i := r.Left, *r.Right
		out = append(out, JoinedRecord{
			Year:             r.Year,
			TotalOccupiedC:   c.TotalOccupied,
			WithContractC:    c.WithContract,
			WithoutContractC: c.WithoutContract,
			SelfEmployedC:    c.SelfEmployed,
			FormalNetChangeC: c.FormalNetChange,
			InformalityRateC: c.InformalityRate,
			ProvenanceC:      c.Provenance,
			TotalOccupiedI:   i.TotalOccupied,
			WithContractI:    i.WithContract,
			WithoutContractI: i.WithoutContract,
			SelfEmployedI:    i.SelfEmployed,
			FormalNetChangeI: i.FormalNetChange,
			InformalityRateI: i.InformalityRate,
			ProvenanceI:      i.Provenance,
		})
	}
	return out
}

// EncodeJoin writes the joined table as CSV.
func EncodeJoin(w io.Writer, rows []JoinedRecord) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(JoinHeader()); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	if err := gocsv.MarshalCSVWithoutHeaders(&rows, csvWriter); err != nil {
		return fmt.Errorf("error writing joined rows: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
