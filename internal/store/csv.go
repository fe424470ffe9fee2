package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/Duddu64/economia/internal/dataset"
)

func init() {
	// Os cabeçalhos em português têm acentos, vírgulas e parênteses; as tags
	// das structs usam a forma normalizada.
	gocsv.SetHeaderNormalizer(dataset.Fold)
}

func readSectorFile(path string) ([]dataset.SectorRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening table (%s): %w", path, err)
	}
	defer f.Close()

	records, err := decodeSector(f)
	if err != nil {
		return nil, &dataset.ParseError{Source: path, Err: err}
	}
	return records, nil
}

func decodeSector(r io.Reader) ([]dataset.SectorRecord, error) {
	var records []dataset.SectorRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, err
	}
	for i := range records {
		// tabelas sem a coluna de proveniência são dados medidos
		if records[i].Provenance == "" {
			records[i].Provenance = dataset.Measured
		}
	}
	dataset.SortByYear(records)
	if dups := dataset.DuplicateYears(records); len(dups) > 0 {
		return nil, fmt.Errorf("duplicated years %v", dups)
	}
	return records, nil
}

func readFGTSFile(path string) ([]dataset.FGTSContribution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []dataset.FGTSContribution
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []dataset.FGTSContribution{}, nil
		}
		return nil, &dataset.ParseError{Source: path, Err: err}
	}
	dataset.SortByYear(rows)
	if rows == nil {
		rows = []dataset.FGTSContribution{}
	}
	return rows, nil
}

// encodeSector writes the Portuguese header row followed by records.
func encodeSector(w io.Writer, records []dataset.SectorRecord) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(dataset.Header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	if err := gocsv.MarshalCSVWithoutHeaders(&records, csvWriter); err != nil {
		return fmt.Errorf("error writing records: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// EncodeFGTS writes an FGTS table in the layout of fgts_arrecadacao.csv.
func EncodeFGTS(w io.Writer, rows []dataset.FGTSContribution) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(dataset.FGTSHeader); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	if err := gocsv.MarshalCSVWithoutHeaders(&rows, csvWriter); err != nil {
		return fmt.Errorf("error writing rows: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// writeTemp writes records into a temporary sibling of target and returns
// its path.
func writeTemp(target string, records []dataset.SectorRecord) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("error creating temporary file for (%s): %w", target, err)
	}
	tmp := f.Name()

	if err := encodeSector(f, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("error writing CSV file(%s): %w", target, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("error syncing CSV file(%s): %w", target, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("error closing CSV file(%s): %w", target, err)
	}
	return tmp, nil
}

type swap struct {
	tmp    string
	target string
	backup string // previous target, empty if there was none
}

// commit moves every tmp onto its target. Existing targets are set aside
// first and put back if any rename fails.
func commit(pending []swap) error {
	for i := range pending {
		p := &pending[i]
		if _, err := os.Stat(p.target); err == nil {
			p.backup = p.target + ".bak"
			if err := os.Rename(p.target, p.backup); err != nil {
				p.backup = ""
				rollback(pending[:i])
				return fmt.Errorf("error setting aside (%s): %w", p.target, err)
			}
		}
	}

	for i, p := range pending {
		if err := os.Rename(p.tmp, p.target); err != nil {
			for _, done := range pending[:i] {
				os.Remove(done.target)
			}
			rollback(pending)
			return fmt.Errorf("error replacing (%s): %w", p.target, err)
		}
	}

	for _, p := range pending {
		if p.backup != "" {
			os.Remove(p.backup)
		}
	}
	return nil
}

func rollback(pending []swap) {
	for _, p := range pending {
		if p.backup != "" {
			os.Rename(p.backup, p.target)
		}
	}
}
