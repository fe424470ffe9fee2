// Package store keeps the sector tables as flat CSV files in one directory.
//
// Each sector has an "original" file bundled with the dashboard and an
// "updated" file written by the refresh pipeline. The FGTS table is optional.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Duddu64/economia/internal/dataset"
)

// Variant selects which copy of the sector tables is read.
type Variant int

const (
	Original Variant = iota
	Updated
)

func (v Variant) String() string {
	if v == Updated {
		return "updated"
	}
	return "original"
}

func (v Variant) suffix() string {
	if v == Updated {
		return "_updated"
	}
	return ""
}

// FGTSFile is the optional FGTS collection table.
const FGTSFile = "fgts_arrecadacao.csv"

// Tables is the content of one variant.
type Tables struct {
	Variant  Variant
	Sectors  map[dataset.Sector][]dataset.SectorRecord
	FGTS     []dataset.FGTSContribution // nil when the file is absent
	Warnings []dataset.PartialDataWarning
}

// Sector returns the records of s.
func (t Tables) Sector(s dataset.Sector) []dataset.SectorRecord {
	return t.Sectors[s]
}

// Store reads and writes the tables of a data directory.
type Store struct {
	dir string
	log *zap.Logger

	// beforeCommit runs after the temporary files are written and before
	// they replace the updated pair.
	beforeCommit func() error
}

// New creates a Store over dir.
func New(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, log: log}
}

// Dir is the data directory.
func (s *Store) Dir() string { return s.dir }

// Path is the file of a sector table in a variant.
func (s *Store) Path(sector dataset.Sector, v Variant) string {
	return filepath.Join(s.dir, sector.FileBase()+v.suffix()+".csv")
}

// FGTSPath is the file of the FGTS table.
func (s *Store) FGTSPath() string {
	return filepath.Join(s.dir, FGTSFile)
}

// Missing lists the sector files of v that do not exist.
func (s *Store) Missing(v Variant) []string {
	var missing []string
	for _, sector := range dataset.Sectors {
		p := s.Path(sector, v)
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			missing = append(missing, p)
		}
	}
	return missing
}

// Has reports whether every sector file of v exists.
func (s *Store) Has(v Variant) bool {
	return len(s.Missing(v)) == 0
}

// Read loads both sector tables of v and the FGTS table when present.
// Missing sector files yield a *dataset.MissingDatasetError.
func (s *Store) Read(v Variant) (Tables, error) {
	if missing := s.Missing(v); len(missing) > 0 {
		return Tables{}, &dataset.MissingDatasetError{Files: missing}
	}

	t := Tables{Variant: v, Sectors: make(map[dataset.Sector][]dataset.SectorRecord, len(dataset.Sectors))}
	for _, sector := range dataset.Sectors {
		records, err := readSectorFile(s.Path(sector, v))
		if err != nil {
			return Tables{}, err
		}
		t.Sectors[sector] = records
	}

	fgts, err := readFGTSFile(s.FGTSPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
		t.Warnings = append(t.Warnings, dataset.PartialDataWarning{File: FGTSFile})
		s.log.Info("optional table absent", zap.String("file", s.FGTSPath()))
	case err != nil:
		return Tables{}, err
	default:
		t.FGTS = fgts
	}

	s.log.Debug("tables read",
		zap.Stringer("variant", v),
		zap.Int("construcao", len(t.Sectors[dataset.Construction])),
		zap.Int("imobiliario", len(t.Sectors[dataset.RealEstate])),
		zap.Bool("fgts", t.FGTS != nil))
	return t, nil
}

// WriteUpdated replaces the updated pair with tables. Both files are written
// aside first; the previous pair is only touched once both are complete, and
// is restored if the swap fails.
func (s *Store) WriteUpdated(tables map[dataset.Sector][]dataset.SectorRecord) error {
	for _, sector := range dataset.Sectors {
		if len(tables[sector]) == 0 {
			return fmt.Errorf("error writing updated tables: sector %s has no records", sector)
		}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("error creating data folder (%s): %w", s.dir, err)
	}

	var pending []swap
	cleanup := func() {
		for _, p := range pending {
			os.Remove(p.tmp)
		}
	}
	for _, sector := range dataset.Sectors {
		target := s.Path(sector, Updated)
		tmp, err := writeTemp(target, tables[sector])
		if err != nil {
			cleanup()
			return err
		}
		pending = append(pending, swap{tmp: tmp, target: target})
	}

	if s.beforeCommit != nil {
		if err := s.beforeCommit(); err != nil {
			cleanup()
			return err
		}
	}
	if err := commit(pending); err != nil {
		cleanup()
		return err
	}
	s.log.Info("updated tables written", zap.String("dir", s.dir))
	return nil
}

// RemoveUpdated deletes the updated pair. Absent files are not an error.
func (s *Store) RemoveUpdated() error {
	for _, sector := range dataset.Sectors {
		p := s.Path(sector, Updated)
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error removing updated table (%s): %w", p, err)
		}
	}
	s.log.Info("updated tables removed", zap.String("dir", s.dir))
	return nil
}
