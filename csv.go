package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// toCSVFile dumps in into path under the given header. The header is written
// by hand: gocsv would print the normalized column names.
func toCSVFile(in interface{}, header []string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file(%s):%q", path, err)
	}
	defer f.Close()

	csvWriter := csv.NewWriter(f)
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("error writing CSV header(%s):%q", path, err)
	}
	if err := gocsv.MarshalCSVWithoutHeaders(in, csvWriter); err != nil {
		return fmt.Errorf("error writing CSV rows(%s):%q", path, err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
