package dataset

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// NetworkError reports a remote call that timed out, could not connect or
// answered with a non-success status.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("error calling %s (%s): status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("error calling %s (%s): %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the call failed because the time bound expired.
func (e *NetworkError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ParseError reports a payload that is not valid JSON or does not have the
// expected shape.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingDatasetError is returned when no variant of the sector tables can be read.
type MissingDatasetError struct {
	Files []string
}

func (e *MissingDatasetError) Error() string {
	return fmt.Sprintf("dataset not found: missing %s", strings.Join(e.Files, ", "))
}

// PartialDataWarning marks an optional table that was not found. It travels
// with the loaded data and is never returned as an error.
type PartialDataWarning struct {
	File string
}

func (w PartialDataWarning) String() string {
	return fmt.Sprintf("optional table %s not found, related analysis unavailable", w.File)
}
