// Package dataset reads raw tables and persists numeric matrices.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mikey/loan-predictor/internal/core"
)

// ReadCSV parses a CSV stream with a header row into a table.
func ReadCSV(r io.Reader) (core.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return core.Table{}, fmt.Errorf("csv has no header row")
	}
	if err != nil {
		return core.Table{}, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.Table{}, fmt.Errorf("failed to read csv row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, record)
	}

	return core.NewTable(header, rows)
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return core.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
