// Package manual serves index values maintained by hand, or by scrapers outside this module, in
// CSV files.
//
// A file holds one or more series, one row per month:
//
//	Período;Valor
//	01/2024;1.234,56
//	2024-02;1.240,10
//
// The series "CSV-INCC" is the column "Valor" of INCC.csv, and "CSV-SINDUSCON-MG/R-8-N" is the
// column "R-8-N" of SINDUSCON-MG.csv.
package manual

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/indices"
	"github.com/shopspring/decimal"
)

// Prefix of the series ids served by a Dir.
const Prefix = "CSV"

// DefaultColumn is the column read when the id does not name one.
const DefaultColumn = "Valor"

const periodColumn = "Período"

// Dir is an indices.Source reading CSV files in a directory.
type Dir string

// Fetch implements indices.Source.
func (d Dir) Fetch(_ context.Context, id string, m indices.Month) (float64, error) {
	name, column, err := parseID(id)
	if err != nil {
		return 0, err
	}
	table, err := d.Table(name)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", id, err)
	}
	v, err := table.Value(column, m)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", id, err)
	}
	return v, nil
}

func parseID(id string) (name, column string, err error) {
	rest, ok := strings.CutPrefix(id, Prefix+"-")
	if !ok || rest == "" {
		return "", "", fmt.Errorf("invalid CSV series %q: must be %s-<file>[/<column>]", id, Prefix)
	}
	name, column, _ = strings.Cut(rest, "/")
	if column == "" {
		column = DefaultColumn
	}
	return name, column, nil
}

// Table reads the file of the series name.
func (d Dir) Table(name string) (*Table, error) {
	f, err := os.Open(filepath.Join(string(d), name+".csv"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no file for %q: %w", name, indices.ErrNotYetPublished)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTable(f)
}

// Table is a parsed CSV file.
type Table struct {
	Columns []string
	rows    map[indices.Month][]string
}

// ParseTable reads a semicolon separated table whose first column is the month.
func ParseTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 2 || strings.TrimPrefix(header[0], "\ufeff") != periodColumn {
		return nil, fmt.Errorf("invalid header %v: must start with %q and name at least one column", header, periodColumn)
	}
	t := &Table{Columns: header[1:], rows: make(map[indices.Month][]string)}

	var errs error
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		m, err := indices.ParseMonth(strings.TrimSpace(record[0]))
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if _, dup := t.rows[m]; dup {
			errs = errors.Join(errs, fmt.Errorf("line %d: duplicate period %v", line, m))
			continue
		}
		t.rows[m] = record[1:]
	}
	if errs != nil {
		return nil, errs
	}
	return t, nil
}

// Value returns the number in column for month m.
func (t *Table) Value(column string, m indices.Month) (float64, error) {
	col := -1
	for i, c := range t.Columns {
		if c == column {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, fmt.Errorf("no column %q", column)
	}
	row, ok := t.rows[m]
	if !ok || col >= len(row) || strings.TrimSpace(row[col]) == "" {
		return 0, fmt.Errorf("%v: %w", m, indices.ErrNotYetPublished)
	}
	d, err := ParseNumber(row[col])
	if err != nil {
		return 0, fmt.Errorf("%v: %w", m, err)
	}
	return d.InexactFloat64(), nil
}

// ParseNumber parses a number written with a decimal comma, like "1.234,56", or with a
// decimal point, like "1234.56".
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}
