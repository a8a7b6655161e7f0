package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Table is a schema-less view of a loaded CSV: a header plus raw string
// rows. No column is mandatory; callers probe for what they need.
type Table struct {
	Source  string
	Columns []string

	rows  [][]string
	index map[string]int
}

// Load parses the CSV at path into a Table. A missing file surfaces as an
// error wrapping fs.ErrNotExist so callers can take the soft "not found"
// branch; a malformed file is a hard error.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	t := &Table{Source: filepath.Base(path), index: make(map[string]int)}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		t.Columns = append(t.Columns, name)
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}

	ncol := len(t.Columns)
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.rows)+2, err)
		}
		row := make([]string, ncol)
		copy(row, rec)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the table carries a column with the exact given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the raw values of the named column, or nil if absent.
func (t *Table) Column(name string) []string {
	idx, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out
}

// Row returns the raw values of row i.
func (t *Table) Row(i int) []string { return t.rows[i] }

// Numeric coerces the named column to float64, with NaN standing in for
// blank or unparsable cells. An absent column yields all NaN.
func (t *Table) Numeric(name string) []float64 {
	out := make([]float64, len(t.rows))
	idx, ok := t.index[name]
	for i := range t.rows {
		out[i] = math.NaN()
		if !ok {
			continue
		}
		v := strings.TrimSpace(t.rows[i][idx])
		if v == "" {
			continue
		}
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			out[i] = x
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "01/02/2006", "02/01/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006", "1/2/2006 15:04",
	"Jan 2, 2006", "2 Jan 2006",
}

// Dates coerces the named column to timestamps. The returned mask marks
// which rows parsed; unparseable entries are invalid, not errors.
func (t *Table) Dates(name string) ([]time.Time, []bool) {
	times := make([]time.Time, len(t.rows))
	valid := make([]bool, len(t.rows))
	idx, ok := t.index[name]
	if !ok {
		return times, valid
	}
	for i := range t.rows {
		v := strings.TrimSpace(t.rows[i][idx])
		if v == "" {
			continue
		}
		if ts, parsed := parseDate(v); parsed {
			times[i] = ts
			valid[i] = true
		}
	}
	return times, valid
}

func parseDate(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if ts, err := time.Parse(l, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
