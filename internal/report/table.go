package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// #region table

// Table is an in-memory report with a fixed column schema. Sweeps append one
// row per configuration; persistence happens at each sweep's flush points.
type Table struct {
	name    string
	columns []string
	rows    [][]string
}

// NewTable declares a report schema.
func NewTable(name string, columns ...string) *Table {
	return &Table{name: name, columns: append([]string(nil), columns...)}
}

// Name returns the report name (also used as the registry sweep label).
func (t *Table) Name() string { return t.name }

// Columns returns the schema in order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Len returns the number of rows appended so far.
func (t *Table) Len() int { return len(t.rows) }

// Append adds one row; arity must match the schema.
func (t *Table) Append(values ...string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("report %s: %d values for %d columns", t.name, len(values), len(t.columns))
	}
	t.rows = append(t.rows, append([]string(nil), values...))
	return nil
}

// Row returns row i as a column-name -> value map.
func (t *Table) Row(i int) map[string]string {
	m := make(map[string]string, len(t.columns))
	for j, col := range t.columns {
		m[col] = t.rows[i][j]
	}
	return m
}

// #endregion table

// #region formatting

// Itoa and Ftoa are the row-value formatters used by every sweep, so report
// files stay byte-comparable across runs.
func Itoa(v int) string { return strconv.Itoa(v) }

func Ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// #endregion formatting

// #region persistence

// WriteFile overwrites path with this table's header and rows.
func (t *Table) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report %s: %w", t.name, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report %s: %w", t.name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.columns); err != nil {
		return fmt.Errorf("report %s: write header: %w", t.name, err)
	}
	if err := w.WriteAll(t.rows); err != nil {
		return fmt.Errorf("report %s: write rows: %w", t.name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("report %s: %w", t.name, err)
	}
	return f.Close()
}

// AppendFile reads any existing report at path, appends this table's rows
// after the existing ones, and rewrites the file. A missing file is created
// with a header. The existing header must match this table's schema.
func (t *Table) AppendFile(path string) error {
	existing, err := readRows(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("report %s: %w", t.name, err)
		}
		return t.WriteFile(path)
	}
	if len(existing) == 0 {
		return t.WriteFile(path)
	}
	if !sameColumns(existing[0], t.columns) {
		return fmt.Errorf("report %s: existing header %v does not match schema %v", t.name, existing[0], t.columns)
	}

	merged := &Table{name: t.name, columns: t.columns}
	merged.rows = append(merged.rows, existing[1:]...)
	merged.rows = append(merged.rows, t.rows...)
	return merged.WriteFile(path)
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	return r.ReadAll()
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// #endregion persistence
