package frame

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// #region frame
// Frame is an ordered table of numeric feature columns. Each row carries an
// integer identity (the original dataset index), which survives replication
// so perturbed copies can be grouped back to their source sample.
type Frame struct {
	cols []string
	ids  []int
	data *mat.Dense
}

// New builds a frame from row-major values.
func New(cols []string, ids []int, values []float64) (*Frame, error) {
	if len(ids) == 0 || len(cols) == 0 {
		return nil, fmt.Errorf("frame: empty dimensions (%d rows, %d cols)", len(ids), len(cols))
	}
	if len(values) != len(ids)*len(cols) {
		return nil, fmt.Errorf("frame: %d values for %dx%d", len(values), len(ids), len(cols))
	}
	return &Frame{
		cols: append([]string(nil), cols...),
		ids:  append([]int(nil), ids...),
		data: mat.NewDense(len(ids), len(cols), append([]float64(nil), values...)),
	}, nil
}

// #endregion frame

// #region accessors

// Rows returns the number of rows.
func (f *Frame) Rows() int { return len(f.ids) }

// Cols returns the number of columns.
func (f *Frame) Cols() int { return len(f.cols) }

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string { return append([]string(nil), f.cols...) }

// Identity returns a copy of the per-row identity slice.
func (f *Frame) Identity() []int { return append([]int(nil), f.ids...) }

// Matrix exposes the backing matrix for predictors. Callers must not mutate it.
func (f *Frame) Matrix() *mat.Dense { return f.data }

// Row copies row i into buf (allocated when nil) and returns it.
func (f *Frame) Row(buf []float64, i int) []float64 {
	return mat.Row(buf, i, f.data)
}

// At returns the value at row i, column j.
func (f *Frame) At(i, j int) float64 { return f.data.At(i, j) }

// #endregion accessors

// #region clone

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := mat.NewDense(f.Rows(), f.Cols(), nil)
	out.Copy(f.data)
	return &Frame{
		cols: append([]string(nil), f.cols...),
		ids:  append([]int(nil), f.ids...),
		data: out,
	}
}

// #endregion clone

// #region replicate

// Replicate concatenates n copies of the frame, preserving each row's
// identity across all copies. The result has n * Rows() rows.
func (f *Frame) Replicate(n int) (*Frame, error) {
	if n < 1 {
		return nil, fmt.Errorf("frame: replicate count %d", n)
	}
	rows, cols := f.Rows(), f.Cols()
	ids := make([]int, 0, n*rows)
	out := mat.NewDense(n*rows, cols, nil)
	for c := 0; c < n; c++ {
		ids = append(ids, f.ids...)
		out.Slice(c*rows, (c+1)*rows, 0, cols).(*mat.Dense).Copy(f.data)
	}
	return &Frame{cols: append([]string(nil), f.cols...), ids: ids, data: out}, nil
}

// #endregion replicate

// #region extend

// ExtendColumns appends extra zero-filled synthetic columns, named
// continuing the f<N> sequence past the existing columns.
func (f *Frame) ExtendColumns(extra int) (*Frame, error) {
	if extra < 0 {
		return nil, fmt.Errorf("frame: extend by %d columns", extra)
	}
	rows, cols := f.Rows(), f.Cols()
	out := mat.NewDense(rows, cols+extra, nil)
	out.Slice(0, rows, 0, cols).(*mat.Dense).Copy(f.data)

	names := append([]string(nil), f.cols...)
	for i := 0; i < extra; i++ {
		names = append(names, fmt.Sprintf("f%d", cols+i))
	}
	return &Frame{cols: names, ids: append([]int(nil), f.ids...), data: out}, nil
}

// #endregion extend

// #region randomize

// RandomizeAll overwrites every cell with an independent uniform draw in [-1, 1).
func (f *Frame) RandomizeAll(rng *rand.Rand) {
	rows, cols := f.Rows(), f.Cols()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			f.data.Set(i, j, rng.Float64()*2-1)
		}
	}
}

// RandomizeColumns overwrites only the named columns with uniform draws in [-1, 1).
func (f *Frame) RandomizeColumns(rng *rand.Rand, cols []string) error {
	idx, err := f.columnIndices(cols)
	if err != nil {
		return err
	}
	for i := 0; i < f.Rows(); i++ {
		for _, j := range idx {
			f.data.Set(i, j, rng.Float64()*2-1)
		}
	}
	return nil
}

// #endregion randomize

// #region select

// Select returns a projection of the frame restricted to the named columns,
// in the given order, preserving row identity.
func (f *Frame) Select(cols []string) (*Frame, error) {
	idx, err := f.columnIndices(cols)
	if err != nil {
		return nil, err
	}
	rows := f.Rows()
	out := mat.NewDense(rows, len(idx), nil)
	for i := 0; i < rows; i++ {
		for k, j := range idx {
			out.Set(i, k, f.data.At(i, j))
		}
	}
	return &Frame{
		cols: append([]string(nil), cols...),
		ids:  append([]int(nil), f.ids...),
		data: out,
	}, nil
}

func (f *Frame) columnIndices(cols []string) ([]int, error) {
	pos := make(map[string]int, len(f.cols))
	for j, name := range f.cols {
		pos[name] = j
	}
	idx := make([]int, len(cols))
	for k, name := range cols {
		j, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("frame: unknown column %q", name)
		}
		idx[k] = j
	}
	return idx, nil
}

// #endregion select

// #region grouping

// GroupRows maps each identity to the row indices that carry it, in row order.
func (f *Frame) GroupRows() map[int][]int {
	groups := make(map[int][]int)
	for i, id := range f.ids {
		groups[id] = append(groups[id], i)
	}
	return groups
}

// #endregion grouping
