package dataset

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/privml/classattack/internal/frame"
)

// #region spec

// Spec identifies a dataset and the directory layout around it. The original
// measurement scripts hard-coded these as path strings; here they are explicit
// configuration passed to every consumer.
type Spec struct {
	Name        string // dataset folder name, e.g. "UCI_HAR"
	Classes     int    // number of activity classes
	DataRoot    string // root of per-dataset data folders
	ModelRoot   string // root of per-dataset model artifacts
	ResultsRoot string // root of per-dataset result tables
}

// DefaultSpec returns the UCI_HAR layout with 6 activity classes.
func DefaultSpec() Spec {
	return Spec{
		Name:        "UCI_HAR",
		Classes:     6,
		DataRoot:    "data",
		ModelRoot:   "models",
		ResultsRoot: "results",
	}
}

// TestDir returns the directory holding the test split.
func (s Spec) TestDir() string {
	return filepath.Join(s.DataRoot, s.Name, "test")
}

// ModelPath returns the artifact path for a model kind ("rf", "lr", "dnn").
func (s Spec) ModelPath(kind string) string {
	return filepath.Join(s.ModelRoot, s.Name, kind+".json")
}

// ResultsDir returns the directory for this dataset's report tables.
func (s Spec) ResultsDir() string {
	return filepath.Join(s.ResultsRoot, s.Name)
}

// #endregion spec

// #region split

// Split pairs a feature frame with its label vector.
type Split struct {
	X *frame.Frame
	Y []int
}

// LoadTestSplit reads X_test.txt and y_test.txt from the spec's test
// directory. Both files are whitespace-delimited; labels are 1-indexed on
// disk and shifted to 0-indexed here.
func LoadTestSplit(spec Spec) (*Split, error) {
	xPath := filepath.Join(spec.TestDir(), "X_test.txt")
	yPath := filepath.Join(spec.TestDir(), "y_test.txt")

	values, rows, cols, err := readMatrix(xPath)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	labels, err := readLabels(yPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	if len(labels) != rows {
		return nil, fmt.Errorf("load split: %d feature rows but %d labels", rows, len(labels))
	}

	names := make([]string, cols)
	ids := make([]int, rows)
	for j := range names {
		names[j] = fmt.Sprintf("f%d", j)
	}
	for i := range ids {
		ids[i] = i
	}

	x, err := frame.New(names, ids, values)
	if err != nil {
		return nil, fmt.Errorf("load split: %w", err)
	}
	return &Split{X: x, Y: labels}, nil
}

// #endregion split

// #region sample-users

// SampleUsers draws n distinct rows uniformly at random, preserving each
// row's original dataset index as its identity.
func (s *Split) SampleUsers(rng *rand.Rand, n int) (*Split, error) {
	rows := s.X.Rows()
	if n < 1 || n > rows {
		return nil, fmt.Errorf("sample users: n=%d with %d rows", n, rows)
	}

	picks := rng.Perm(rows)[:n]
	cols := s.X.Columns()
	ids := s.X.Identity()

	values := make([]float64, 0, n*len(cols))
	sampledIDs := make([]int, n)
	labels := make([]int, n)
	buf := make([]float64, len(cols))
	for k, i := range picks {
		values = append(values, s.X.Row(buf, i)...)
		sampledIDs[k] = ids[i]
		labels[k] = s.Y[i]
	}

	x, err := frame.New(cols, sampledIDs, values)
	if err != nil {
		return nil, fmt.Errorf("sample users: %w", err)
	}
	return &Split{X: x, Y: labels}, nil
}

// #endregion sample-users

// #region parsing

func readMatrix(path string) (values []float64, rows, cols int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if cols == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, 0, 0, fmt.Errorf("%s: row %d has %d fields, want %d", path, rows, len(fields), cols)
		}
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("%s: row %d: %w", path, rows, err)
			}
			values = append(values, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("%s: %w", path, err)
	}
	if rows == 0 {
		return nil, 0, 0, fmt.Errorf("%s: empty matrix", path)
	}
	return values, rows, cols, nil
}

func readLabels(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, len(labels), err)
		}
		labels = append(labels, v-1) // 1-indexed on disk
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%s: empty labels", path)
	}
	return labels, nil
}

// #endregion parsing
