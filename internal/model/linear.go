package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/privml/classattack/internal/frame"
)

// #region artifact

type linearArtifact struct {
	// Weights is classes x features; Bias has one entry per class.
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// #endregion artifact

// #region linear

// Linear scores xW^T + b per class and predicts the argmax.
type Linear struct {
	weights *mat.Dense // classes x features
	bias    []float64
}

// LoadLinear decodes a linear-model artifact.
func LoadLinear(data []byte) (*Linear, error) {
	var art linearArtifact
	if err := decode(data, &art, "linear"); err != nil {
		return nil, err
	}
	w, err := denseFromRows(art.Weights)
	if err != nil {
		return nil, fmt.Errorf("linear artifact: %w", err)
	}
	classes, _ := w.Dims()
	if classes < 2 {
		return nil, fmt.Errorf("linear artifact: %d classes", classes)
	}
	if len(art.Bias) != classes {
		return nil, fmt.Errorf("linear artifact: %d bias terms for %d classes", len(art.Bias), classes)
	}
	return &Linear{weights: w, bias: art.Bias}, nil
}

// NumFeatures returns the expected input width.
func (m *Linear) NumFeatures() int {
	_, features := m.weights.Dims()
	return features
}

// Predict computes class scores for the whole batch and takes the per-row argmax.
func (m *Linear) Predict(f *frame.Frame) ([]int, error) {
	if err := checkWidth(f, m.NumFeatures(), "linear"); err != nil {
		return nil, err
	}

	var scores mat.Dense
	scores.Mul(f.Matrix(), m.weights.T())
	addBias(&scores, m.bias)
	return argmaxRows(&scores), nil
}

// #endregion linear

// #region matrix-helpers

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty weight matrix")
	}
	cols := len(rows[0])
	values := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("weight row %d has %d entries, want %d", i, len(row), cols)
		}
		values = append(values, row...)
	}
	return mat.NewDense(len(rows), cols, values), nil
}

func addBias(scores *mat.Dense, bias []float64) {
	rows, cols := scores.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			scores.Set(i, j, scores.At(i, j)+bias[j])
		}
	}
}

func argmaxRows(scores *mat.Dense) []int {
	rows, cols := scores.Dims()
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		best, bestScore := 0, scores.At(i, 0)
		for j := 1; j < cols; j++ {
			if s := scores.At(i, j); s > bestScore {
				best, bestScore = j, s
			}
		}
		out[i] = best
	}
	return out
}

// #endregion matrix-helpers
