package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/privml/classattack/internal/frame"
)

// #region artifact

type mlpArtifact struct {
	Layers []struct {
		// Weights is out x in, matching the exported torch.nn.Linear shape.
		Weights [][]float64 `json:"weights"`
		Bias    []float64   `json:"bias"`
	} `json:"layers"`
}

// #endregion artifact

// #region mlp

type denseLayer struct {
	weights *mat.Dense // out x in
	bias    []float64
}

// MLP is a feed-forward network with ReLU hidden activations; the predicted
// label is the argmax over the final layer's logits.
type MLP struct {
	layers []denseLayer
}

// LoadMLP decodes an exported network artifact.
func LoadMLP(data []byte) (*MLP, error) {
	var art mlpArtifact
	if err := decode(data, &art, "mlp"); err != nil {
		return nil, err
	}
	if len(art.Layers) == 0 {
		return nil, fmt.Errorf("mlp artifact: no layers")
	}

	layers := make([]denseLayer, len(art.Layers))
	prevOut := -1
	for i, l := range art.Layers {
		w, err := denseFromRows(l.Weights)
		if err != nil {
			return nil, fmt.Errorf("mlp artifact: layer %d: %w", i, err)
		}
		out, in := w.Dims()
		if len(l.Bias) != out {
			return nil, fmt.Errorf("mlp artifact: layer %d has %d bias terms for %d outputs", i, len(l.Bias), out)
		}
		if prevOut >= 0 && in != prevOut {
			return nil, fmt.Errorf("mlp artifact: layer %d takes %d inputs, previous layer emits %d", i, in, prevOut)
		}
		prevOut = out
		layers[i] = denseLayer{weights: w, bias: l.Bias}
	}
	return &MLP{layers: layers}, nil
}

// NumFeatures returns the expected input width.
func (m *MLP) NumFeatures() int {
	_, in := m.layers[0].weights.Dims()
	return in
}

// Predict runs the forward pass over the whole batch.
func (m *MLP) Predict(f *frame.Frame) ([]int, error) {
	if err := checkWidth(f, m.NumFeatures(), "mlp"); err != nil {
		return nil, err
	}

	var act mat.Dense
	act.CloneFrom(f.Matrix())
	for i, layer := range m.layers {
		var next mat.Dense
		next.Mul(&act, layer.weights.T())
		addBias(&next, layer.bias)
		if i < len(m.layers)-1 {
			relu(&next)
		}
		act = next
	}
	return argmaxRows(&act), nil
}

func relu(d *mat.Dense) {
	rows, cols := d.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if d.At(i, j) < 0 {
				d.Set(i, j, 0)
			}
		}
	}
}

// #endregion mlp
