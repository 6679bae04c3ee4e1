package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/privml/classattack/internal/dataset"
	"github.com/privml/classattack/internal/frame"
)

// #region kind

// Kind selects one of the interchangeable predictor variants.
type Kind string

const (
	KindForest Kind = "rf"  // tree ensemble
	KindLinear Kind = "lr"  // multinomial logistic
	KindMLP    Kind = "dnn" // feed-forward network
)

// ParseKind validates a CLI model-type string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindForest, KindLinear, KindMLP:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("model: unknown kind %q (want rf, lr or dnn)", s)
	}
}

// #endregion kind

// #region predictor

// Predictor is the single contract shared by all model variants: a batch of
// samples in, one class label per row out.
type Predictor interface {
	Predict(f *frame.Frame) ([]int, error)
	NumFeatures() int
}

// #endregion predictor

// #region load

// Load reads the serialized predictor of the given kind from the dataset's
// model directory.
func Load(spec dataset.Spec, kind Kind) (Predictor, error) {
	path := spec.ModelPath(string(kind))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	switch kind {
	case KindForest:
		return LoadForest(data)
	case KindLinear:
		return LoadLinear(data)
	case KindMLP:
		return LoadMLP(data)
	default:
		return nil, fmt.Errorf("load model: unknown kind %q", kind)
	}
}

func decode(data []byte, v interface{}, what string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s artifact: %w", what, err)
	}
	return nil
}

func checkWidth(f *frame.Frame, want int, what string) error {
	if f.Cols() != want {
		return fmt.Errorf("%s: input has %d features, model expects %d", what, f.Cols(), want)
	}
	return nil
}

// #endregion load
