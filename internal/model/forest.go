package model

import (
	"fmt"

	"github.com/privml/classattack/internal/frame"
)

// #region artifact

// TreeNode is one node of a decision tree in node-array form. Internal nodes
// route on Feature against Threshold; leaves carry Feature == -1 and a Label.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Label     int     `json:"label"`
}

type forestArtifact struct {
	NumFeatures int          `json:"num_features"`
	Trees       [][]TreeNode `json:"trees"`
}

// #endregion artifact

// #region forest

// Forest is a majority-vote ensemble of decision trees.
type Forest struct {
	numFeatures int
	trees       [][]TreeNode
}

// LoadForest decodes a forest artifact.
func LoadForest(data []byte) (*Forest, error) {
	var art forestArtifact
	if err := decode(data, &art, "forest"); err != nil {
		return nil, err
	}
	if art.NumFeatures <= 0 || len(art.Trees) == 0 {
		return nil, fmt.Errorf("forest artifact: %d features, %d trees", art.NumFeatures, len(art.Trees))
	}
	for ti, tree := range art.Trees {
		if len(tree) == 0 {
			return nil, fmt.Errorf("forest artifact: tree %d is empty", ti)
		}
		for ni, n := range tree {
			if n.Feature >= art.NumFeatures {
				return nil, fmt.Errorf("forest artifact: tree %d node %d routes on feature %d", ti, ni, n.Feature)
			}
			if n.Feature >= 0 && (n.Left < 0 || n.Left >= len(tree) || n.Right < 0 || n.Right >= len(tree)) {
				return nil, fmt.Errorf("forest artifact: tree %d node %d has bad children", ti, ni)
			}
		}
	}
	return &Forest{numFeatures: art.NumFeatures, trees: art.Trees}, nil
}

// NumFeatures returns the expected input width.
func (m *Forest) NumFeatures() int { return m.numFeatures }

// Predict routes each row through every tree and majority-votes the leaf
// labels. Ties break toward the lowest label.
func (m *Forest) Predict(f *frame.Frame) ([]int, error) {
	if err := checkWidth(f, m.numFeatures, "forest"); err != nil {
		return nil, err
	}

	out := make([]int, f.Rows())
	buf := make([]float64, f.Cols())
	for i := range out {
		row := f.Row(buf, i)
		votes := make(map[int]int)
		for _, tree := range m.trees {
			votes[classify(tree, row)]++
		}
		out[i] = majority(votes)
	}
	return out, nil
}

func classify(tree []TreeNode, row []float64) int {
	n := tree[0]
	for n.Feature >= 0 {
		if row[n.Feature] <= n.Threshold {
			n = tree[n.Left]
		} else {
			n = tree[n.Right]
		}
	}
	return n.Label
}

func majority(votes map[int]int) int {
	best, bestCount := 0, -1
	for label, count := range votes {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}
	return best
}

// #endregion forest
