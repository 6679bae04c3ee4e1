package attack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsistencyScoreSingleLabelGroups(t *testing.T) {
	// Three source rows replicated twice, one distinct label per group:
	// mean distinct = 1, score = 1/6*100.
	ids := []int{7, 8, 9, 7, 8, 9}
	preds := []int{3, 3, 3, 3, 3, 3}

	score, err := ConsistencyScore(ids, preds, 6)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/6.0, score, 1e-9)
}

func TestConsistencyScoreFullDiversity(t *testing.T) {
	// One group covering all 6 classes: score hits the 100 ceiling.
	ids := []int{4, 4, 4, 4, 4, 4}
	preds := []int{0, 1, 2, 3, 4, 5}

	score, err := ConsistencyScore(ids, preds, 6)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, score, 1e-9)
}

func TestConsistencyScoreMixedGroups(t *testing.T) {
	// Group 1 has 2 distinct labels, group 2 has 1: mean 1.5, /6*100 = 25.
	ids := []int{1, 1, 2, 2}
	preds := []int{0, 5, 3, 3}

	score, err := ConsistencyScore(ids, preds, 6)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, score, 1e-9)
}

func TestConsistencyScoreRelabelInvariant(t *testing.T) {
	ids := []int{1, 1, 1, 2, 2, 2}
	preds := []int{0, 1, 0, 2, 2, 3}
	relabeled := []int{5, 4, 5, 0, 0, 1} // same distinct-count structure

	a, err := ConsistencyScore(ids, preds, 6)
	require.NoError(t, err)
	b, err := ConsistencyScore(ids, relabeled, 6)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConsistencyScoreBounds(t *testing.T) {
	// Any label assignment stays within (0, 100] for classes >= distinct.
	ids := []int{0, 0, 1, 1, 2, 2, 3, 3}
	preds := []int{0, 1, 2, 2, 5, 0, 3, 3}

	score, err := ConsistencyScore(ids, preds, 6)
	require.NoError(t, err)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestConsistencyScoreErrors(t *testing.T) {
	_, err := ConsistencyScore([]int{1}, []int{1, 2}, 6)
	require.Error(t, err)

	_, err = ConsistencyScore(nil, nil, 6)
	require.Error(t, err)

	_, err = ConsistencyScore([]int{1}, []int{0}, 0)
	require.Error(t, err)
}
