package attack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/privml/classattack/internal/frame"
	"github.com/privml/classattack/internal/model"
	"github.com/privml/classattack/internal/report"
)

// constPredictor returns the same label for every row and records the column
// sets it was called with.
type constPredictor struct {
	label       int
	numFeatures int
	seenColumns [][]string
}

func (p *constPredictor) Predict(f *frame.Frame) ([]int, error) {
	p.seenColumns = append(p.seenColumns, f.Columns())
	out := make([]int, f.Rows())
	for i := range out {
		out[i] = p.label
	}
	return out, nil
}

func (p *constPredictor) NumFeatures() int { return p.numFeatures }

// identityPredictor returns each row's identity mod 6, so every replica of a
// source row gets the same label regardless of perturbation.
type identityPredictor struct{ numFeatures int }

func (p *identityPredictor) Predict(f *frame.Frame) ([]int, error) {
	ids := f.Identity()
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = id % 6
	}
	return out, nil
}

func (p *identityPredictor) NumFeatures() int { return p.numFeatures }

func sampleUsers(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New(
		[]string{"f0", "f1"},
		[]int{3, 11, 42},
		[]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
	)
	require.NoError(t, err)
	return f
}

func TestQuerySizeConstantPredictor(t *testing.T) {
	users := sampleUsers(t)
	p := &constPredictor{label: 4, numFeatures: 2}
	cfg := QuerySizeConfig{QuerySizes: []int{10, 20}, Classes: 6}

	tab, err := QuerySize(p, users, rand.New(rand.NewSource(1)), model.KindForest, cfg)
	require.NoError(t, err)

	// Baseline plus one row per query size.
	require.Equal(t, 3, tab.Len())

	base := tab.Row(0)
	assert.Equal(t, "rf", base["model_type"])
	assert.Equal(t, "1", base["query_size"])
	// One distinct label per trivial one-row group.
	assert.Equal(t, report.Ftoa(100.0/6.0), base["consistency"])

	// A constant predictor stays at the single-label floor for every size.
	for i := 1; i < tab.Len(); i++ {
		assert.Equal(t, report.Ftoa(100.0/6.0), tab.Row(i)["consistency"])
	}
	assert.Equal(t, "10", tab.Row(1)["query_size"])
	assert.Equal(t, "20", tab.Row(2)["query_size"])
}

func TestQuerySizeIdentityPredictorBaseline(t *testing.T) {
	users := sampleUsers(t)
	p := &identityPredictor{numFeatures: 2}
	cfg := QuerySizeConfig{QuerySizes: []int{10}, Classes: 6}

	tab, err := QuerySize(p, users, rand.New(rand.NewSource(1)), model.KindLinear, cfg)
	require.NoError(t, err)

	// A label unique per source row still yields one distinct label per
	// identity group, at any replicate count.
	assert.Equal(t, report.Ftoa(100.0/6.0), tab.Row(0)["consistency"])
	assert.Equal(t, report.Ftoa(100.0/6.0), tab.Row(1)["consistency"])
}

func TestExtraFeatureQueryHidesExtraColumns(t *testing.T) {
	users := sampleUsers(t)
	p := &constPredictor{label: 1, numFeatures: 2}
	cfg := ExtraFeatureConfig{ExtraFeatures: []int{1, 5}, QuerySizes: []int{2, 3}, Classes: 6}

	tab, err := ExtraFeatureQuery(p, users, rand.New(rand.NewSource(2)), model.KindForest, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, tab.Len())

	// The predictor only ever saw the original in-model columns.
	require.NotEmpty(t, p.seenColumns)
	for _, cols := range p.seenColumns {
		assert.Equal(t, []string{"f0", "f1"}, cols)
	}
}

func TestExtraFeatureQueryFlushesPerGroup(t *testing.T) {
	users := sampleUsers(t)
	p := &constPredictor{label: 1, numFeatures: 2}
	cfg := ExtraFeatureConfig{ExtraFeatures: []int{1, 5, 10}, QuerySizes: []int{2, 3}, Classes: 6}

	var flushLens []int
	flush := func(t *report.Table) error {
		flushLens = append(flushLens, t.Len())
		return nil
	}

	_, err := ExtraFeatureQuery(p, users, rand.New(rand.NewSource(3)), model.KindForest, cfg, flush)
	require.NoError(t, err)

	// One flush per extra-feature group, each seeing the accumulated rows.
	assert.Equal(t, []int{2, 4, 6}, flushLens)
}

func TestExtraFeatureAccuracyFlushesPerConfiguration(t *testing.T) {
	users := sampleUsers(t)
	p := &constPredictor{label: 1, numFeatures: 2}
	cfg := ExtraFeatureConfig{ExtraFeatures: []int{1, 5}, QuerySizes: []int{2, 3}, Classes: 6}

	var flushLens []int
	flush := func(t *report.Table) error {
		flushLens = append(flushLens, t.Len())
		return nil
	}

	tab, err := ExtraFeatureAccuracy(p, users, rand.New(rand.NewSource(4)), model.KindMLP, cfg, flush)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4}, flushLens)
	assert.Equal(t, "attack_bb_unused_feat", tab.Name())
	// Same metric name as every other sweep.
	assert.Contains(t, tab.Columns(), "consistency")
}

func TestFeatureCountSingleTrialStdIsZero(t *testing.T) {
	users := sampleUsers(t)
	p := &constPredictor{label: 0, numFeatures: 2}
	cfg := FeatureCountConfig{FeatureCounts: []int{1, 2}, QuerySize: 5, NumTrials: 1, Classes: 6}

	tab, err := FeatureCount(p, users, rand.New(rand.NewSource(5)), model.KindForest, cfg)
	require.NoError(t, err)
	require.Equal(t, 3, tab.Len()) // baseline + 2 feature counts

	base := tab.Row(0)
	assert.Equal(t, "0", base["num_features"])
	assert.Equal(t, report.Ftoa(0), base["consistency_std"])

	for i := 1; i < tab.Len(); i++ {
		row := tab.Row(i)
		assert.Equal(t, report.Ftoa(0), row["consistency_std"], "row %d", i)
		assert.Equal(t, report.Ftoa(100.0/6.0), row["consistency_mean"])
	}
}

func TestFeatureCountRejectsTooManyColumns(t *testing.T) {
	users := sampleUsers(t)
	p := &constPredictor{label: 0, numFeatures: 2}
	cfg := FeatureCountConfig{FeatureCounts: []int{3}, QuerySize: 2, NumTrials: 1, Classes: 6}

	_, err := FeatureCount(p, users, rand.New(rand.NewSource(6)), model.KindForest, cfg)
	require.Error(t, err)
}

func TestDefaultConfigs(t *testing.T) {
	qs := DefaultQuerySizeConfig()
	assert.Equal(t, []int{10, 20, 50, 100, 250, 500, 750, 1000, 2000, 5000}, qs.QuerySizes)
	assert.Equal(t, 6, qs.Classes)

	ef := DefaultExtraFeatureConfig()
	assert.Equal(t, []int{1, 5, 10, 50, 100, 200, 500, 1000, 2000, 5000, 10000}, ef.ExtraFeatures)
	assert.Equal(t, qs.QuerySizes, ef.QuerySizes)

	acc := DefaultExtraFeatureAccuracyConfig()
	assert.Equal(t, ef.ExtraFeatures, acc.ExtraFeatures)
	assert.Equal(t, []int{10, 1000, 5000}, acc.QuerySizes)

	fc := DefaultFeatureCountConfig()
	assert.Equal(t, []int{5, 10, 50, 100, 200, 300, 400, 500}, fc.FeatureCounts)
	assert.Equal(t, 1000, fc.QuerySize)
	assert.Equal(t, 10, fc.NumTrials)
}
