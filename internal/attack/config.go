package attack

import "github.com/privml/classattack/internal/report"

// #region flush

// FlushFunc persists the accumulated report mid-sweep. The black-box sweeps
// call it at their durability points; a nil FlushFunc disables flushing.
type FlushFunc func(*report.Table) error

// #endregion flush

// #region query-size-config

// QuerySizeConfig drives the white-box query-size sweep.
type QuerySizeConfig struct {
	QuerySizes []int // replicate counts, ascending
	Classes    int   // score normalization constant
}

// DefaultQuerySizeConfig returns the standard UCI_HAR sweep.
func DefaultQuerySizeConfig() QuerySizeConfig {
	return QuerySizeConfig{
		QuerySizes: []int{10, 20, 50, 100, 250, 500, 750, 1000, 2000, 5000},
		Classes:    6,
	}
}

// #endregion query-size-config

// #region extra-feature-config

// ExtraFeatureConfig drives the black-box sweeps over out-of-model columns.
type ExtraFeatureConfig struct {
	ExtraFeatures []int // synthetic column counts, outer loop
	QuerySizes    []int // replicate counts, inner loop
	Classes       int
}

// DefaultExtraFeatureConfig returns the full black-box query-size sweep.
func DefaultExtraFeatureConfig() ExtraFeatureConfig {
	return ExtraFeatureConfig{
		ExtraFeatures: []int{1, 5, 10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
		QuerySizes:    []int{10, 20, 50, 100, 250, 500, 750, 1000, 2000, 5000},
		Classes:       6,
	}
}

// DefaultExtraFeatureAccuracyConfig returns the reduced sweep that flushes
// after every configuration.
func DefaultExtraFeatureAccuracyConfig() ExtraFeatureConfig {
	return ExtraFeatureConfig{
		ExtraFeatures: []int{1, 5, 10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
		QuerySizes:    []int{10, 1000, 5000},
		Classes:       6,
	}
}

// #endregion extra-feature-config

// #region feature-count-config

// FeatureCountConfig drives the white-box sweep over randomized-column counts.
type FeatureCountConfig struct {
	FeatureCounts []int // how many columns to randomize per configuration
	QuerySize     int   // fixed replicate count per trial
	NumTrials     int   // independent column subsets per feature count
	Classes       int
}

// DefaultFeatureCountConfig returns the standard sweep.
func DefaultFeatureCountConfig() FeatureCountConfig {
	return FeatureCountConfig{
		FeatureCounts: []int{5, 10, 50, 100, 200, 300, 400, 500},
		QuerySize:     1000,
		NumTrials:     10,
		Classes:       6,
	}
}

// #endregion feature-count-config
