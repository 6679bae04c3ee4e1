package attack

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/privml/classattack/internal/frame"
	"github.com/privml/classattack/internal/model"
	"github.com/privml/classattack/internal/report"
)

// #region feature-count-sweep

// FeatureCount runs the white-box feature-count sweep: for each count, N
// independent trials each randomize a fresh uniform column subset of the
// replicated sample, and the trial scores are aggregated into a mean and a
// population standard deviation.
func FeatureCount(p model.Predictor, users *frame.Frame, rng *rand.Rand, kind model.Kind, cfg FeatureCountConfig) (*report.Table, error) {
	t := report.NewTable("attack_rand_feat",
		"model_type", "num_features", "consistency_mean", "consistency_std", "runtime")

	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("feature-count sweep: %d trials", cfg.NumTrials)
	}

	// Baseline: no columns randomized, replicate count 1.
	start := time.Now()
	preds, err := p.Predict(users)
	if err != nil {
		return nil, fmt.Errorf("feature-count sweep: baseline: %w", err)
	}
	baseline, err := ConsistencyScore(users.Identity(), preds, cfg.Classes)
	if err != nil {
		return nil, fmt.Errorf("feature-count sweep: baseline: %w", err)
	}
	err = t.Append(string(kind), report.Itoa(0), report.Ftoa(baseline),
		report.Ftoa(0), report.Ftoa(time.Since(start).Seconds()))
	if err != nil {
		return nil, err
	}

	cols := users.Columns()
	for _, nf := range cfg.FeatureCounts {
		if nf > len(cols) {
			return nil, fmt.Errorf("feature-count sweep: %d columns requested, %d available", nf, len(cols))
		}
		start = time.Now()

		scores := make([]float64, 0, cfg.NumTrials)
		for trial := 0; trial < cfg.NumTrials; trial++ {
			subset := sampleColumns(rng, cols, nf)

			batch, err := users.Replicate(cfg.QuerySize)
			if err != nil {
				return nil, fmt.Errorf("feature-count sweep: count %d: %w", nf, err)
			}
			if err := batch.RandomizeColumns(rng, subset); err != nil {
				return nil, fmt.Errorf("feature-count sweep: count %d: %w", nf, err)
			}

			preds, err := p.Predict(batch)
			if err != nil {
				return nil, fmt.Errorf("feature-count sweep: count %d trial %d: %w", nf, trial, err)
			}
			score, err := ConsistencyScore(batch.Identity(), preds, cfg.Classes)
			if err != nil {
				return nil, fmt.Errorf("feature-count sweep: count %d trial %d: %w", nf, trial, err)
			}
			scores = append(scores, score)
		}

		elapsed := time.Since(start).Seconds()
		mean := stat.Mean(scores, nil)
		std := stat.PopStdDev(scores, nil)
		err = t.Append(string(kind), report.Itoa(nf), report.Ftoa(mean),
			report.Ftoa(std), report.Ftoa(elapsed))
		if err != nil {
			return nil, err
		}
		log.Printf("feature-count sweep: features=%d mean=%.4f std=%.4f elapsed=%.3fs",
			nf, mean, std, elapsed)
	}

	return t, nil
}

// sampleColumns draws n distinct column names uniformly without replacement.
func sampleColumns(rng *rand.Rand, cols []string, n int) []string {
	picks := rng.Perm(len(cols))[:n]
	subset := make([]string, n)
	for i, j := range picks {
		subset[i] = cols[j]
	}
	return subset
}

// #endregion feature-count-sweep
