package attack

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/privml/classattack/internal/frame"
	"github.com/privml/classattack/internal/model"
	"github.com/privml/classattack/internal/report"
)

// #region black-box-sweeps

// ExtraFeatureQuery runs the black-box query-size sweep: the sample is
// extended with zero-filled out-of-model columns, replicated, fully
// randomized, and the predictor sees only the original column projection.
// The accumulated report is flushed after each extra-feature-count group.
func ExtraFeatureQuery(p model.Predictor, users *frame.Frame, rng *rand.Rand, kind model.Kind, cfg ExtraFeatureConfig, flush FlushFunc) (*report.Table, error) {
	t := report.NewTable("attack_rand_query_bb",
		"model_type", "num_extra_features", "query_size", "consistency", "runtime")
	return t, runExtraFeature(p, users, rng, kind, cfg, t, flush, false)
}

// ExtraFeatureAccuracy is the reduced black-box sweep with per-configuration
// flushing: a crash loses at most the configuration in flight.
func ExtraFeatureAccuracy(p model.Predictor, users *frame.Frame, rng *rand.Rand, kind model.Kind, cfg ExtraFeatureConfig, flush FlushFunc) (*report.Table, error) {
	t := report.NewTable("attack_bb_unused_feat",
		"model_type", "num_extra_features", "query_size", "consistency", "runtime")
	return t, runExtraFeature(p, users, rng, kind, cfg, t, flush, true)
}

// runExtraFeature is the shared doubly-nested loop. flushEvery selects
// per-configuration flushing; otherwise flushing happens per outer group.
func runExtraFeature(p model.Predictor, users *frame.Frame, rng *rand.Rand, kind model.Kind, cfg ExtraFeatureConfig, t *report.Table, flush FlushFunc, flushEvery bool) error {
	origCols := users.Columns()

	for _, extra := range cfg.ExtraFeatures {
		for _, qs := range cfg.QuerySizes {
			start := time.Now()

			extended, err := users.ExtendColumns(extra)
			if err != nil {
				return fmt.Errorf("%s: extra=%d: %w", t.Name(), extra, err)
			}
			batch, err := extended.Replicate(qs)
			if err != nil {
				return fmt.Errorf("%s: extra=%d size=%d: %w", t.Name(), extra, qs, err)
			}
			batch.RandomizeAll(rng)

			// The predictor only ever sees the in-model columns.
			visible, err := batch.Select(origCols)
			if err != nil {
				return fmt.Errorf("%s: extra=%d size=%d: %w", t.Name(), extra, qs, err)
			}
			preds, err := p.Predict(visible)
			if err != nil {
				return fmt.Errorf("%s: extra=%d size=%d: %w", t.Name(), extra, qs, err)
			}
			score, err := ConsistencyScore(batch.Identity(), preds, cfg.Classes)
			if err != nil {
				return fmt.Errorf("%s: extra=%d size=%d: %w", t.Name(), extra, qs, err)
			}

			elapsed := time.Since(start).Seconds()
			err = t.Append(string(kind), report.Itoa(extra), report.Itoa(qs),
				report.Ftoa(score), report.Ftoa(elapsed))
			if err != nil {
				return err
			}
			log.Printf("%s: extra=%d size=%d consistency=%.4f elapsed=%.3fs",
				t.Name(), extra, qs, score, elapsed)

			if flushEvery && flush != nil {
				if err := flush(t); err != nil {
					return fmt.Errorf("%s: flush: %w", t.Name(), err)
				}
			}
		}

		if !flushEvery && flush != nil {
			if err := flush(t); err != nil {
				return fmt.Errorf("%s: flush: %w", t.Name(), err)
			}
		}
	}
	return nil
}

// #endregion black-box-sweeps
