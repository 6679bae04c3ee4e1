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

// #region query-size-sweep

// QuerySize runs the white-box query-size sweep: a baseline prediction on
// the unperturbed sample, then one fully-randomized replicated batch per
// query size. Every row records its own configuration's elapsed time.
func QuerySize(p model.Predictor, users *frame.Frame, rng *rand.Rand, kind model.Kind, cfg QuerySizeConfig) (*report.Table, error) {
	t := report.NewTable("attack_rand_query",
		"model_type", "query_size", "consistency", "runtime")

	// Baseline: replicate count 1, no perturbation.
	start := time.Now()
	preds, err := p.Predict(users)
	if err != nil {
		return nil, fmt.Errorf("query-size sweep: baseline: %w", err)
	}
	score, err := ConsistencyScore(users.Identity(), preds, cfg.Classes)
	if err != nil {
		return nil, fmt.Errorf("query-size sweep: baseline: %w", err)
	}
	if err := t.Append(string(kind), report.Itoa(1), report.Ftoa(score), report.Ftoa(time.Since(start).Seconds())); err != nil {
		return nil, err
	}

	for _, qs := range cfg.QuerySizes {
		start = time.Now()

		batch, err := users.Replicate(qs)
		if err != nil {
			return nil, fmt.Errorf("query-size sweep: size %d: %w", qs, err)
		}
		batch.RandomizeAll(rng)

		preds, err := p.Predict(batch)
		if err != nil {
			return nil, fmt.Errorf("query-size sweep: size %d: %w", qs, err)
		}
		score, err := ConsistencyScore(batch.Identity(), preds, cfg.Classes)
		if err != nil {
			return nil, fmt.Errorf("query-size sweep: size %d: %w", qs, err)
		}

		elapsed := time.Since(start).Seconds()
		if err := t.Append(string(kind), report.Itoa(qs), report.Ftoa(score), report.Ftoa(elapsed)); err != nil {
			return nil, err
		}
		log.Printf("query-size sweep: size=%d consistency=%.4f elapsed=%.3fs", qs, score, elapsed)
	}

	return t, nil
}

// #endregion query-size-sweep
