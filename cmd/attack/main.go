package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/privml/classattack/internal/attack"
	"github.com/privml/classattack/internal/dataset"
	"github.com/privml/classattack/internal/model"
	"github.com/privml/classattack/internal/report"
)

// #region main

func main() {
	dataName := flag.String("data_name", "UCI_HAR", "dataset folder name")
	numUsers := flag.Int("num_users", 100, "number of adversarial users to sample")
	modelType := flag.String("model_type", "rf", "rf, lr or dnn")
	seed := flag.Int64("seed", 10, "seed for user sampling and query perturbation")
	dataRoot := flag.String("data_root", "data", "root of per-dataset data folders")
	modelRoot := flag.String("model_root", "models", "root of per-dataset model artifacts")
	resultsRoot := flag.String("results_root", "results", "root of per-dataset result tables")
	flag.Parse()

	spec := dataset.Spec{
		Name:        *dataName,
		Classes:     6,
		DataRoot:    *dataRoot,
		ModelRoot:   *modelRoot,
		ResultsRoot: *resultsRoot,
	}

	if err := run(spec, *modelType, *numUsers, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(spec dataset.Spec, modelType string, numUsers int, seed int64) error {
	kind, err := model.ParseKind(modelType)
	if err != nil {
		return err
	}

	split, err := dataset.LoadTestSplit(spec)
	if err != nil {
		return err
	}
	log.Printf("loaded %s test split: %d rows, %d features", spec.Name, split.X.Rows(), split.X.Cols())

	predictor, err := model.Load(spec, kind)
	if err != nil {
		return err
	}
	if predictor.NumFeatures() != split.X.Cols() {
		return fmt.Errorf("model expects %d features, split has %d", predictor.NumFeatures(), split.X.Cols())
	}

	rng := rand.New(rand.NewSource(seed))
	users, err := split.SampleUsers(rng, numUsers)
	if err != nil {
		return err
	}
	log.Printf("sampled %d adversarial users (seed %d)", numUsers, seed)

	dir := spec.ResultsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("results dir: %w", err)
	}
	store, err := report.NewStore(filepath.Join(dir, "attack_runs.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	// White-box query-size sweep (appends to any prior report).
	qsCfg := attack.DefaultQuerySizeConfig()
	qsCfg.Classes = spec.Classes
	err = runSweep(store, spec, kind, "attack_rand_query", func() (*report.Table, error) {
		return attack.QuerySize(predictor, users.X, rng, kind, qsCfg)
	}, func(t *report.Table) error {
		return t.AppendFile(filepath.Join(dir, t.Name()+".csv"))
	})
	if err != nil {
		return err
	}

	// Black-box query-size sweep (flushes per extra-feature group; the
	// flush overwrites with this run's accumulated rows).
	bbCfg := attack.DefaultExtraFeatureConfig()
	bbCfg.Classes = spec.Classes
	err = runSweep(store, spec, kind, "attack_rand_query_bb", func() (*report.Table, error) {
		return attack.ExtraFeatureQuery(predictor, users.X, rng, kind, bbCfg, func(t *report.Table) error {
			return t.WriteFile(filepath.Join(dir, t.Name()+".csv"))
		})
	}, nil)
	if err != nil {
		return err
	}

	// White-box feature-count sweep (appends to any prior report).
	fcCfg := attack.DefaultFeatureCountConfig()
	fcCfg.Classes = spec.Classes
	err = runSweep(store, spec, kind, "attack_rand_feat", func() (*report.Table, error) {
		return attack.FeatureCount(predictor, users.X, rng, kind, fcCfg)
	}, func(t *report.Table) error {
		return t.AppendFile(filepath.Join(dir, t.Name()+".csv"))
	})
	if err != nil {
		return err
	}

	// Black-box unused-feature sweep (flushes after every configuration).
	accCfg := attack.DefaultExtraFeatureAccuracyConfig()
	accCfg.Classes = spec.Classes
	err = runSweep(store, spec, kind, "attack_bb_unused_feat", func() (*report.Table, error) {
		return attack.ExtraFeatureAccuracy(predictor, users.X, rng, kind, accCfg, func(t *report.Table) error {
			return t.WriteFile(filepath.Join(dir, t.Name()+".csv"))
		})
	}, nil)
	if err != nil {
		return err
	}

	log.Printf("all sweeps complete; reports under %s", dir)
	return nil
}

// runSweep wraps one sweep in a registry run: begin, execute, persist, finish.
func runSweep(store *report.Store, spec dataset.Spec, kind model.Kind, name string, sweep func() (*report.Table, error), save func(*report.Table) error) error {
	runID, err := store.BeginRun(spec.Name, string(kind), name)
	if err != nil {
		return err
	}

	t, err := sweep()
	if err != nil {
		return err
	}
	if save != nil {
		if err := save(t); err != nil {
			return err
		}
	}
	if err := store.RecordTable(runID, t); err != nil {
		return err
	}
	if err := store.FinishRun(runID, t.Len()); err != nil {
		return err
	}
	log.Printf("%s: recorded %d rows (run %s)", t.Name(), t.Len(), runID)
	return nil
}

// #endregion run
