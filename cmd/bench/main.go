package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/privml/classattack/internal/dataset"
	"github.com/privml/classattack/internal/frame"
	"github.com/privml/classattack/internal/model"
	"github.com/privml/classattack/internal/report"
)

// #region main

func main() {
	dataName := flag.String("data_name", "UCI_HAR", "dataset folder name")
	modelType := flag.String("model_type", "rf", "rf, lr or dnn")
	n := flag.Int("n", 100, "number of test rows to benchmark")
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

	if err := run(spec, *modelType, *n); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region bench

// run times single-row predictions over the first n test rows and reports
// mean per-query latency plus test accuracy against the true labels.
func run(spec dataset.Spec, modelType string, n int) error {
	kind, err := model.ParseKind(modelType)
	if err != nil {
		return err
	}

	split, err := dataset.LoadTestSplit(spec)
	if err != nil {
		return err
	}
	if n < 1 || n > split.X.Rows() {
		return fmt.Errorf("bench: n=%d with %d test rows", n, split.X.Rows())
	}

	predictor, err := model.Load(spec, kind)
	if err != nil {
		return err
	}

	cols := split.X.Columns()
	ids := split.X.Identity()
	buf := make([]float64, len(cols))

	correct := 0
	var total time.Duration
	for i := 0; i < n; i++ {
		row, err := frame.New(cols, ids[i:i+1], split.X.Row(buf, i))
		if err != nil {
			return fmt.Errorf("bench: row %d: %w", i, err)
		}

		start := time.Now()
		preds, err := predictor.Predict(row)
		total += time.Since(start)
		if err != nil {
			return fmt.Errorf("bench: row %d: %w", i, err)
		}
		if preds[0] == split.Y[i] {
			correct++
		}
	}

	accuracy := float64(correct) / float64(n)
	meanLatency := total.Seconds() / float64(n)

	fmt.Printf("Model Inference Benchmark (%s, %s, N=%d)\n", spec.Name, kind, n)
	fmt.Println("---------------------------------------------------")
	fmt.Printf("  Accuracy:     %.4f\n", accuracy)
	fmt.Printf("  Mean latency: %.6fs | QPS: %.0f\n", meanLatency, float64(n)/total.Seconds())

	t := report.NewTable("model_perf", "model_type", "num_rows", "accuracy", "mean_latency", "runtime")
	err = t.Append(string(kind), report.Itoa(n), report.Ftoa(accuracy),
		report.Ftoa(meanLatency), report.Ftoa(total.Seconds()))
	if err != nil {
		return err
	}
	return t.AppendFile(filepath.Join(spec.ResultsDir(), "model_perf.csv"))
}

// #endregion bench
