package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/privml/classattack/internal/report"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to attack_runs.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail with its result rows")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db results/UCI_HAR/attack_runs.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	store, err := report.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(store, *runID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID      string `json:"run_id"`
	Dataset    string `json:"dataset"`
	ModelType  string `json:"model_type"`
	Sweep      string `json:"sweep"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	RowCount   int    `json:"row_count"`
}

func runListMode(store *report.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:     r.RunID,
			Dataset:   r.Dataset,
			ModelType: r.ModelType,
			Sweep:     r.Sweep,
			StartedAt: r.StartedAt.Format("2006-01-02T15:04:05Z"),
			RowCount:  r.RowCount,
		}
		if !r.FinishedAt.IsZero() {
			rows[i].FinishedAt = r.FinishedAt.Format("2006-01-02T15:04:05Z")
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-10s  %-6s  %-22s  %5s  %s\n",
		"Run", "Dataset", "Model", "Sweep", "Rows", "Started")
	fmt.Printf("%-10s+-%-10s+-%-6s+-%-22s+-%5s+-%s\n",
		"----------", "----------", "------", "----------------------", "-----", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %-10s  %-6s  %-22s  %5d  %s\n",
			shortID(r.RunID), r.Dataset, r.ModelType, r.Sweep, r.RowCount, r.StartedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	listRow
	Results []resultRow `json:"results"`
}

type resultRow struct {
	Params      map[string]string `json:"params"`
	Consistency float64           `json:"consistency"`
	Runtime     float64           `json:"runtime"`
}

func runDetailMode(store *report.Store, runID string, jsonOut bool) error {
	rec, results, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		listRow: listRow{
			RunID:     rec.RunID,
			Dataset:   rec.Dataset,
			ModelType: rec.ModelType,
			Sweep:     rec.Sweep,
			StartedAt: rec.StartedAt.Format("2006-01-02T15:04:05Z"),
			RowCount:  rec.RowCount,
		},
		Results: make([]resultRow, len(results)),
	}
	if !rec.FinishedAt.IsZero() {
		out.FinishedAt = rec.FinishedAt.Format("2006-01-02T15:04:05Z")
	}
	for i, r := range results {
		row := resultRow{Consistency: r.Consistency, Runtime: r.Runtime}
		if r.ParamsJSON != "" {
			_ = json.Unmarshal([]byte(r.ParamsJSON), &row.Params)
		}
		out.Results[i] = row
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:      %s\n", out.RunID)
	fmt.Printf("Dataset:  %s\n", out.Dataset)
	fmt.Printf("Model:    %s\n", out.ModelType)
	fmt.Printf("Sweep:    %s\n", out.Sweep)
	fmt.Printf("Started:  %s\n", out.StartedAt)
	if out.FinishedAt != "" {
		fmt.Printf("Finished: %s\n", out.FinishedAt)
	}
	fmt.Printf("Rows:     %d\n", out.RowCount)

	fmt.Printf("\n%-40s  %12s  %10s\n", "Params", "Consistency", "Runtime")
	fmt.Printf("%-40s+-%12s+-%10s\n",
		"----------------------------------------", "------------", "----------")
	for _, r := range out.Results {
		params, _ := json.Marshal(r.Params)
		fmt.Printf("%-40s  %12.4f  %10.4f\n", string(params), r.Consistency, r.Runtime)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
