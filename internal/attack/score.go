package attack

import "fmt"

// #region consistency

// ConsistencyScore measures how much predictions vary within each identity
// group: the mean number of distinct predicted labels per group, normalized
// by the class count and scaled to a percentage. It depends only on distinct
// label counts, so it is invariant under relabeling, and is bounded in
// (0, 100] — a perfectly consistent predictor scores 100/classes, one that
// covers every class within every group scores 100.
func ConsistencyScore(ids, preds []int, classes int) (float64, error) {
	if len(ids) != len(preds) {
		return 0, fmt.Errorf("consistency: %d identities for %d predictions", len(ids), len(preds))
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("consistency: no predictions")
	}
	if classes < 1 {
		return 0, fmt.Errorf("consistency: %d classes", classes)
	}

	distinct := make(map[int]map[int]struct{})
	for i, id := range ids {
		set, ok := distinct[id]
		if !ok {
			set = make(map[int]struct{})
			distinct[id] = set
		}
		set[preds[i]] = struct{}{}
	}

	var sum float64
	for _, set := range distinct {
		sum += float64(len(set))
	}
	mean := sum / float64(len(distinct))
	return mean / float64(classes) * 100, nil
}

// #endregion consistency
