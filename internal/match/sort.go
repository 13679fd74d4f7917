package match

import "sort"

// SortResults sorts results by score (descending). Equal scores keep their
// relative order, so catalogue order is the tie-break.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
