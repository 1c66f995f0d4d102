package analytics

import "sort"

// Rankable is anything ordered by a value total, then a count, then a name.
type Rankable interface {
	RankTotal() float64
	RankCount() int
	RankName() string
}

// Less orders a before b: higher total first, then higher count, then name
// ascending.
func Less(a, b Rankable) bool {
	if a.RankTotal() != b.RankTotal() {
		return a.RankTotal() > b.RankTotal()
	}
	if a.RankCount() != b.RankCount() {
		return a.RankCount() > b.RankCount()
	}
	return a.RankName() < b.RankName()
}

// Rank sorts items in place with a stable sort and returns them.
func Rank[T Rankable](items []T) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(items[i], items[j])
	})
	return items
}

// TopN returns at most n leading items. A non-positive n returns all.
func TopN[T any](items []T, n int) []T {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}
