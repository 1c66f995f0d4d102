// Package analytics holds the pure building blocks shared by every report
// pipeline: period resolution, aggregation maps, percentage arithmetic,
// classification rules and ranking. Nothing in this package performs I/O.
package analytics

import "math"

// Percentage returns part/total*100 rounded to one decimal place.
// A non-positive total yields 0 regardless of part. The result is not
// clamped, so values above 100 are reported as-is.
func Percentage(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return Round1(part / total * 100)
}

// Rate is Percentage for integer counts.
func Rate(count, total int) float64 {
	return Percentage(float64(count), float64(total))
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Mean returns sum/n rounded to one decimal, or 0 when n is 0.
func Mean(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return Round1(sum / float64(n))
}
