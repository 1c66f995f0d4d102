package domain

// ReportResult is the outer shape of every report: exactly one of Data and
// Error is set. Warnings name the sources that failed and were degraded to
// empty input, so partial data is never mistaken for complete data.
type ReportResult[T any] struct {
	Data     T        `json:"data"`
	Error    *string  `json:"error"`
	Warnings []string `json:"warnings,omitempty"`
}

// Succeeded wraps data with optional degradation warnings
func Succeeded[T any](data T, warnings []string) ReportResult[T] {
	return ReportResult[T]{Data: data, Warnings: warnings}
}

// Failed returns a result with no data and the given error message
func Failed[T any](msg string) ReportResult[T] {
	return ReportResult[T]{Error: &msg}
}

// OK reports whether the result carries data
func (r ReportResult[T]) OK() bool {
	return r.Error == nil
}

// Degraded reports whether data was computed with missing sources
func (r ReportResult[T]) Degraded() bool {
	return r.Error == nil && len(r.Warnings) > 0
}

// ErrorMessage returns the error string or ""
func (r ReportResult[T]) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}
