package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the caller is not an admin. Its
	// message is surfaced verbatim in the report's error field.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAllSourcesFailed is returned when every fetch of a pipeline failed
	ErrAllSourcesFailed = errors.New("all report sources failed")
	// ErrUnknownReport is returned for report kinds that do not exist
	ErrUnknownReport = errors.New("unknown report")
	// ErrInternal replaces recovered panics
	ErrInternal = errors.New("internal error")
)

// SourceError records one failed fetch
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
