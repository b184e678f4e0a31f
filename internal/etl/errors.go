package etl

import (
	"fmt"
	"strings"
)

// Stage failures surface as exactly one of the types below so the caller
// (and the orchestrator reading the exit status) can tell upstream API
// trouble from local artifact or store trouble. Match with errors.As.

// APIError reports a failed or malformed response from the search API.
type APIError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("youtube api: %s (status %d)", e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("youtube api: %s", e.Reason)
}

func (e *APIError) Unwrap() error { return e.Err }

// FormatError reports a malformed intermediate artifact.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed artifact %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IOError reports a filesystem read or write failure on an artifact.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ConnectionError reports an unreachable relational store.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store unreachable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaError reports a target table whose column set does not match the
// loader's expectations.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s is missing columns: %s", e.Table, strings.Join(e.Missing, ", "))
}
