package stats

import "fmt"

// ConfigError rejects a parameter update. The view keeps its prior state.
type ConfigError struct {
	View   string
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s: %s", e.View, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DataError reports a record excluded from a computation because the
// selected accessor could not read Field from it.
type DataError struct {
	ID    int64
	Field string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("activity %d: missing %s", e.ID, e.Field)
}

// ComputeError marks a view whose inputs were numerically degenerate. It is
// stored on the view state rather than returned.
type ComputeError struct {
	View   string
	Reason string
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("%s: %s", e.View, e.Reason)
}

func configErr(view, field string, err error) *ConfigError {
	return &ConfigError{View: view, Field: field, Reason: "lookup failed", Err: err}
}
