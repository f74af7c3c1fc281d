package services

import "fmt"

// DependencyError reports a collaborator query that failed outright
// (unreachable, timed out, internal fault). The aggregation fails whole;
// no partially populated summary is ever returned in its place.
type DependencyError struct {
	Collaborator string
	Err          error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s store unavailable: %v", e.Collaborator, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// InconsistencyError reports a collaborator response that violates its
// documented contract, e.g. more than one health entry for a single
// (user, date). Kept distinct from DependencyError so operators can tell
// "store is broken" from "store is unreachable".
type InconsistencyError struct {
	Collaborator string
	Detail       string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s store contract violation: %s", e.Collaborator, e.Detail)
}
