package geelark

import "fmt"

// APIError represents a well-formed GeeLark error envelope: a response
// whose code is non-zero, regardless of HTTP status. The remote code and
// message are carried verbatim for the caller to surface.
type APIError struct {
	Code    int
	Msg     string
	TraceID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("geelark: remote error %d: %s", e.Code, e.Msg)
}

// ValidationError reports a request that violates a protocol limit.
// It is raised before any network call; hitting one indicates an
// integration bug in the caller, not a remote fault.
type ValidationError struct {
	Op    string
	Limit int
	Count int
}

func (e *ValidationError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("geelark: %s: batch is empty", e.Op)
	}
	return fmt.Sprintf("geelark: %s: batch of %d exceeds limit of %d", e.Op, e.Count, e.Limit)
}
