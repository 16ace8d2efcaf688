// Package query builds the search request body for one export worker.
package query

import (
	"encoding/json"
	"fmt"
)

// DefaultSize is the page size used when the caller does not specify one.
const DefaultSize = 100

// MatchAll is the filter used when the caller does not supply one.
const MatchAll = `{"match_all":{}}`

// Slice identifies one partition of the result set out of Max total
// partitions. The engine guarantees the slices cover all matching
// documents exactly once.
type Slice struct {
	ID  int `json:"id"`
	Max int `json:"max"`
}

// Query is the immutable request body for a worker's initial search
// request. Sort is always by natural document order, which the engine
// requires for consistent cursor iteration.
type Query struct {
	Filter json.RawMessage `json:"query"`
	Size   int             `json:"size"`
	Sort   []string        `json:"sort"`
	Slice  *Slice          `json:"slice,omitempty"`
}

// QueryError reports an invalid user-supplied filter or size. It is fatal:
// no request may be issued once query construction has failed.
type QueryError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid query: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// Build constructs the query for one worker. The filter defaults to
// match-all when empty and must otherwise be valid JSON. A slice clause is
// attached only when more than one worker shares the export; a single
// worker scans the whole index without slicing.
func Build(filterJSON string, size, workerID, workerCount int) (Query, error) {
	if size < 0 {
		return Query{}, &QueryError{Reason: fmt.Sprintf("size must be non-negative (got %d)", size)}
	}

	if filterJSON == "" {
		filterJSON = MatchAll
	}

	var filter json.RawMessage
	if err := json.Unmarshal([]byte(filterJSON), &filter); err != nil {
		return Query{}, &QueryError{Reason: "filter is not valid JSON", Err: err}
	}

	q := Query{
		Filter: filter,
		Size:   size,
		Sort:   []string{"_doc"},
	}

	if workerCount > 1 {
		q.Slice = &Slice{ID: workerID, Max: workerCount}
	}

	return q, nil
}
