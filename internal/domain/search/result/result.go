// Package result models ranked search output.
package result

import "github.com/arcova/ragstore/internal/domain"

// Result is a single ranked hit: the record plus its distance to the query
// embedding. Smaller distance means more similar.
type Result struct {
	record   domain.Record
	distance float64
}

// New creates a Result.
func New(record domain.Record, distance float64) Result {
	return Result{record: record, distance: distance}
}

// Record returns the matched record.
func (r *Result) Record() domain.Record { return r.record }

// Distance returns the cosine distance to the query embedding.
func (r *Result) Distance() float64 { return r.distance }
