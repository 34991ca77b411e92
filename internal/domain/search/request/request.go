// Package request models a single validated search request assembled from
// optional filter fragments.
package request

import (
	"fmt"
	"time"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/search/predicate"
)

// DefaultLimit is used when no limit is supplied.
const DefaultLimit = 5

// MaxLimit caps the result count of a single search.
const MaxLimit = 1000

// TimeRange restricts results to records created within [Start, End],
// inclusive on both bounds.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Request is a validated search request. Omitted fragments impose no
// constraint; supplied fragments compose via logical AND.
type Request struct {
	queryText      string
	queryVector    []float32
	limit          int
	metadataFilter map[string]string
	pred           *predicate.Predicate
	timeRange      *TimeRange
}

// New validates and creates a Request. Exactly one of queryText/queryVector
// must be supplied. A zero limit falls back to DefaultLimit; negative limits
// and inverted time ranges fail with domain.ErrInvalidArgument.
func New(
	queryText string, queryVector []float32, limit int,
	metadataFilter map[string]string, pred *predicate.Predicate, timeRange *TimeRange,
) (Request, error) {
	if queryText == "" && len(queryVector) == 0 {
		return Request{}, fmt.Errorf("%w: query text or query vector is required", domain.ErrInvalidArgument)
	}
	if queryText != "" && len(queryVector) > 0 {
		return Request{}, fmt.Errorf("%w: query text and query vector are mutually exclusive", domain.ErrInvalidArgument)
	}

	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidArgument, limit)
	}
	if limit > MaxLimit {
		return Request{}, fmt.Errorf("%w: limit %d exceeds max %d", domain.ErrInvalidArgument, limit, MaxLimit)
	}

	for k := range metadataFilter {
		if k == "" {
			return Request{}, fmt.Errorf("%w: metadata filter key is required", domain.ErrInvalidArgument)
		}
	}

	if pred != nil {
		if err := pred.Validate(); err != nil {
			return Request{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
	}

	if timeRange != nil {
		if timeRange.Start.IsZero() || timeRange.End.IsZero() {
			return Request{}, fmt.Errorf("%w: time range bounds are required", domain.ErrInvalidArgument)
		}
		if timeRange.Start.After(timeRange.End) {
			return Request{}, fmt.Errorf("%w: time range start %s is after end %s",
				domain.ErrInvalidArgument, timeRange.Start.Format(time.RFC3339), timeRange.End.Format(time.RFC3339))
		}
	}

	return Request{
		queryText:      queryText,
		queryVector:    queryVector,
		limit:          limit,
		metadataFilter: metadataFilter,
		pred:           pred,
		timeRange:      timeRange,
	}, nil
}

// QueryText returns the raw query text, empty when a vector was supplied.
func (r *Request) QueryText() string { return r.queryText }

// QueryVector returns the query embedding, nil when text was supplied.
func (r *Request) QueryVector() []float32 { return r.queryVector }

// WithVector returns a copy with the query vector resolved from text.
func (r *Request) WithVector(v []float32) Request {
	c := *r
	c.queryText = ""
	c.queryVector = v
	return c
}

// Limit returns the maximum result count.
func (r *Request) Limit() int { return r.limit }

// MetadataFilter returns the exact-match metadata restrictions.
func (r *Request) MetadataFilter() map[string]string { return r.metadataFilter }

// Predicate returns the predicate tree, nil when absent.
func (r *Request) Predicate() *predicate.Predicate { return r.pred }

// TimeRange returns the inclusive creation-time restriction, nil when absent.
func (r *Request) TimeRange() *TimeRange { return r.timeRange }
