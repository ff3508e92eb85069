package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType tags the variant of a recorded event
type EventType string

const (
	EventSearch      EventType = "search"
	EventError       EventType = "error"
	EventInteraction EventType = "interaction"
)

// Search event sources, used to derive the cache hit rate
const (
	SourceCacheHit    = "cache_hit"
	SourceDatabaseHit = "database_hit"
)

// Event is one recorded engine activity. Events are insertion-ordered in
// the aggregator but only need to be sortable by timestamp.
type Event struct {
	Key            string            `json:"key"`
	Type           EventType         `json:"type"`
	Timestamp      time.Time         `json:"timestamp"`
	Query          string            `json:"query,omitempty"`
	Source         string            `json:"source,omitempty"`
	ResponseTimeMs float64           `json:"response_time_ms,omitempty"`
	ResultCount    int               `json:"result_count,omitempty"`
	ErrorCode      string            `json:"error_code,omitempty"`
	TargetID       string            `json:"target_id,omitempty"`
	TargetType     string            `json:"target_type,omitempty"`
	Properties     map[string]string `json:"properties,omitempty"`
}

// eventKey builds a unique event key. Uniqueness is the requirement,
// not monotonicity; a timestamp plus a random suffix is sufficient.
func eventKey(ts time.Time) string {
	return fmt.Sprintf("%d-%s", ts.UnixNano(), uuid.NewString()[:8])
}
