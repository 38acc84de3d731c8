package pipeline

import (
	"time"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

// State names one stage of a pipeline run. Transitions are strictly forward;
// CacheHit branches from Received directly to Completed.
type State string

const (
	StateReceived     State = "received"
	StateCacheHit     State = "cache_hit"
	StateExtracting   State = "extracting"
	StateQuerying     State = "querying"
	StateSearching    State = "searching"
	StateSynthesizing State = "synthesizing"
	StateRanking      State = "ranking"
	StateExplaining   State = "explaining"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// Event is one progress notification for a run. The Completed event carries
// the final result; a Failed event carries the failing stage and reason.
type Event struct {
	RunID     string                 `json:"run_id"`
	State     State                  `json:"state"`
	Message   string                 `json:"message,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Result    *model.FactCheckResult `json:"result,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventSink receives progress events for one run, in state order. Called
// from the run's own goroutine, never concurrently.
type EventSink func(Event)
