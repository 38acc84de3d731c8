package trending

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

// Entry is one recently-checked claim with its recency-decayed rank inputs
type Entry struct {
	Key        string                `json:"key"`
	Result     model.FactCheckResult `json:"result"`
	LastSeenAt time.Time             `json:"last_seen_at"`
	SeenCount  int                   `json:"seen_count"`
	Score      float64               `json:"score"`
}

// Store keeps a bounded, recency-weighted registry of checked claims so the
// busiest rumors of the moment can be listed. A write-only side effect of
// the pipeline: it never blocks or fails a run.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	capacity int
	halfLife time.Duration
	now      func() time.Time
}

// NewStore creates a trending store
func NewStore(cfg model.TrendingConfig) *Store {
	return &Store{
		entries:  make(map[string]*Entry),
		capacity: cfg.Capacity,
		halfLife: cfg.HalfLife,
		now:      time.Now,
	}
}

// Record notes one completed check for the claim key. Cache hits count too:
// repeated lookups are exactly what makes a rumor trend.
func (s *Store) Record(key string, result *model.FactCheckResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, found := s.entries[key]; found {
		entry.SeenCount++
		entry.LastSeenAt = now
		entry.Result = *result
		return
	}

	s.entries[key] = &Entry{
		Key:        key,
		Result:     *result,
		LastSeenAt: now,
		SeenCount:  1,
	}
	s.evictLocked(now)
}

// List returns the top-n entries by decayed score, highest first
func (s *Store) List(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		copied := *entry
		copied.Score = s.score(entry, now)
		entries = append(entries, copied)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Len reports the current number of tracked claims
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// score decays linearly-counted popularity by age
func (s *Store) score(entry *Entry, now time.Time) float64 {
	age := now.Sub(entry.LastSeenAt)
	if age < 0 {
		age = 0
	}
	return float64(entry.SeenCount) * math.Exp(-age.Seconds()/s.halfLife.Seconds())
}

// evictLocked drops the lowest-scored entries once over capacity. Caller
// holds the lock.
func (s *Store) evictLocked(now time.Time) {
	if s.capacity <= 0 {
		return
	}
	for len(s.entries) > s.capacity {
		var worstKey string
		worstScore := math.Inf(1)
		for key, entry := range s.entries {
			if score := s.score(entry, now); score < worstScore {
				worstScore = score
				worstKey = key
			}
		}
		delete(s.entries, worstKey)
	}
}
