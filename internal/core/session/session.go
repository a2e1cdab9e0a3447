package session

import (
	"errors"
	"sync"

	"github.com/penwyp/go-actograph/internal/core/cache"
	"github.com/penwyp/go-actograph/internal/core/correction"
	"github.com/penwyp/go-actograph/internal/core/grouping"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/core/statistics"
	"github.com/penwyp/go-actograph/internal/core/timeline"
	"github.com/penwyp/go-actograph/internal/util"
)

// ErrSessionClosed is returned by every Session method after Close
var ErrSessionClosed = errors.New("session closed")

// defaultCacheEntries bounds how many reading-list versions a session memoizes
const defaultCacheEntries = 16

// Session holds one observation: its protocol and its current readings.
// Derived results are memoized by reading-list fingerprint, so a reading
// list that comes back (an undo, a watcher reload) is not recomputed.
type Session struct {
	mu          sync.RWMutex
	protocol    model.Protocol
	readings    []model.Reading
	fingerprint string
	cache       *cache.MemoryCache
	closed      bool

	// OnDropped receives readings that matched no protocol category
	OnDropped func(model.Reading)
}

func NewSession(protocol model.Protocol) *Session {
	s := &Session{
		protocol: protocol,
		cache:    cache.NewMemoryCache(defaultCacheEntries),
	}
	s.fingerprint = util.ReadingsFingerprint(s.readings)
	return s
}

// SetReadings replaces the readings of the session
func (s *Session) SetReadings(readings []model.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.readings = model.CloneReadings(readings)
	s.fingerprint = util.ReadingsFingerprint(s.readings)
	util.LogDebugf("Session: %d readings loaded, fingerprint=%s", len(s.readings), s.fingerprint)
	return nil
}

// Readings returns a copy of the current readings
func (s *Session) Readings() ([]model.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	return model.CloneReadings(s.readings), nil
}

func (s *Session) Protocol() model.Protocol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protocol
}

// Fingerprint identifies the current reading list
func (s *Session) Fingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprint
}

// Analyze reports the corrective actions the current readings need,
// including the corrected list
func (s *Session) Analyze() (correction.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return correction.Result{}, ErrSessionClosed
	}
	return s.analyzeLocked(), nil
}

// analyzeLocked returns a copy of the memoized analysis; callers own it
func (s *Session) analyzeLocked() correction.Result {
	if entry, ok := s.cache.Get(s.fingerprint); ok && entry.Analysis != nil {
		return entry.Analysis.Clone()
	}

	result := correction.Analyze(s.readings, true)
	memo := result.Clone()
	s.cache.Update(s.fingerprint, func(e *cache.Entry) {
		e.Analysis = &memo
	})
	return result
}

// ApplyCorrections replaces the readings with their corrected form and
// returns the actions that were applied
func (s *Session) ApplyCorrections() (correction.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return correction.Result{}, ErrSessionClosed
	}

	result := s.analyzeLocked()
	if !result.NeedsCorrection() {
		return result, nil
	}

	s.readings = model.CloneReadings(result.CorrectedReadings)
	s.fingerprint = util.ReadingsFingerprint(s.readings)
	util.LogInfof("Session: applied %s", util.Plural(len(result.Actions), "correction"))
	return result, nil
}

// Timelines builds one step timeline per protocol category
func (s *Session) Timelines() ([]timeline.CategoryTimeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	return timeline.CloneAll(s.groupLocked().Timelines), nil
}

// Dropped returns the data readings that match no protocol category
func (s *Session) Dropped() ([]model.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	return model.CloneReadings(s.groupLocked().Dropped), nil
}

// groupLocked returns the memoized grouping of the current readings.
// OnDropped only fires when grouping actually runs.
func (s *Session) groupLocked() *cache.Entry {
	if entry, ok := s.cache.Get(s.fingerprint); ok && entry.Timelines != nil {
		return entry
	}

	grouped := grouping.GroupWithOptions(s.readings, s.protocol, grouping.Options{OnDropped: s.OnDropped})
	timelines := timeline.BuildAll(grouped)
	var updated *cache.Entry
	s.cache.Update(s.fingerprint, func(e *cache.Entry) {
		e.Timelines = timelines
		e.Dropped = grouped.Dropped
		copied := *e
		updated = &copied
	})
	return updated
}

// Statistics computes per-category durations and counts
func (s *Session) Statistics() (statistics.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return statistics.Report{}, ErrSessionClosed
	}
	return statistics.Observation(s.readings, s.protocol), nil
}

// ConditionalStatistics computes statistics restricted to the time the
// condition groups, combined with op, hold
func (s *Session) ConditionalStatistics(groups []statistics.ConditionGroup, op statistics.Operator) (statistics.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return statistics.Report{}, ErrSessionClosed
	}
	return statistics.Conditional(s.readings, s.protocol, groups, op)
}

// Close drops memoized results; the session is unusable afterwards
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.readings = nil
	s.cache.Clear()
	return nil
}
