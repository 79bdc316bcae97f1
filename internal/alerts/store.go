// Package alerts records detections that crossed an alerting threshold.
//
// A Store is the unit of lifetime: ids are assigned as count+1, so they are
// strictly increasing until Clear empties the store, after which numbering
// restarts at 1. Every Alert additionally carries a random Ref that stays
// unique across clears for consumers that cache alert identities.
package alerts

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/safeecho/internal/logging"
)

// Store is an in-process, append-only alert collection. It is safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	alerts []Alert
	subs   map[int]chan Alert
	subSeq int

	now    func() time.Time
	logger logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp alerts.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.With(logging.Component("alert-store"))
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		subs:   make(map[int]chan Alert),
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add records a new alert and returns a copy of it. An empty severity
// defaults to SeverityHigh.
func (s *Store) Add(typ Type, content, reason string, severity Severity) Alert {
	if severity == "" {
		severity = SeverityHigh
	}

	s.mu.Lock()
	a := Alert{
		ID:        len(s.alerts) + 1,
		Ref:       uuid.NewString(),
		Timestamp: s.now(),
		Type:      typ,
		Content:   content,
		Reason:    reason,
		Severity:  severity,
		Status:    StatusNew,
	}
	s.alerts = append(s.alerts, a)

	dropped := 0
	for _, ch := range s.subs {
		select {
		case ch <- a:
		default:
			dropped++
		}
	}
	s.mu.Unlock()

	if dropped > 0 {
		s.logger.Warn("dropped alert for slow subscribers", logging.F("alert_id", a.ID), logging.F("subscribers", dropped))
	}

	s.logger.Info("alert recorded",
		logging.F("alert_id", a.ID),
		logging.F("type", string(a.Type)),
		logging.F("severity", string(a.Severity)),
	)
	return a
}

// List returns a snapshot of all alerts, most recent first. Alerts sharing a
// timestamp keep no particular order.
func (s *Store) List() []Alert {
	s.mu.RLock()
	out := make([]Alert, len(s.alerts))
	copy(out, s.alerts)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Len reports how many alerts are currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// Clear removes every alert. Clearing an empty store is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	n := len(s.alerts)
	s.alerts = nil
	s.mu.Unlock()

	s.logger.Info("alerts cleared", logging.F("count", n))
}

// Subscribe returns a channel that receives every alert added after the call.
// The channel is buffered; when it is full new alerts are dropped for that
// subscriber instead of blocking Add. The returned func unsubscribes and
// closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan Alert, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Alert, buffer)

	s.mu.Lock()
	s.subSeq++
	id := s.subSeq
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
