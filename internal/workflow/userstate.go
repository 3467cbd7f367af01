package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/pkodial/tulubot/internal/observe"
)

// defaultStateTTL is how long a teaching or correction conversation stays
// open before the bot gives up waiting.
const defaultStateTTL = 10 * time.Minute

// Mode is the kind of pending conversation a user is in.
type Mode string

const (
	// ModeLearning waits for the user to supply a translation for an
	// unknown word.
	ModeLearning Mode = "learning"

	// ModeCorrecting waits for a replacement translation of a taught word.
	ModeCorrecting Mode = "correcting"

	// ModeCorrectingBase marks an attempted correction of a core lexicon
	// entry. The core dictionary is immutable, so this mode is never
	// installed; the command handler rejects the attempt up front. The
	// constant documents the decision.
	ModeCorrectingBase Mode = "correcting_base"
)

// UserState is one pending conversation. A user has at most one; starting a
// new one replaces the old.
type UserState struct {
	UserID string
	Mode   Mode

	// English is the normalized key the conversation is about.
	English string

	// OriginalText is the text as the user typed it, for prompts.
	OriginalText string

	// OldTranslation is the pre-correction value, shown in confirmations.
	OldTranslation string

	StartedAt time.Time
}

// States tracks pending conversations per user with TTL expiry.
type States struct {
	ttl     time.Duration
	metrics *observe.Metrics

	mu     sync.Mutex
	byUser map[string]UserState
}

// NewStates creates a [States]. A non-positive ttl uses the default of ten
// minutes; metrics may be nil to use [observe.DefaultMetrics].
func NewStates(ttl time.Duration, metrics *observe.Metrics) *States {
	if ttl <= 0 {
		ttl = defaultStateTTL
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &States{
		ttl:     ttl,
		metrics: metrics,
		byUser:  make(map[string]UserState),
	}
}

// BeginLearning opens a learning conversation for userID, replacing any
// pending one. It implements the engine's teach-me callback.
func (s *States) BeginLearning(userID, english, original string) {
	s.begin(UserState{
		UserID:       userID,
		Mode:         ModeLearning,
		English:      english,
		OriginalText: original,
		StartedAt:    time.Now(),
	})
}

// BeginCorrection opens a correction conversation for userID, replacing any
// pending one.
func (s *States) BeginCorrection(userID, english, oldTranslation string) {
	s.begin(UserState{
		UserID:         userID,
		Mode:           ModeCorrecting,
		English:        english,
		OriginalText:   english,
		OldTranslation: oldTranslation,
		StartedAt:      time.Now(),
	})
}

func (s *States) begin(st UserState) {
	s.mu.Lock()
	_, replaced := s.byUser[st.UserID]
	s.byUser[st.UserID] = st
	s.mu.Unlock()

	if !replaced {
		s.metrics.ActiveUserStates.Add(context.Background(), 1)
	}
}

// Get returns the pending conversation for userID. An expired state is
// dropped and reported as absent; the caller treats the message as a fresh
// translation request.
func (s *States) Get(userID string) (UserState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byUser[userID]
	if !ok {
		return UserState{}, false
	}
	if time.Since(st.StartedAt) >= s.ttl {
		delete(s.byUser, userID)
		s.metrics.ActiveUserStates.Add(context.Background(), -1)
		return UserState{}, false
	}
	return st, true
}

// Clear drops the pending conversation for userID, reporting whether one
// existed.
func (s *States) Clear(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUser[userID]; !ok {
		return false
	}
	delete(s.byUser, userID)
	s.metrics.ActiveUserStates.Add(context.Background(), -1)
	return true
}

// Sweep drops all expired conversations.
func (s *States) Sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, st := range s.byUser {
		if now.Sub(st.StartedAt) >= s.ttl {
			delete(s.byUser, userID)
			s.metrics.ActiveUserStates.Add(context.Background(), -1)
		}
	}
}

// StartSweeper runs [States.Sweep] every interval until ctx is cancelled.
func (s *States) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
