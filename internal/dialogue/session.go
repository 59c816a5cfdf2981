package dialogue

import (
	"sync"
	"time"
)

// sweepEvery is the number of lookups between opportunistic TTL sweeps.
const sweepEvery = 1000

// SessionStore holds dialogue sessions in memory with an idle TTL, so
// abandoned slot-filling flows do not accumulate. Expired sessions are
// dropped lazily on lookup and swept opportunistically.
//
// Safe for concurrent use.
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	sweepN   uint64
}

// NewSessionStore constructs a SessionStore with the given idle TTL.
// A non-positive TTL is coerced to ten minutes.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for sessionID, creating a fresh idle one when
// absent or expired. The returned pointer stays owned by the store; callers
// mutate it only from the single in-flight turn of that session.
func (st *SessionStore) Get(sessionID string) *Session {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	st.sweepN++
	if st.sweepN >= sweepEvery {
		for k, s := range st.sessions {
			if now.Sub(s.touchedAt) >= st.ttl {
				delete(st.sessions, k)
			}
		}
		st.sweepN = 0
	}

	s, ok := st.sessions[sessionID]
	if !ok || now.Sub(s.touchedAt) >= st.ttl {
		s = &Session{touchedAt: now}
		st.sessions[sessionID] = s
		return s
	}
	s.touchedAt = now
	return s
}

// Clear discards all state for sessionID.
func (st *SessionStore) Clear(sessionID string) {
	st.mu.Lock()
	delete(st.sessions, sessionID)
	st.mu.Unlock()
}

// ActiveFlows counts sessions currently inside a slot-filling flow.
func (st *SessionStore) ActiveFlows() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for _, s := range st.sessions {
		if s.InFlow() {
			n++
		}
	}
	return n
}
