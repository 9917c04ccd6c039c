package core

import (
	"sync"
	"time"
)

// DefaultSessionTTL is how long an idle session keeps its Tracker.
const DefaultSessionTTL = 30 * time.Minute

// DefaultMaxSessions caps the number of tracked sessions.
const DefaultMaxSessions = 10_000

// sessionEntry is the Tracker of one session plus the bookkeeping needed
// to evict it. An entry with runs in flight is never evicted, since a
// fresh Tracker would let a superseded result through.
type sessionEntry struct {
	tracker  *Tracker
	active   int
	lastUsed time.Time
}

// sessionTable maps session ids to Trackers. Session ids come from
// clients, so idle entries expire after ttl and the table never holds
// more than max entries unless every one of them has a run in flight.
type sessionTable struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu        sync.Mutex
	entries   map[string]*sessionEntry
	lastSweep time.Time
}

func newSessionTable(ttl time.Duration, maxEntries int) *sessionTable {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxSessions
	}
	return &sessionTable{
		ttl:     ttl,
		max:     maxEntries,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// acquire returns the session's Tracker and marks a run in flight.
// Every acquire must be paired with release.
func (st *sessionTable) acquire(session string) *Tracker {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if e, ok := st.entries[session]; ok {
		e.active++
		e.lastUsed = now
		return e.tracker
	}

	if now.Sub(st.lastSweep) >= st.ttl/2 {
		st.sweepLocked(now)
	}
	if len(st.entries) >= st.max {
		st.sweepLocked(now)
		st.evictOldestLocked()
	}

	e := &sessionEntry{tracker: &Tracker{}, active: 1, lastUsed: now}
	st.entries[session] = e
	return e.tracker
}

// release ends a run started with acquire.
func (st *sessionTable) release(session string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if e, ok := st.entries[session]; ok {
		e.active--
		e.lastUsed = st.now()
	}
}

// forget drops a session unless a run is in flight for it.
func (st *sessionTable) forget(session string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if e, ok := st.entries[session]; ok && e.active == 0 {
		delete(st.entries, session)
	}
}

func (st *sessionTable) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// sweepLocked removes idle entries older than the ttl.
func (st *sessionTable) sweepLocked(now time.Time) {
	st.lastSweep = now
	for key, e := range st.entries {
		if e.active == 0 && now.Sub(e.lastUsed) >= st.ttl {
			delete(st.entries, key)
		}
	}
}

// evictOldestLocked removes the least recently used idle entry.
func (st *sessionTable) evictOldestLocked() {
	var (
		oldestKey string
		oldest    *sessionEntry
	)
	for key, e := range st.entries {
		if e.active > 0 {
			continue
		}
		if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
			oldestKey, oldest = key, e
		}
	}
	if oldest != nil {
		delete(st.entries, oldestKey)
	}
}
