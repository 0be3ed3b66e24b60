package session

import (
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNotFound is returned by Store.With when no session exists for
// the given id — the "unknown session" case of §4.5/§7, which the
// protocol layer turns into {session: 0, details: {}}.
var ErrNotFound = errors.New("session: not found")

// maxIDDrawAttempts bounds the id-collision retry loop (§4.4's
// "create_with" operation) so a (practically impossible) pathological
// collision run fails the request instead of looping forever.
const maxIDDrawAttempts = 100000

type entry struct {
	mu sync.RWMutex
	// lastAccess is a UnixNano timestamp, updated independently of mu
	// so a read-only With call never needs to upgrade its shared lock
	// to touch it (§5).
	lastAccess atomic.Int64
	session    Session
}

func (e *entry) touch() {
	e.lastAccess.Store(time.Now().UnixNano())
}

func (e *entry) idleSince(cutoff time.Time) bool {
	return time.Unix(0, e.lastAccess.Load()).Before(cutoff)
}

// Store is the process-wide session map of §4.4. The map itself is
// guarded by its own RWMutex; each entry additionally has its own
// RWMutex so that concurrent requests against distinct sessions never
// contend with each other (§5).
type Store struct {
	mu       sync.RWMutex
	sessions map[uint32]*entry

	idleTimeout   time.Duration
	sweepInterval time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewStore builds a session store and starts its background sweeper
// goroutine immediately (§9: "spawn one long-lived task at startup").
func NewStore(idleTimeout, sweepInterval time.Duration) *Store {
	s := &Store{
		sessions:      make(map[uint32]*entry),
		idleTimeout:   idleTimeout,
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Close stops the background sweeper. Teardown is otherwise implicit
// at process exit (§9); Close exists mainly so tests don't leak
// goroutines across cases.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// CreateWith draws a fresh nonzero session id, retrying on collision
// with the current map, inserts the given session with
// last_access = now(), and returns the id (§4.4).
func (s *Store) CreateWith(sess Session) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < maxIDDrawAttempts; i++ {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, exists := s.sessions[id]; exists {
			continue
		}
		e := &entry{session: sess}
		e.touch()
		s.sessions[id] = e
		return id, nil
	}
	return 0, errors.New("session: exhausted id draw attempts")
}

// With looks up id and, if present, runs fn against the session state
// under an exclusive (write=true) or shared (write=false) hold on
// that session's own lock, updating last_access to now() first. No
// reference to the session escapes outside fn, per §9's "no handle
// escapes outside the map" design note. Returns ErrNotFound if id is
// not currently in the store.
func (s *Store) With(id uint32, write bool, fn func(*Session) error) error {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	if write {
		e.mu.Lock()
		defer e.mu.Unlock()
	} else {
		e.mu.RLock()
		defer e.mu.RUnlock()
	}
	e.touch()
	return fn(&e.session)
}

// Terminate removes id unconditionally, regardless of its state
// (§4.4). It is a no-op if id is already gone.
func (s *Store) Terminate(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of live sessions, used by tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

// sweepOnce implements §5's two-phase sweeper discipline: snapshot
// expiry candidates under a read lock on the map (reading each
// entry's own atomically-stored lastAccess), then recheck and remove
// under the map's write lock so a session whose last_access advances
// between the two phases is never wrongly evicted.
func (s *Store) sweepOnce() {
	cutoff := time.Now().Add(-s.idleTimeout)

	s.mu.RLock()
	candidates := make([]uint32, 0)
	for id, e := range s.sessions {
		if e.idleSince(cutoff) {
			candidates = append(candidates, id)
		}
	}
	s.mu.RUnlock()

	if len(candidates) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range candidates {
		e, ok := s.sessions[id]
		if !ok {
			continue
		}
		if e.idleSince(cutoff) {
			delete(s.sessions, id)
		}
	}
}
