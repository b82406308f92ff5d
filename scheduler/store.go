package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ngicks/gapsched/common"
)

type storeKey struct {
	fireAt time.Time
	seq    uint64
}

// Store is the Event Store: pending events kept in ascending fire time order.
//
// keys is sorted by fireAt, ties in insertion order.
// Events themselves live in arena, keyed by seq.
// Every exported method takes mu exactly once and calls unlocked helpers only,
// so a composed operation never locks twice.
type Store struct {
	mu     sync.Mutex
	id     uuid.UUID
	seq    uint64
	keys   []storeKey
	arena  map[uint64]Event
	getNow common.GetNow
}

// NewStore creates an empty Store.
//
// panic: If getNow is nil.
func NewStore(getNow common.GetNow) *Store {
	if getNow == nil {
		panic(fmt.Errorf("%w: getNow is nil", ErrInvalidArg))
	}
	return &Store{
		id:     uuid.New(),
		keys:   make([]storeKey, 0),
		arena:  make(map[uint64]Event),
		getNow: getNow,
	}
}

// Insert creates an Event and places it after every event whose fire time is equal or earlier.
func (s *Store) Insert(payload Payload, fireAt time.Time) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(payload, fireAt)
}

func (s *Store) insert(payload Payload, fireAt time.Time) Event {
	s.seq++
	ev := Event{
		handle: Handle{
			storeId: s.id,
			seq:     s.seq,
			fireAt:  fireAt,
			id:      uuid.NewString(),
		},
		payload:   payload,
		createdAt: s.getNow.GetNow(),
	}

	i := s.upperBound(fireAt)
	s.keys = append(s.keys, storeKey{})
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = storeKey{fireAt: fireAt, seq: s.seq}
	s.arena[s.seq] = ev
	return ev
}

// upperBound returns the rightmost insertion point of t.
func (s *Store) upperBound(t time.Time) int {
	return sort.Search(len(s.keys), func(i int) bool {
		return s.keys[i].fireAt.After(t)
	})
}

// Remove removes the event h points to.
// It returns a *StoreError of EventNotFound kind if the event is not stored,
// whether it has already been popped, removed or was never in s.
func (s *Store) Remove(h Handle) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(h)
}

func (s *Store) remove(h Handle) (Event, error) {
	if h.storeId != s.id {
		return Event{}, &StoreError{Handle: h, Kind: EventNotFound}
	}

	// scanning back only among events sharing the exact fire time.
	for i := s.upperBound(h.fireAt); i > 0; {
		i--
		k := s.keys[i]
		if !k.fireAt.Equal(h.fireAt) {
			break
		}
		if k.seq == h.seq {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			ev := s.arena[k.seq]
			delete(s.arena, k.seq)
			return ev, nil
		}
	}
	return Event{}, &StoreError{Handle: h, Kind: EventNotFound}
}

// PopDue removes and returns the earliest event if its fire time is not after now.
func (s *Store) PopDue(now time.Time) (ev Event, popped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popDue(now)
}

func (s *Store) popDue(now time.Time) (ev Event, popped bool) {
	if len(s.keys) == 0 || s.keys[0].fireAt.After(now) {
		return Event{}, false
	}
	k := s.keys[0]
	s.keys[0] = storeKey{}
	s.keys = s.keys[1:]
	ev = s.arena[k.seq]
	delete(s.arena, k.seq)
	return ev, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Peek returns the earliest event without removing it.
func (s *Store) Peek() (ev Event, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.keys) == 0 {
		return Event{}, false
	}
	return s.arena[s.keys[0].seq], true
}

// Pending returns a snapshot of stored events in dispatch order.
func (s *Store) Pending() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]Event, 0, len(s.keys))
	for _, k := range s.keys {
		events = append(events, s.arena[k.seq])
	}
	return events
}
