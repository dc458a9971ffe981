package rangedl

import "sync"

// Phase is the engine's observable lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Downloading
	Paused
	Cancelled
	Completed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Downloading:
		return "downloading"
	case Paused:
		return "paused"
	case Cancelled:
		return "cancelled"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether p is one of the two terminal phases.
func (p Phase) Terminal() bool {
	return p == Cancelled || p == Completed
}

// StatePublisher is a single replay-latest broadcast of Phase. A late
// subscriber receives the most recent value immediately upon subscribing.
// Emissions occur only on actual transitions.
type StatePublisher struct {
	mu       sync.Mutex
	current  Phase
	has      bool
	subs     map[int]chan Phase
	nextID   int
	disposed bool
}

// NewStatePublisher creates a publisher with no emitted value yet.
func NewStatePublisher() *StatePublisher {
	return &StatePublisher{subs: make(map[int]chan Phase)}
}

// Emit publishes phase to every current and future subscriber, but only if
// it differs from the last emitted value.
func (s *StatePublisher) Emit(phase Phase) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	if s.has && s.current == phase {
		s.mu.Unlock()
		return
	}
	s.current = phase
	s.has = true
	subs := make([]chan Phase, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- phase:
		default:
		}
	}
}

// Subscribe returns a channel that immediately replays the latest phase (if
// any has been emitted) and then receives every subsequent transition.
// Unsubscribe must be called with the returned id once the caller is done.
func (s *StatePublisher) Subscribe() (<-chan Phase, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Phase, 1)
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	if s.has {
		ch <- s.current
	}
	return ch, id
}

// Unsubscribe removes and closes a previously subscribed channel.
func (s *StatePublisher) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// Current returns the last emitted phase and whether one has been emitted.
func (s *StatePublisher) Current() (Phase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.has
}

// Dispose closes every subscriber channel. Idempotent.
func (s *StatePublisher) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
