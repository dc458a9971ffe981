package rangedl

import (
	"fmt"
	"sync"
)

// ProgressPublisher broadcasts per-segment byte deltas and a human-readable
// "<done>/<total>" string; the cumulative count is read with Downloaded. Both channels are replay-latest broadcasts: a
// late subscriber receives the most recently published value immediately.
type ProgressPublisher struct {
	mu        sync.Mutex
	total     int64
	done      int64
	lastDelta int64
	has       bool
	subs      map[int]progressSub
	nextID    int
	disposed  bool
}

type progressSub struct {
	bytesDelta chan int64
	formatted  chan string
}

// NewProgressPublisher creates a publisher for a download of the given
// total size. A total of 0 means the size is not yet known.
func NewProgressPublisher(total int64) *ProgressPublisher {
	return &ProgressPublisher{total: total, subs: make(map[int]progressSub)}
}

// SetTotal updates the known total size, used once metadata resolves after
// construction.
func (p *ProgressPublisher) SetTotal(total int64) {
	p.mu.Lock()
	p.total = total
	p.mu.Unlock()
}

// Publish records an incremental byte delta and broadcasts both the delta
// and the updated "<done>/<total>" string to every subscriber.
func (p *ProgressPublisher) Publish(delta int64) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.done += delta
	p.lastDelta = delta
	p.has = true
	formatted := fmt.Sprintf("%s/%s", FormatBytes(p.done), FormatBytes(p.total))

	subs := make([]progressSub, 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	p.mu.Unlock()

	for _, s := range subs {
		select {
		case s.bytesDelta <- delta:
		default:
		}
		select {
		case s.formatted <- formatted:
		default:
		}
	}
}

// Subscribe returns replay-latest channels for bytes-delta and formatted
// progress, plus an id to pass to Unsubscribe.
func (p *ProgressPublisher) Subscribe() (bytesDelta <-chan int64, formatted <-chan string, id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := progressSub{
		bytesDelta: make(chan int64, 1),
		formatted:  make(chan string, 1),
	}
	id = p.nextID
	p.nextID++
	p.subs[id] = sub

	if p.has {
		sub.bytesDelta <- p.lastDelta
		sub.formatted <- fmt.Sprintf("%s/%s", FormatBytes(p.done), FormatBytes(p.total))
	}
	return sub.bytesDelta, sub.formatted, id
}

// Unsubscribe removes and closes a previously subscribed pair of channels.
func (p *ProgressPublisher) Unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.subs[id]; ok {
		delete(p.subs, id)
		close(s.bytesDelta)
		close(s.formatted)
	}
}

// Downloaded returns the cumulative bytes published so far.
func (p *ProgressPublisher) Downloaded() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Dispose closes every subscriber channel. Idempotent.
func (p *ProgressPublisher) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return
	}
	p.disposed = true
	for id, s := range p.subs {
		delete(p.subs, id)
		close(s.bytesDelta)
		close(s.formatted)
	}
}
