package rangedl

import "sync"

// FileRefPublisher is a replay-latest broadcast of the most recently
// known Result, mirroring the "downloaded_file" observable: the last file
// reference seen, updated after every successfully appended chunk and
// once more on completion. Distinct from the one-shot terminal handle
// returned by Download/Resume, which resolves exactly once.
type FileRefPublisher struct {
	mu       sync.Mutex
	last     Result
	has      bool
	subs     map[int]chan Result
	nextID   int
	disposed bool
}

// NewFileRefPublisher creates an empty publisher.
func NewFileRefPublisher() *FileRefPublisher {
	return &FileRefPublisher{subs: make(map[int]chan Result)}
}

// Publish records r as the latest known reference and broadcasts it.
func (p *FileRefPublisher) Publish(r Result) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.last = r
	p.has = true
	subs := make([]chan Result, 0, len(p.subs))
	for _, ch := range p.subs {
		subs = append(subs, ch)
	}
	p.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- r:
		default:
		}
	}
}

// Subscribe returns a channel replaying the latest reference (if any)
// followed by every subsequent update.
func (p *FileRefPublisher) Subscribe() (<-chan Result, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan Result, 1)
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	if p.has {
		ch <- p.last
	}
	return ch, id
}

// Unsubscribe removes and closes a previously subscribed channel.
func (p *FileRefPublisher) Unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.subs[id]; ok {
		delete(p.subs, id)
		close(ch)
	}
}

// Current returns the last published reference, if any.
func (p *FileRefPublisher) Current() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.has
}

// Dispose closes every subscriber channel. Idempotent.
func (p *FileRefPublisher) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return
	}
	p.disposed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}
