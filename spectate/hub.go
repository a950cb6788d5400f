package spectate

import "sync"

// Hub keeps the latest frame and fans new ones out to subscribers. Slow
// subscribers miss frames rather than stall the game loop.
type Hub struct {
	mu     sync.RWMutex
	latest *Frame
	subs   map[chan Frame]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Frame]struct{})}
}

func (h *Hub) Publish(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = &f
	for ch := range h.subs {
		select {
		case ch <- f:
		default:
		}
	}
}

func (h *Hub) Latest() (Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Frame{}, false
	}
	return *h.latest, true
}

// Subscribe returns a channel of future frames and a func to stop.
func (h *Hub) Subscribe(buffer int) (<-chan Frame, func()) {
	ch := make(chan Frame, max(buffer, 1))
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
