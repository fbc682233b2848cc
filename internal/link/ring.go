package link

import "sync"

// Ring is a fixed size queue of received words. When full, the oldest word
// is dropped.
type Ring struct {
	mu    sync.Mutex
	words [BufferSize]uint16
	start int
	count int
}

func (r *Ring) Push(word uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == BufferSize {
		r.start = (r.start + 1) % BufferSize
		r.count--
	}
	r.words[(r.start+r.count)%BufferSize] = word
	r.count++
}

func (r *Ring) Pop() uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return NoData
	}
	word := r.words[r.start]
	r.start = (r.start + 1) % BufferSize
	r.count--
	return word
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *Ring) Clear() {
	r.mu.Lock()
	r.start, r.count = 0, 0
	r.mu.Unlock()
}
