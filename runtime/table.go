package runtime

import (
	"sync"

	"github.com/wippyai/wasm-builtins/tagged"
)

// Table is a guest function table holding tagged references.
type Table struct {
	elements []tagged.Value
	max      uint32
	mu       sync.RWMutex
}

// NewTable creates a table of size null entries. max bounds Grow; 0 means
// unbounded.
func NewTable(size, max uint32) *Table {
	t := &Table{
		elements: make([]tagged.Value, size),
		max:      max,
	}
	for i := range t.elements {
		t.elements[i] = tagged.Null
	}
	return t
}

// Len returns the current table length.
func (t *Table) Len() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return uint32(len(t.elements))
}

// Get returns entry idx, or false if idx is out of bounds.
func (t *Table) Get(idx uint32) (tagged.Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if uint64(idx) >= uint64(len(t.elements)) {
		return nil, false
	}
	return t.elements[idx], true
}

// Set stores v at idx. It returns false if idx is out of bounds.
func (t *Table) Set(idx uint32, v tagged.Value) bool {
	if v == nil {
		v = tagged.Null
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if uint64(idx) >= uint64(len(t.elements)) {
		return false
	}
	t.elements[idx] = v
	return true
}

// Grow appends delta entries initialized to init and returns the previous
// length, or false if the table would exceed its maximum.
func (t *Table) Grow(delta uint32, init tagged.Value) (uint32, bool) {
	if init == nil {
		init = tagged.Null
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := uint32(len(t.elements))
	next := uint64(prev) + uint64(delta)
	if next > uint64(^uint32(0)) || (t.max > 0 && next > uint64(t.max)) {
		return 0, false
	}
	for i := uint32(0); i < delta; i++ {
		t.elements = append(t.elements, init)
	}
	return prev, true
}
