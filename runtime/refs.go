package runtime

import (
	"errors"
	"sync"

	"github.com/wippyai/wasm-builtins/tagged"
)

// ErrRefsClosed is returned when inserting into a closed handle table.
var ErrRefsClosed = errors.New("reference table closed")

// Handle is the i32 a guest holds in place of a tagged reference.
// Handle 0 is the null reference.
type Handle uint32

// Refs maps guest handles to tagged references.
type Refs struct {
	entries  []tagged.Value
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

// NewRefs creates an empty handle table.
func NewRefs() *Refs {
	return &Refs{
		entries:  make([]tagged.Value, 0, 16),
		freeList: make([]Handle, 0, 8),
	}
}

// Insert stores v and returns its handle. Null and nil map to handle 0.
func (r *Refs) Insert(v tagged.Value) (Handle, error) {
	if v == nil || v == tagged.Null {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrRefsClosed
	}

	if len(r.freeList) > 0 {
		h := r.freeList[len(r.freeList)-1]
		r.freeList = r.freeList[:len(r.freeList)-1]
		r.entries[h-1] = v
		return h, nil
	}

	r.entries = append(r.entries, v)
	return Handle(len(r.entries)), nil
}

// Get resolves h. Handle 0 resolves to Null.
func (r *Refs) Get(h Handle) (tagged.Value, bool) {
	if h == 0 {
		return tagged.Null, true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := int(h) - 1
	if idx >= len(r.entries) || r.entries[idx] == nil {
		return nil, false
	}
	return r.entries[idx], true
}

// Drop releases h and returns the value it referred to.
func (r *Refs) Drop(h Handle) (tagged.Value, bool) {
	if h == 0 {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := int(h) - 1
	if idx >= len(r.entries) || r.entries[idx] == nil {
		return nil, false
	}
	v := r.entries[idx]
	r.entries[idx] = nil
	r.freeList = append(r.freeList, h)
	return v, true
}

// Len returns the number of live handles.
func (r *Refs) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries) - len(r.freeList)
}

// Close drops every handle.
func (r *Refs) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.entries = nil
	r.freeList = nil
	return nil
}
