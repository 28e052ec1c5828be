// Package memtest provides an in-memory wasmbuiltins.Memory for tests.
package memtest

import (
	"encoding/binary"
	"sync"

	wasmbuiltins "github.com/wippyai/wasm-builtins"
)

// Memory is a growable byte slice with page granularity.
type Memory struct {
	data     []byte
	maxPages uint32
	mu       sync.Mutex
}

var _ wasmbuiltins.Memory = (*Memory)(nil)

// New creates a memory of pages pages that can grow up to maxPages.
func New(pages, maxPages uint32) *Memory {
	return &Memory{
		data:     make([]byte, int(pages)*wasmbuiltins.PageSize),
		maxPages: maxPages,
	}
}

func (m *Memory) Size() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(len(m.data))
}

func (m *Memory) Pages() uint32 {
	return m.Size() / wasmbuiltins.PageSize
}

func (m *Memory) Grow(deltaPages uint32) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := uint32(len(m.data) / wasmbuiltins.PageSize)
	if uint64(prev)+uint64(deltaPages) > uint64(m.maxPages) {
		return 0, false
	}
	m.data = append(m.data, make([]byte, int(deltaPages)*wasmbuiltins.PageSize)...)
	return prev, true
}

func (m *Memory) ReadUint32Le(offset uint32) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(offset)+4 > uint64(len(m.data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), true
}

func (m *Memory) ReadUint64Le(offset uint32) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(offset)+8 > uint64(len(m.data)) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), true
}

func (m *Memory) WriteUint32Le(offset, v uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(offset)+4 > uint64(len(m.data)) {
		return false
	}
	binary.LittleEndian.PutUint32(m.data[offset:], v)
	return true
}

func (m *Memory) WriteUint64Le(offset uint32, v uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(offset)+8 > uint64(len(m.data)) {
		return false
	}
	binary.LittleEndian.PutUint64(m.data[offset:], v)
	return true
}
