package wasmbuiltins

// Memory is the view of a guest's linear memory that runtime services need.
// wazero's api.Memory satisfies it.
type Memory interface {
	// Size returns the memory size in bytes.
	Size() uint32
	// Grow grows memory by deltaPages (64KiB each) and returns the previous
	// size in pages, or false if the memory could not grow.
	Grow(deltaPages uint32) (previousPages uint32, ok bool)
	ReadUint32Le(offset uint32) (uint32, bool)
	ReadUint64Le(offset uint32) (uint64, bool)
}

// PageSize is the WebAssembly page size in bytes.
const PageSize = 65536
