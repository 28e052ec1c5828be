package runtime

import (
	"fmt"

	wasmbuiltins "github.com/wippyai/wasm-builtins"
	"github.com/wippyai/wasm-builtins/tagged"
)

// Instance is the host-side state of one sandbox instance.
// Builtins only ever read it; the embedder owns its lifetime.
type Instance struct {
	nativeContext *NativeContext
	isolateRoot   *RootTable
	memory        wasmbuiltins.Memory
	refs          *Refs
	name          string
	tables        []*Table
}

// InstanceConfig describes the state a new instance is created with.
type InstanceConfig struct {
	// Memory is the guest linear memory, nil if the guest has none.
	Memory wasmbuiltins.Memory
	Name   string
	Tables []*Table
}

// NewInstance creates an instance in a fresh native context.
func (iso *Isolate) NewInstance(cfg InstanceConfig) *Instance {
	return &Instance{
		nativeContext: iso.NewNativeContext(cfg.Name),
		isolateRoot:   iso.roots,
		memory:        cfg.Memory,
		refs:          NewRefs(),
		name:          cfg.Name,
		tables:        cfg.Tables,
	}
}

func (*Instance) Tag() tagged.Tag { return tagged.TagObject }

// NativeContext returns the instance's native context. Never nil.
func (i *Instance) NativeContext() *NativeContext { return i.nativeContext }

// IsolateRoot returns the root table of the owning isolate.
func (i *Instance) IsolateRoot() *RootTable { return i.isolateRoot }

// Memory returns the guest memory, or nil.
func (i *Instance) Memory() wasmbuiltins.Memory { return i.memory }

// Refs returns the reference handle table of the instance.
func (i *Instance) Refs() *Refs { return i.refs }

func (i *Instance) Name() string { return i.name }

// Table returns function table idx.
func (i *Instance) Table(idx int) (*Table, bool) {
	if idx < 0 || idx >= len(i.tables) {
		return nil, false
	}
	return i.tables[idx], true
}

// NumTables returns the number of function tables.
func (i *Instance) NumTables() int { return len(i.tables) }

func (i *Instance) String() string {
	return fmt.Sprintf("Instance(%s)", i.name)
}

// Close releases the reference handles held by the instance.
func (i *Instance) Close() error {
	return i.refs.Close()
}
