package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"

	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/runtime"
	"github.com/wippyai/wasm-builtins/tagged"
)

// Instance is a running guest module.
// Calls may run concurrently; each call gets its own wazero call engine.
type Instance struct {
	engine    *Engine
	module    api.Module
	rt        *runtime.Instance
	closeOnce sync.Once
	closeErr  error
}

// Call invokes an exported guest function with raw wasm values.
// Errors thrown by builtins, such as *trap.Error or *runtime.Exception,
// remain reachable with errors.As.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "exported function", name)
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	return results, nil
}

// Runtime returns the host-side instance state builtins read.
func (i *Instance) Runtime() *runtime.Instance {
	return i.rt
}

// Module returns the underlying wazero module.
func (i *Instance) Module() api.Module {
	return i.module
}

// Name returns the instance name, empty for anonymous instances.
func (i *Instance) Name() string {
	return i.rt.Name()
}

// Memory returns the guest memory, or nil.
func (i *Instance) Memory() api.Memory {
	return i.module.Memory()
}

// Table returns host function table idx.
func (i *Instance) Table(idx int) (*runtime.Table, bool) {
	return i.rt.Table(idx)
}

// Refs returns the reference handles guests use for tagged values.
func (i *Instance) Refs() *runtime.Refs {
	return i.rt.Refs()
}

// NewRef stores v and returns the raw handle to pass to the guest.
func (i *Instance) NewRef(v tagged.Value) (uint64, error) {
	h, err := i.rt.Refs().Insert(v)
	if err != nil {
		return 0, err
	}
	return api.EncodeU32(uint32(h)), nil
}

// Ref resolves a raw handle returned by the guest.
func (i *Instance) Ref(raw uint64) (tagged.Value, error) {
	return i.resolve(raw)
}

func (i *Instance) resolve(raw uint64) (tagged.Value, error) {
	h := runtime.Handle(api.DecodeU32(raw))
	v, ok := i.rt.Refs().Get(h)
	if !ok {
		return nil, errors.New(errors.PhaseHost, errors.KindNotFound).
			Value(h).
			Detail("reference handle %d", h).
			Build()
	}
	return v, nil
}

// Close unregisters the instance and closes the guest module.
func (i *Instance) Close(ctx context.Context) error {
	i.closeOnce.Do(func() {
		i.engine.unregister(i)
		i.closeErr = multierr.Combine(
			i.rt.Close(),
			i.module.Close(ctx),
		)
	})
	return i.closeErr
}
