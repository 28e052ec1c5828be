package builtins

import (
	"context"

	"github.com/wippyai/wasm-builtins/runtime"
	"github.com/wippyai/wasm-builtins/tagged"
)

// Tail is the outcome of a tail dispatch. A builtin that tail-dispatches
// returns it unchanged; only the caller of the builtin resolves it.
type Tail struct {
	result tagged.Value
	err    error
}

// Result returns the runtime service result, or the error it threw.
func (t Tail) Result() (tagged.Value, error) {
	return t.result, t.err
}

// Err returns the thrown error, if any.
func (t Tail) Err() error {
	return t.err
}

// tailCallRuntime dispatches id and forwards its outcome as the builtin's own.
func tailCallRuntime(ctx context.Context, centry *runtime.CEntry, id runtime.FunctionID, nctx *runtime.NativeContext, args ...tagged.Value) Tail {
	result, err := centry.Call(ctx, id, nctx, args...)
	return Tail{result: result, err: err}
}

// callRuntime dispatches id and returns to the builtin.
func callRuntime(ctx context.Context, centry *runtime.CEntry, id runtime.FunctionID, nctx *runtime.NativeContext, args ...tagged.Value) (tagged.Value, error) {
	return centry.Call(ctx, id, nctx, args...)
}
