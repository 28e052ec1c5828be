package builtins

import (
	"context"

	"github.com/wippyai/wasm-builtins/runtime"
	"github.com/wippyai/wasm-builtins/tagged"
	"github.com/wippyai/wasm-builtins/trap"
)

// TrapFunc is a builtin that raises one trap reason. It never resumes the
// caller: its Tail always carries the thrown error.
type TrapFunc func(ctx context.Context, f *runtime.Frame) Tail

var trapBuiltins = func() [trap.NumReasons]TrapFunc {
	var fns [trap.NumReasons]TrapFunc
	for _, r := range trap.Reasons() {
		fns[r] = newTrapBuiltin(r)
	}
	return fns
}()

func newTrapBuiltin(reason trap.Reason) TrapFunc {
	messageID := tagged.SmiFromInt32(int32(trap.MessageID(reason)))
	return func(ctx context.Context, f *runtime.Frame) Tail {
		instance := loadInstanceFromFrame(f)
		centry := loadCEntryFromInstance(instance)
		nctx := loadContextFromInstance(instance)
		return tailCallRuntime(ctx, centry, runtime.ThrowWasmError, nctx, messageID)
	}
}

// TrapBuiltin returns the builtin raising reason, or false if reason is not
// in the trap catalogue.
func TrapBuiltin(reason trap.Reason) (TrapFunc, bool) {
	if !reason.Valid() {
		return nil, false
	}
	return trapBuiltins[reason], true
}

func throwTrap(ctx context.Context, centry *runtime.CEntry, nctx *runtime.NativeContext, reason trap.Reason) Tail {
	messageID := tagged.SmiFromInt32(int32(trap.MessageID(reason)))
	return tailCallRuntime(ctx, centry, runtime.ThrowWasmError, nctx, messageID)
}

// TrapBuiltins returns every trap builtin keyed by the reason it raises.
func TrapBuiltins() map[trap.Reason]TrapFunc {
	out := make(map[trap.Reason]TrapFunc, trap.NumReasons)
	for r, fn := range trapBuiltins {
		out[trap.Reason(r)] = fn
	}
	return out
}
