package runtime

import (
	"context"

	"github.com/wippyai/wasm-builtins/tagged"
)

// Exception is a guest exception propagating through the host.
type Exception struct {
	Value    tagged.Value
	Rethrown bool
}

func (e *Exception) Error() string {
	if e.Rethrown {
		return "uncaught wasm exception (rethrown): " + tagged.Describe(e.Value)
	}
	return "uncaught wasm exception: " + tagged.Describe(e.Value)
}

func throwException(_ context.Context, args Arguments) (tagged.Value, error) {
	return nil, &Exception{Value: args.At(0)}
}

func rethrowException(_ context.Context, args Arguments) (tagged.Value, error) {
	return nil, &Exception{Value: args.At(0), Rethrown: true}
}
