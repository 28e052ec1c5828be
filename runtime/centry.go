package runtime

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/tagged"
)

// CEntry is the generic call stub. Every runtime service is reached through it.
type CEntry struct {
	isolate *Isolate
}

func (*CEntry) Name() string { return "CEntry_Return1_ArgvOnStack" }

// Call runs service id with the given native context and tagged arguments.
// nctx may be nil for services that run without a context.
//
// Services may re-enter guest code, so args must not alias raw guest memory.
func (c *CEntry) Call(ctx context.Context, id FunctionID, nctx *NativeContext, args ...tagged.Value) (tagged.Value, error) {
	if !id.Valid() {
		return nil, errors.NotFound(errors.PhaseDispatch, "runtime function", id.String())
	}
	if len(args) != id.Arity() {
		return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Service(id.String()).
			Detail("expected %d arguments, got %d", id.Arity(), len(args)).
			Build()
	}
	for i, arg := range args {
		if arg == nil {
			return nil, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
				Service(id.String()).
				Detail("argument %d is not a tagged value", i).
				Build()
		}
	}

	fn := c.isolate.functions[id]
	if fn == nil {
		return nil, errors.NotInitialized(errors.PhaseDispatch, id.String())
	}

	start := time.Now()
	result, err := fn(ctx, Arguments{Context: nctx, id: id, values: args})
	if err == nil && result == nil {
		result = tagged.Undefined
	}
	elapsed := time.Since(start)

	if ce := c.isolate.log.Check(zap.DebugLevel, "runtime call"); ce != nil {
		ce.Write(
			zap.Stringer("function", id),
			zap.Stringer("context", nctx),
			zap.Int("argc", len(args)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}

	c.isolate.record(DispatchEvent{
		Function: id,
		Context:  nctx,
		Args:     args,
		Result:   result,
		Err:      err,
		Duration: elapsed,
	})

	return result, err
}
