package runtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-builtins/tagged"
	"github.com/wippyai/wasm-builtins/trap"
)

func (iso *Isolate) throwWasmError(_ context.Context, args Arguments) (tagged.Value, error) {
	id, err := args.Smi(0)
	if err != nil {
		return nil, err
	}
	return nil, iso.newTrap(trap.MessageTemplate(id), args.Context)
}

func (iso *Isolate) newTrap(id trap.MessageTemplate, nctx *NativeContext) *trap.Error {
	e := trap.NewError(id)
	iso.log.Debug("wasm trap",
		zap.Stringer("reason", e.Reason),
		zap.Stringer("context", nctx))
	return e
}
