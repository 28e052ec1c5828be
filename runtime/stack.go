package runtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/tagged"
)

// InterruptFunc runs at the next stack check of any instance in the isolate.
// A non-nil error is thrown into the guest.
type InterruptFunc func(ctx context.Context) error

// RequestInterrupt queues fn to run on the next StackGuard dispatch.
func (iso *Isolate) RequestInterrupt(fn InterruptFunc) {
	iso.interruptMu.Lock()
	iso.interrupts = append(iso.interrupts, fn)
	iso.interruptMu.Unlock()
}

// TerminateExecution makes every subsequent stack check throw.
func (iso *Isolate) TerminateExecution() {
	iso.terminating.Store(true)
}

// CancelTerminateExecution clears a pending termination request.
func (iso *Isolate) CancelTerminateExecution() {
	iso.terminating.Store(false)
}

// IsExecutionTerminating reports whether termination was requested.
func (iso *Isolate) IsExecutionTerminating() bool {
	return iso.terminating.Load()
}

func (iso *Isolate) stackGuard(ctx context.Context, _ Arguments) (tagged.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Terminated(err)
	}
	if iso.terminating.Load() {
		return nil, errors.Terminated(nil)
	}

	iso.interruptMu.Lock()
	pending := iso.interrupts
	iso.interrupts = nil
	iso.interruptMu.Unlock()

	for i, fn := range pending {
		if err := fn(ctx); err != nil {
			// Interrupts not yet run stay queued for the next check.
			iso.interruptMu.Lock()
			iso.interrupts = append(pending[i+1:len(pending):len(pending)], iso.interrupts...)
			iso.interruptMu.Unlock()
			iso.log.Debug("interrupt threw", zap.Error(err))
			return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInterrupted, err, "interrupt")
		}
	}
	return tagged.Undefined, nil
}

func (iso *Isolate) throwStackOverflow(_ context.Context, args Arguments) (tagged.Value, error) {
	iso.log.Debug("stack overflow", zap.Stringer("context", args.Context))
	return nil, errors.StackOverflow()
}
