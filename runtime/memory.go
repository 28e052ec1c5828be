package runtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-builtins/tagged"
)

// memoryGrow returns the previous size in pages, or -1 if the memory could
// not grow.
func (iso *Isolate) memoryGrow(_ context.Context, args Arguments) (tagged.Value, error) {
	inst, err := args.Instance(0)
	if err != nil {
		return nil, err
	}
	pages, err := args.Smi(1)
	if err != nil {
		return nil, err
	}

	mem := inst.Memory()
	if mem == nil || pages < 0 {
		return tagged.SmiFromInt32(-1), nil
	}

	prev, ok := mem.Grow(uint32(pages))
	if !ok {
		iso.log.Debug("memory grow failed",
			zap.String("instance", inst.Name()),
			zap.Int32("delta_pages", pages))
		return tagged.SmiFromInt32(-1), nil
	}
	return tagged.SmiFromInt32(int32(prev)), nil
}
