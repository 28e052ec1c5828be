package builtins

import (
	"github.com/wippyai/wasm-builtins/runtime"
)

// loadInstanceFromFrame reads the instance slot of the frame that called the
// builtin. f must be a builtin frame entered from a compiled wasm frame.
func loadInstanceFromFrame(f *runtime.Frame) *runtime.Instance {
	return f.Parent().Load(runtime.FrameSlotInstance).(*runtime.Instance)
}

func loadContextFromInstance(inst *runtime.Instance) *runtime.NativeContext {
	return inst.NativeContext()
}

func loadCEntryFromInstance(inst *runtime.Instance) *runtime.CEntry {
	return inst.IsolateRoot().Load(runtime.SlotCEntry).(*runtime.CEntry)
}
