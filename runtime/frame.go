package runtime

import "github.com/wippyai/wasm-builtins/tagged"

// FrameType distinguishes compiled guest frames from builtin frames.
type FrameType uint8

const (
	FrameWasmCompiled FrameType = iota
	FrameBuiltin
)

// Fixed slots of a compiled wasm frame.
const (
	FrameSlotInstance = iota
	FrameSlotFunctionIndex

	frameSlotCount
)

// Frame is a stack frame as seen by the stack walker.
type Frame struct {
	parent *Frame
	slots  [frameSlotCount]tagged.Value
	typ    FrameType
}

// NewWasmFrame creates the frame of a compiled guest function running in inst.
func NewWasmFrame(inst *Instance, funcIndex uint32) *Frame {
	f := &Frame{typ: FrameWasmCompiled}
	f.slots[FrameSlotInstance] = inst
	f.slots[FrameSlotFunctionIndex] = tagged.BoxUint32(funcIndex)
	return f
}

// EnterBuiltin pushes a builtin frame called from f.
func (f *Frame) EnterBuiltin() *Frame {
	return &Frame{parent: f, typ: FrameBuiltin}
}

// Parent returns the calling frame, or nil for the outermost frame.
func (f *Frame) Parent() *Frame { return f.parent }

func (f *Frame) Type() FrameType { return f.typ }

// Load reads a fixed slot. Builtin frames have no populated slots.
func (f *Frame) Load(slot int) tagged.Value {
	return f.slots[slot]
}
