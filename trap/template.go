package trap

import "fmt"

// MessageTemplate identifies a message understood by the host error formatter.
type MessageTemplate int32

const (
	WasmTrapUnreachable          MessageTemplate = 201
	WasmTrapMemOutOfBounds       MessageTemplate = 202
	WasmTrapUnalignedAccess      MessageTemplate = 203
	WasmTrapDivByZero            MessageTemplate = 204
	WasmTrapDivUnrepresentable   MessageTemplate = 205
	WasmTrapRemByZero            MessageTemplate = 206
	WasmTrapFloatUnrepresentable MessageTemplate = 207
	WasmTrapFuncInvalid          MessageTemplate = 208
	WasmTrapFuncSigMismatch      MessageTemplate = 209
	WasmTrapDataSegmentDropped   MessageTemplate = 210
	WasmTrapElemSegmentDropped   MessageTemplate = 211
	WasmTrapTableOutOfBounds     MessageTemplate = 212
)

var messageIDs = [NumReasons]MessageTemplate{
	Unreachable:          WasmTrapUnreachable,
	MemOutOfBounds:       WasmTrapMemOutOfBounds,
	UnalignedAccess:      WasmTrapUnalignedAccess,
	DivByZero:            WasmTrapDivByZero,
	DivUnrepresentable:   WasmTrapDivUnrepresentable,
	RemByZero:            WasmTrapRemByZero,
	FloatUnrepresentable: WasmTrapFloatUnrepresentable,
	FuncInvalid:          WasmTrapFuncInvalid,
	FuncSigMismatch:      WasmTrapFuncSigMismatch,
	DataSegmentDropped:   WasmTrapDataSegmentDropped,
	ElemSegmentDropped:   WasmTrapElemSegmentDropped,
	TableOutOfBounds:     WasmTrapTableOutOfBounds,
}

var messageText = map[MessageTemplate]string{
	WasmTrapUnreachable:          "unreachable",
	WasmTrapMemOutOfBounds:       "memory access out of bounds",
	WasmTrapUnalignedAccess:      "operation does not support unaligned accesses",
	WasmTrapDivByZero:            "divide by zero",
	WasmTrapDivUnrepresentable:   "divide result unrepresentable",
	WasmTrapRemByZero:            "remainder by zero",
	WasmTrapFloatUnrepresentable: "float unrepresentable in integer range",
	WasmTrapFuncInvalid:          "invalid index into function table",
	WasmTrapFuncSigMismatch:      "function signature mismatch",
	WasmTrapDataSegmentDropped:   "data segment has been dropped",
	WasmTrapElemSegmentDropped:   "element segment has been dropped",
	WasmTrapTableOutOfBounds:     "table access out of bounds",
}

var reasonsByID = func() map[MessageTemplate]Reason {
	m := make(map[MessageTemplate]Reason, NumReasons)
	for r, id := range messageIDs {
		m[id] = Reason(r)
	}
	return m
}()

// MessageID returns the message template for r.
// It panics if r is not in the catalogue.
func MessageID(r Reason) MessageTemplate {
	return messageIDs[r]
}

// ReasonFor is the inverse of MessageID.
func ReasonFor(id MessageTemplate) (Reason, bool) {
	r, ok := reasonsByID[id]
	return r, ok
}

// Text returns the formatted message for the template.
func (t MessageTemplate) Text() string {
	if s, ok := messageText[t]; ok {
		return s
	}
	return fmt.Sprintf("unknown message template %d", int32(t))
}

func (t MessageTemplate) String() string {
	r, ok := ReasonFor(t)
	if !ok {
		return fmt.Sprintf("MessageTemplate(%d)", int32(t))
	}
	return "kWasm" + r.String()
}
