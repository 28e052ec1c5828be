package runtime

import (
	"context"
	"fmt"

	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/tagged"
)

// FunctionID names a runtime service reachable through CEntry.
type FunctionID uint8

const (
	StackGuard FunctionID = iota
	ThrowStackOverflow
	Throw
	ReThrow
	WasmAtomicNotify
	WasmI32AtomicWait
	WasmI64AtomicWait
	WasmMemoryGrow
	WasmFunctionTableGet
	WasmFunctionTableSet
	ThrowWasmError

	numFunctions = int(iota)
)

type functionInfo struct {
	name  string
	arity int
}

var functionInfos = [numFunctions]functionInfo{
	StackGuard:           {"StackGuard", 0},
	ThrowStackOverflow:   {"ThrowStackOverflow", 0},
	Throw:                {"Throw", 1},
	ReThrow:              {"ReThrow", 1},
	WasmAtomicNotify:     {"WasmAtomicNotify", 3},
	WasmI32AtomicWait:    {"WasmI32AtomicWait", 4},
	WasmI64AtomicWait:    {"WasmI64AtomicWait", 5},
	WasmMemoryGrow:       {"WasmMemoryGrow", 2},
	WasmFunctionTableGet: {"WasmFunctionTableGet", 3},
	WasmFunctionTableSet: {"WasmFunctionTableSet", 4},
	ThrowWasmError:       {"ThrowWasmError", 1},
}

func (id FunctionID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("FunctionID(%d)", uint8(id))
	}
	return functionInfos[id].name
}

// Valid reports whether id names a known runtime service.
func (id FunctionID) Valid() bool {
	return int(id) < numFunctions
}

// Arity is the number of tagged arguments the service expects.
func (id FunctionID) Arity() int {
	return functionInfos[id].arity
}

// FunctionIDs returns every runtime service id.
func FunctionIDs() []FunctionID {
	ids := make([]FunctionID, numFunctions)
	for i := range ids {
		ids[i] = FunctionID(i)
	}
	return ids
}

// Function implements a runtime service.
type Function func(ctx context.Context, args Arguments) (tagged.Value, error)

// Arguments are the tagged arguments of one runtime call.
type Arguments struct {
	// Context is nil for services dispatched without a native context.
	Context *NativeContext
	id      FunctionID
	values  []tagged.Value
}

// NewArguments builds an argument list for calling a Function directly.
func NewArguments(id FunctionID, nctx *NativeContext, values ...tagged.Value) Arguments {
	return Arguments{Context: nctx, id: id, values: values}
}

// Function returns the service being called.
func (a Arguments) Function() FunctionID { return a.id }

func (a Arguments) Len() int { return len(a.values) }

func (a Arguments) At(i int) tagged.Value { return a.values[i] }

// Instance returns argument i as an instance.
func (a Arguments) Instance(i int) (*Instance, error) {
	inst, ok := a.values[i].(*Instance)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseRuntime, a.id.String(), i, "Instance", a.values[i])
	}
	return inst, nil
}

// Smi returns argument i as a small integer.
func (a Arguments) Smi(i int) (int32, error) {
	smi, ok := a.values[i].(tagged.Smi)
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseRuntime, a.id.String(), i, "Smi", a.values[i])
	}
	return int32(smi), nil
}

// Uint32 returns numeric argument i converted with ToUint32.
func (a Arguments) Uint32(i int) (uint32, error) {
	v, ok := tagged.NumberToUint32(a.values[i])
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseRuntime, a.id.String(), i, "Number", a.values[i])
	}
	return v, nil
}

// Int32 returns numeric argument i converted with ToInt32.
func (a Arguments) Int32(i int) (int32, error) {
	v, ok := tagged.NumberToInt32(a.values[i])
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseRuntime, a.id.String(), i, "Number", a.values[i])
	}
	return v, nil
}

// Float64 returns numeric argument i.
func (a Arguments) Float64(i int) (float64, error) {
	v, ok := tagged.NumberValue(a.values[i])
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseRuntime, a.id.String(), i, "Number", a.values[i])
	}
	return v, nil
}
