// Package wasmtest encodes minimal WebAssembly binaries for tests and demos.
package wasmtest

import (
	"encoding/binary"
	"math"
)

// ValType is a wasm value type.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
	F32 ValType = 0x7d
	F64 ValType = 0x7c
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is an imported function.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Func is a defined function. Export is empty for unexported functions.
type Func struct {
	Export string
	Type   FuncType
	Locals []ValType
	// Body is the instruction sequence without the final end opcode.
	Body []byte
}

// Memory declares the module's linear memory.
type Memory struct {
	Min    uint32
	Max    uint32
	HasMax bool
	Shared bool
	Export string
}

// Module is a module with imports, functions and an optional memory.
// Function indexes number imports first.
type Module struct {
	Imports []Import
	Funcs   []Func
	Memory  *Memory
}

const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10
)

// Encode returns the binary encoding of m.
func (m *Module) Encode() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	var types []byte
	types = appendU32(types, uint32(len(m.Imports)+len(m.Funcs)))
	for _, imp := range m.Imports {
		types = appendFuncType(types, imp.Type)
	}
	for _, fn := range m.Funcs {
		types = appendFuncType(types, fn.Type)
	}
	out = appendSection(out, sectionType, types)

	if len(m.Imports) > 0 {
		var imports []byte
		imports = appendU32(imports, uint32(len(m.Imports)))
		for i, imp := range m.Imports {
			imports = appendName(imports, imp.Module)
			imports = appendName(imports, imp.Name)
			imports = append(imports, 0x00)
			imports = appendU32(imports, uint32(i))
		}
		out = appendSection(out, sectionImport, imports)
	}

	if len(m.Funcs) > 0 {
		var funcs []byte
		funcs = appendU32(funcs, uint32(len(m.Funcs)))
		for i := range m.Funcs {
			funcs = appendU32(funcs, uint32(len(m.Imports)+i))
		}
		out = appendSection(out, sectionFunction, funcs)
	}

	if m.Memory != nil {
		var mem []byte
		mem = appendU32(mem, 1)
		switch {
		case m.Memory.Shared:
			mem = append(mem, 0x03)
			mem = appendU32(mem, m.Memory.Min)
			mem = appendU32(mem, m.Memory.Max)
		case m.Memory.HasMax:
			mem = append(mem, 0x01)
			mem = appendU32(mem, m.Memory.Min)
			mem = appendU32(mem, m.Memory.Max)
		default:
			mem = append(mem, 0x00)
			mem = appendU32(mem, m.Memory.Min)
		}
		out = appendSection(out, sectionMemory, mem)
	}

	var exports []byte
	var numExports uint32
	for i, fn := range m.Funcs {
		if fn.Export == "" {
			continue
		}
		numExports++
		exports = appendName(exports, fn.Export)
		exports = append(exports, 0x00)
		exports = appendU32(exports, uint32(len(m.Imports)+i))
	}
	if m.Memory != nil && m.Memory.Export != "" {
		numExports++
		exports = appendName(exports, m.Memory.Export)
		exports = append(exports, 0x02)
		exports = appendU32(exports, 0)
	}
	if numExports > 0 {
		out = appendSection(out, sectionExport, append(appendU32(nil, numExports), exports...))
	}

	if len(m.Funcs) > 0 {
		var code []byte
		code = appendU32(code, uint32(len(m.Funcs)))
		for _, fn := range m.Funcs {
			var body []byte
			body = appendU32(body, uint32(len(fn.Locals)))
			for _, l := range fn.Locals {
				body = appendU32(body, 1)
				body = append(body, byte(l))
			}
			body = append(body, fn.Body...)
			body = append(body, opEnd)
			code = appendU32(code, uint32(len(body)))
			code = append(code, body...)
		}
		out = appendSection(out, sectionCode, code)
	}

	return out
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = appendU32(out, uint32(len(payload)))
	return append(out, payload...)
}

func appendFuncType(out []byte, t FuncType) []byte {
	out = append(out, 0x60)
	out = appendU32(out, uint32(len(t.Params)))
	for _, p := range t.Params {
		out = append(out, byte(p))
	}
	out = appendU32(out, uint32(len(t.Results)))
	for _, r := range t.Results {
		out = append(out, byte(r))
	}
	return out
}

func appendName(out []byte, s string) []byte {
	out = appendU32(out, uint32(len(s)))
	return append(out, s...)
}

func appendU32(out []byte, v uint32) []byte {
	return binary.AppendUvarint(out, uint64(v))
}

func appendS64(out []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

const (
	opUnreachable = 0x00
	opDrop        = 0x1a
	opEnd         = 0x0b
	opCall        = 0x10
	opLocalGet    = 0x20
	opI32Const    = 0x41
	opI64Const    = 0x42
	opF64Const    = 0x44
)

// Code concatenates instruction sequences.
func Code(instrs ...[]byte) []byte {
	var out []byte
	for _, in := range instrs {
		out = append(out, in...)
	}
	return out
}

// Call calls function idx.
func Call(idx uint32) []byte { return appendU32([]byte{opCall}, idx) }

// LocalGet pushes local idx.
func LocalGet(idx uint32) []byte { return appendU32([]byte{opLocalGet}, idx) }

// I32Const pushes v.
func I32Const(v int32) []byte { return appendS64([]byte{opI32Const}, int64(v)) }

// I64Const pushes v.
func I64Const(v int64) []byte { return appendS64([]byte{opI64Const}, v) }

// F64Const pushes v.
func F64Const(v float64) []byte {
	return binary.LittleEndian.AppendUint64([]byte{opF64Const}, math.Float64bits(v))
}

// Drop discards the top of the stack.
func Drop() []byte { return []byte{opDrop} }

// Unreachable traps.
func Unreachable() []byte { return []byte{opUnreachable} }
