package builtins

import (
	"fmt"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-builtins/trap"
)

// ID identifies a builtin.
type ID uint16

const (
	WasmStackGuard ID = iota
	WasmStackOverflow
	WasmThrow
	WasmRethrow
	WasmAtomicNotify
	WasmI32AtomicWait
	WasmI64AtomicWait
	WasmMemoryGrow
	WasmTableGet
	WasmTableSet

	// firstTrapBuiltin is the ID of ThrowWasm<Reason> for reason 0.
	firstTrapBuiltin
)

// NumBuiltins is the number of builtins, trap builtins included.
const NumBuiltins = int(firstTrapBuiltin) + trap.NumReasons

// TrapID returns the ID of the builtin raising reason.
func TrapID(reason trap.Reason) ID {
	return firstTrapBuiltin + ID(reason)
}

// Trap returns the reason raised by a trap builtin.
func (id ID) Trap() (trap.Reason, bool) {
	if id < firstTrapBuiltin || int(id) >= NumBuiltins {
		return 0, false
	}
	return trap.Reason(id - firstTrapBuiltin), true
}

func (id ID) String() string {
	if int(id) >= NumBuiltins {
		return fmt.Sprintf("Builtin(%d)", uint16(id))
	}
	return descriptors[id].Name
}

// Representation is how a raw guest value maps to the builtin's parameter.
type Representation uint8

const (
	// RepRaw values are passed to the builtin as machine integers or floats.
	RepRaw Representation = iota
	// RepSmi values are small constants the guest already guarantees fit a Smi.
	RepSmi
	// RepTagged values are reference handles resolved to tagged values.
	RepTagged
)

func (r Representation) String() string {
	switch r {
	case RepRaw:
		return "raw"
	case RepSmi:
		return "smi"
	case RepTagged:
		return "tagged"
	default:
		return fmt.Sprintf("Representation(%d)", uint8(r))
	}
}

// Param describes one parameter or result of a builtin.
type Param struct {
	Type wit.Type
	Name string
	Rep  Representation
}

// Descriptor is the static calling convention of a builtin.
type Descriptor struct {
	Name    string
	Export  string
	Params  []Param
	Results []Param
	ID      ID
}

var (
	u32 = wit.U32{}
	s32 = wit.S32{}
	f64 = wit.F64{}
)

var descriptors = func() [NumBuiltins]Descriptor {
	var d [NumBuiltins]Descriptor
	d[WasmStackGuard] = Descriptor{Name: "WasmStackGuard", Export: "stack_guard"}
	d[WasmStackOverflow] = Descriptor{Name: "WasmStackOverflow", Export: "stack_overflow"}
	d[WasmThrow] = Descriptor{
		Name:   "WasmThrow",
		Export: "throw",
		Params: []Param{{Name: "exception", Type: u32, Rep: RepTagged}},
	}
	d[WasmRethrow] = Descriptor{
		Name:   "WasmRethrow",
		Export: "rethrow",
		Params: []Param{{Name: "exception", Type: u32, Rep: RepTagged}},
	}
	d[WasmAtomicNotify] = Descriptor{
		Name:   "WasmAtomicNotify",
		Export: "atomic_notify",
		Params: []Param{
			{Name: "address", Type: u32},
			{Name: "count", Type: u32},
		},
		Results: []Param{{Name: "woken", Type: s32}},
	}
	d[WasmI32AtomicWait] = Descriptor{
		Name:   "WasmI32AtomicWait",
		Export: "i32_atomic_wait",
		Params: []Param{
			{Name: "address", Type: u32},
			{Name: "expected-value", Type: s32},
			{Name: "timeout", Type: f64},
		},
		Results: []Param{{Name: "status", Type: s32}},
	}
	d[WasmI64AtomicWait] = Descriptor{
		Name:   "WasmI64AtomicWait",
		Export: "i64_atomic_wait",
		Params: []Param{
			{Name: "address", Type: u32},
			{Name: "expected-value-high", Type: u32},
			{Name: "expected-value-low", Type: u32},
			{Name: "timeout", Type: f64},
		},
		Results: []Param{{Name: "status", Type: s32}},
	}
	d[WasmMemoryGrow] = Descriptor{
		Name:    "WasmMemoryGrow",
		Export:  "memory_grow",
		Params:  []Param{{Name: "num-pages", Type: s32}},
		Results: []Param{{Name: "previous-pages", Type: s32}},
	}
	d[WasmTableGet] = Descriptor{
		Name:   "WasmTableGet",
		Export: "table_get",
		Params: []Param{
			{Name: "table-index", Type: u32, Rep: RepSmi},
			{Name: "entry-index", Type: s32},
		},
		Results: []Param{{Name: "value", Type: u32, Rep: RepTagged}},
	}
	d[WasmTableSet] = Descriptor{
		Name:   "WasmTableSet",
		Export: "table_set",
		Params: []Param{
			{Name: "table-index", Type: u32, Rep: RepSmi},
			{Name: "entry-index", Type: s32},
			{Name: "value", Type: u32, Rep: RepTagged},
		},
	}
	for _, r := range trap.Reasons() {
		name := strings.TrimPrefix(r.String(), "Trap")
		d[TrapID(r)] = Descriptor{
			Name:   "ThrowWasm" + r.String(),
			Export: "trap_" + toSnakeCase(name),
		}
	}
	for i := range d {
		d[i].ID = ID(i)
	}
	return d
}()

var byExport = func() map[string]ID {
	m := make(map[string]ID, NumBuiltins)
	for _, d := range descriptors {
		m[d.Export] = d.ID
	}
	return m
}()

// Descriptors returns every builtin descriptor in ID order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, NumBuiltins)
	copy(out, descriptors[:])
	return out
}

// Describe returns the descriptor of id.
func Describe(id ID) Descriptor {
	return descriptors[id]
}

// Lookup finds a builtin by export name.
func Lookup(export string) (Descriptor, bool) {
	id, ok := byExport[export]
	if !ok {
		return Descriptor{}, false
	}
	return descriptors[id], true
}

// Signature renders d as a WIT function type, e.g.
// "memory-grow: func(num-pages: s32) -> s32".
func (d Descriptor) Signature() string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(d.Export, "_", "-"))
	b.WriteString(": func(")
	for i, p := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(typeName(p))
	}
	b.WriteByte(')')
	if len(d.Results) == 1 {
		b.WriteString(" -> ")
		b.WriteString(typeName(d.Results[0]))
	}
	return b.String()
}

func typeName(p Param) string {
	if p.Rep == RepTagged {
		return "handle"
	}
	switch p.Type.(type) {
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	default:
		return fmt.Sprintf("%T", p.Type)
	}
}

// toSnakeCase converts PascalCase to snake_case.
// Handles acronyms: FuncSigMismatch -> func_sig_mismatch, HTTPError -> http_error
func toSnakeCase(s string) string {
	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsUpper(r) {
			acronymEnd := i + 1
			for acronymEnd < len(runes) && unicode.IsUpper(runes[acronymEnd]) {
				acronymEnd++
			}

			if acronymEnd > i+1 {
				// Last uppercase before lowercase starts next word, not part of acronym
				if acronymEnd < len(runes) && unicode.IsLower(runes[acronymEnd]) {
					acronymEnd--
				}
			}

			if i > 0 {
				result.WriteByte('_')
			}

			for j := i; j < acronymEnd; j++ {
				result.WriteRune(unicode.ToLower(runes[j]))
			}
			i = acronymEnd - 1
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
