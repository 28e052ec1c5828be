package tagged

import (
	"fmt"
	"math"
)

// Tag identifies the representation of a tagged value.
type Tag uint8

const (
	TagSmi Tag = iota
	TagHeapNumber
	TagOddball
	TagObject
)

func (t Tag) String() string {
	switch t {
	case TagSmi:
		return "smi"
	case TagHeapNumber:
		return "heap-number"
	case TagOddball:
		return "oddball"
	case TagObject:
		return "object"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Value is a value in the host's tagged representation.
// Host runtime objects (instances, exceptions) implement it with TagObject.
type Value interface {
	Tag() Tag
}

// HeapNumber is a boxed float64.
type HeapNumber struct {
	value float64
}

func (*HeapNumber) Tag() Tag { return TagHeapNumber }

// Value returns the boxed number.
func (n *HeapNumber) Value() float64 { return n.value }

func (n *HeapNumber) String() string {
	return fmt.Sprintf("HeapNumber(%g)", n.value)
}

type oddball struct {
	name string
}

func (*oddball) Tag() Tag { return TagOddball }

func (o *oddball) String() string { return o.name }

var (
	// Undefined is returned by runtime services with no meaningful result.
	Undefined Value = &oddball{name: "undefined"}
	// Null is the empty reference stored in fresh table slots.
	Null Value = &oddball{name: "null"}
)

// Object is an opaque reference to a host object.
type Object struct {
	payload any
}

// NewObject wraps payload in a tagged reference.
func NewObject(payload any) *Object {
	return &Object{payload: payload}
}

func (*Object) Tag() Tag { return TagObject }

// Payload returns the wrapped host value.
func (o *Object) Payload() any { return o.payload }

func (o *Object) String() string {
	return fmt.Sprintf("Object(%v)", o.payload)
}

// BoxUint32 allocates a HeapNumber holding v.
func BoxUint32(v uint32) *HeapNumber {
	return &HeapNumber{value: float64(v)}
}

// BoxInt32 allocates a HeapNumber holding v.
func BoxInt32(v int32) *HeapNumber {
	return &HeapNumber{value: float64(v)}
}

// BoxFloat64 allocates a HeapNumber holding v.
func BoxFloat64(v float64) *HeapNumber {
	return &HeapNumber{value: v}
}

// NumberValue returns the numeric value of a Smi or HeapNumber.
func NumberValue(v Value) (float64, bool) {
	switch n := v.(type) {
	case Smi:
		return float64(n), true
	case *HeapNumber:
		return n.value, true
	default:
		return 0, false
	}
}

// NumberToUint32 converts a number to uint32 with modular wrap-around,
// matching the ECMAScript ToUint32 conversion.
func NumberToUint32(v Value) (uint32, bool) {
	f, ok := NumberValue(v)
	if !ok {
		return 0, false
	}
	return uint32(toInt64Modular(f)), true
}

// NumberToInt32 converts a number to int32 with modular wrap-around.
func NumberToInt32(v Value) (int32, bool) {
	f, ok := NumberValue(v)
	if !ok {
		return 0, false
	}
	return int32(uint32(toInt64Modular(f))), true
}

func toInt64Modular(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	t := math.Trunc(f)
	m := math.Mod(t, 1<<32)
	return int64(m)
}

// Describe renders v for logs and error details.
func Describe(v Value) string {
	if v == nil {
		return "<raw>"
	}
	switch t := v.(type) {
	case Smi:
		return fmt.Sprintf("Smi(%d)", int32(t))
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%s(%T)", v.Tag(), v)
	}
}
