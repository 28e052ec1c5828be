package trap

import "fmt"

// Reason is an abstract trap category.
type Reason uint8

const (
	Unreachable Reason = iota
	MemOutOfBounds
	UnalignedAccess
	DivByZero
	DivUnrepresentable
	RemByZero
	FloatUnrepresentable
	FuncInvalid
	FuncSigMismatch
	DataSegmentDropped
	ElemSegmentDropped
	TableOutOfBounds

	NumReasons = int(iota)
)

var reasonNames = [NumReasons]string{
	Unreachable:          "Unreachable",
	MemOutOfBounds:       "MemOutOfBounds",
	UnalignedAccess:      "UnalignedAccess",
	DivByZero:            "DivByZero",
	DivUnrepresentable:   "DivUnrepresentable",
	RemByZero:            "RemByZero",
	FloatUnrepresentable: "FloatUnrepresentable",
	FuncInvalid:          "FuncInvalid",
	FuncSigMismatch:      "FuncSigMismatch",
	DataSegmentDropped:   "DataSegmentDropped",
	ElemSegmentDropped:   "ElemSegmentDropped",
	TableOutOfBounds:     "TableOutOfBounds",
}

func (r Reason) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Reason(%d)", uint8(r))
	}
	return "Trap" + reasonNames[r]
}

// Valid reports whether r is a member of the catalogue.
func (r Reason) Valid() bool {
	return int(r) < NumReasons
}

// Reasons returns every reason in catalogue order.
func Reasons() []Reason {
	out := make([]Reason, NumReasons)
	for i := range out {
		out[i] = Reason(i)
	}
	return out
}
