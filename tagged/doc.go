// Package tagged implements the host's uniform tagged value representation and
// the codec between raw machine values and it.
//
// A tagged value is either a small-integer immediate (Smi), a heap-allocated
// boxed number (HeapNumber), an oddball (Undefined, Null) or a reference to a
// host object. Runtime services only ever see tagged values; builtins convert
// raw integers and floats with the functions in this package before dispatch.
//
//	Raw value            Tagged form
//	──────────────────────────────────────────────
//	int in [0, MaxSmi]   Smi (TrySmall)
//	uint32 / int32       *HeapNumber (BoxUint32, BoxInt32)
//	float64              *HeapNumber (BoxFloat64)
//
// Boxed numbers are allocated fresh for every call and are not retained by the
// caller after dispatch.
package tagged
