package tagged

// SmiValueSize is the payload width of a small-integer immediate; one bit of
// the tag word is reserved for the tag.
const SmiValueSize = 31

const (
	MaxSmi = 1<<(SmiValueSize-1) - 1
	MinSmi = -(1 << (SmiValueSize - 1))
)

// Smi is a small-integer immediate.
type Smi int32

func (Smi) Tag() Tag { return TagSmi }

// IsValidPositiveSmi reports whether v is in [0, MaxSmi].
func IsValidPositiveSmi(v int64) bool {
	return v >= 0 && v <= MaxSmi
}

// TrySmall returns v as a Smi when it lies in the representable positive range.
func TrySmall(v int64) (Smi, bool) {
	if !IsValidPositiveSmi(v) {
		return 0, false
	}
	return Smi(v), true
}

// SmiFromInt32 tags v without a range check. Callers must know v fits.
func SmiFromInt32(v int32) Smi {
	return Smi(v)
}

// UnboxSmi extracts the raw integer from a value that is a Smi by protocol,
// such as the result of a runtime service declared to return one.
// It panics if v is not a Smi.
func UnboxSmi(v Value) int32 {
	return int32(v.(Smi))
}
