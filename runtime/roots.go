package runtime

// Slot indexes a RootTable entry.
type Slot int

const (
	// SlotCEntry holds the generic call stub used to reach runtime services.
	SlotCEntry Slot = iota

	numSlots = int(iota)
)

// Code is an entry point stored in the root table.
type Code interface {
	Name() string
}

// RootTable is the isolate-wide table of builtin entry points.
// It is immutable once the isolate is constructed.
type RootTable struct {
	slots [numSlots]Code
}

func newRootTable(iso *Isolate) *RootTable {
	rt := &RootTable{}
	rt.slots[SlotCEntry] = &CEntry{isolate: iso}
	return rt
}

// Load reads a slot without validation.
func (rt *RootTable) Load(slot Slot) Code {
	return rt.slots[slot]
}
