package runtime

import (
	"context"

	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/tagged"
	"github.com/wippyai/wasm-builtins/trap"
)

// tableEntry resolves the table and validates the entry index against its
// current length. Out-of-range entries raise the table bounds trap.
func (iso *Isolate) tableEntry(args Arguments) (*Table, uint32, error) {
	inst, err := args.Instance(0)
	if err != nil {
		return nil, 0, err
	}
	tableIndex, err := args.Smi(1)
	if err != nil {
		return nil, 0, err
	}
	entryIndex, err := args.Smi(2)
	if err != nil {
		return nil, 0, err
	}

	table, ok := inst.Table(int(tableIndex))
	if !ok {
		return nil, 0, errors.OutOfBounds(errors.PhaseRuntime, "table", uint64(tableIndex), uint64(inst.NumTables()))
	}
	if entryIndex < 0 || uint32(entryIndex) >= table.Len() {
		return nil, 0, iso.newTrap(trap.MessageID(trap.TableOutOfBounds), args.Context)
	}
	return table, uint32(entryIndex), nil
}

func (iso *Isolate) functionTableGet(_ context.Context, args Arguments) (tagged.Value, error) {
	table, idx, err := iso.tableEntry(args)
	if err != nil {
		return nil, err
	}
	v, _ := table.Get(idx)
	return v, nil
}

func (iso *Isolate) functionTableSet(_ context.Context, args Arguments) (tagged.Value, error) {
	table, idx, err := iso.tableEntry(args)
	if err != nil {
		return nil, err
	}
	if !table.Set(idx, args.At(3)) {
		return nil, iso.newTrap(trap.MessageID(trap.TableOutOfBounds), args.Context)
	}
	return tagged.Undefined, nil
}
