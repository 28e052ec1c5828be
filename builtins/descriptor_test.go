package builtins

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-builtins/trap"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 5 * time.Millisecond
)

func TestDescriptors(t *testing.T) {
	ds := Descriptors()
	require.Len(t, ds, NumBuiltins)

	seen := make(map[string]bool)
	for i, d := range ds {
		assert.Equal(t, ID(i), d.ID)
		assert.NotEmpty(t, d.Export)
		assert.False(t, seen[d.Export], "duplicate export %s", d.Export)
		seen[d.Export] = true

		found, ok := Lookup(d.Export)
		require.True(t, ok)
		assert.Equal(t, d.ID, found.ID)
	}
}

func TestTrapDescriptors(t *testing.T) {
	tests := []struct {
		reason trap.Reason
		export string
		name   string
	}{
		{trap.Unreachable, "trap_unreachable", "ThrowWasmTrapUnreachable"},
		{trap.MemOutOfBounds, "trap_mem_out_of_bounds", "ThrowWasmTrapMemOutOfBounds"},
		{trap.FuncSigMismatch, "trap_func_sig_mismatch", "ThrowWasmTrapFuncSigMismatch"},
		{trap.TableOutOfBounds, "trap_table_out_of_bounds", "ThrowWasmTrapTableOutOfBounds"},
	}

	for _, tt := range tests {
		t.Run(tt.export, func(t *testing.T) {
			d := Describe(TrapID(tt.reason))
			assert.Equal(t, tt.export, d.Export)
			assert.Equal(t, tt.name, d.Name)
			assert.Empty(t, d.Params)
			assert.Empty(t, d.Results)

			r, ok := d.ID.Trap()
			require.True(t, ok)
			assert.Equal(t, tt.reason, r)
		})
	}
}

func TestIDTrap(t *testing.T) {
	_, ok := WasmMemoryGrow.Trap()
	assert.False(t, ok)
	_, ok = ID(NumBuiltins).Trap()
	assert.False(t, ok)
	assert.Equal(t, "Builtin(999)", ID(999).String())
}

func TestSignature(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{WasmMemoryGrow, "memory-grow: func(num-pages: s32) -> s32"},
		{WasmTableGet, "table-get: func(table-index: u32, entry-index: s32) -> handle"},
		{WasmStackGuard, "stack-guard: func()"},
		{WasmI32AtomicWait, "i32-atomic-wait: func(address: u32, expected-value: s32, timeout: f64) -> s32"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.id).Signature())
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("memory_shrink")
	assert.False(t, ok)
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Unreachable", "unreachable"},
		{"MemOutOfBounds", "mem_out_of_bounds"},
		{"FuncSigMismatch", "func_sig_mismatch"},
		{"HTTPError", "http_error"},
		{"already", "already"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toSnakeCase(tt.in))
	}
}
