package tagged

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmiRange(t *testing.T) {
	assert.Equal(t, int64(1<<30-1), int64(MaxSmi))
	assert.Equal(t, int64(-(1 << 30)), int64(MinSmi))
}

func TestTrySmall(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		ok   bool
	}{
		{"zero", 0, true},
		{"one", 1, true},
		{"max smi", MaxSmi, true},
		{"max smi plus one", MaxSmi + 1, false},
		{"max int32", math.MaxInt32, false},
		{"minus one", -1, false},
		{"min int32", math.MinInt32, false},
		{"large", 1 << 40, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			smi, ok := TrySmall(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ok, IsValidPositiveSmi(tt.in))
			if ok {
				assert.Equal(t, tt.in, int64(smi))
			}
		})
	}
}

func TestSmiRoundTrip(t *testing.T) {
	values := []int64{0, 1, 2, 7, 255, 256, 65535, 65536, 1 << 20, MaxSmi - 1, MaxSmi}
	for step := int64(1); step < MaxSmi; step = step*3 + 1 {
		values = append(values, step)
	}

	for _, v := range values {
		smi, ok := TrySmall(v)
		require.True(t, ok, "TrySmall(%d)", v)
		assert.Equal(t, int32(v), UnboxSmi(smi))
	}
}

func TestUnboxSmiPanicsOnNonSmi(t *testing.T) {
	assert.Panics(t, func() { UnboxSmi(BoxInt32(3)) })
	assert.Panics(t, func() { UnboxSmi(Undefined) })
}

func TestSmiFromInt32AllowsNegative(t *testing.T) {
	assert.Equal(t, int32(-1), UnboxSmi(SmiFromInt32(-1)))
	assert.Equal(t, TagSmi, SmiFromInt32(-1).Tag())
}
