package compass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	tests := map[float64]string{0: "N", 10: "N", 12: "NNE", 225: "SW", 350: "N", 348: "NNW", -90: "W", 360: "N"}
	for deg, want := range tests {
		assert.Equal(t, want, Label(deg), "degrees %v", deg)
	}
}

func TestDegrees(t *testing.T) {
	d, ok := Degrees("WSW")
	assert.True(t, ok)
	assert.Equal(t, 247.5, d)

	_, ok = Degrees("NORTH")
	assert.False(t, ok)
}
