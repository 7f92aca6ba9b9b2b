package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMixerCurve checks the non-linear pulse/TND mixer against a handful of
// known points on its curve rather than just the all-zero case.
func TestMixerCurve(t *testing.T) {
	a := New()
	require.NotNil(t, a)

	cases := []struct {
		name                 string
		pulse1, pulse2       uint8
		triangle, noise, dmc uint8
		wantSilence          bool
	}{
		{name: "all channels silent", wantSilence: true},
		{name: "single pulse channel", pulse1: 15, wantSilence: false},
		{name: "triangle only", triangle: 15, wantSilence: false},
		{name: "full mix", pulse1: 15, pulse2: 15, triangle: 15, noise: 15, dmc: 127, wantSilence: false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := a.mixChannels(c.pulse1, c.pulse2, c.triangle, c.noise, c.dmc)
			assert.GreaterOrEqual(t, out, float32(-1.0))
			assert.LessOrEqual(t, out, float32(1.0))
			if c.wantSilence {
				assert.Equal(t, float32(0), out)
			} else {
				assert.NotEqual(t, float32(0), out)
			}
		})
	}
}
