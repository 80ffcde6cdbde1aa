package game

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVec2_ClampUnit(t *testing.T) {
	tests := []struct {
		name string
		in   Vec2
		want Vec2
	}{
		{"inside", Vec2{X: 0.3, Z: -0.4}, Vec2{X: 0.3, Z: -0.4}},
		{"on circle", Vec2{X: 1}, Vec2{X: 1}},
		{"outside", Vec2{X: -6, Z: 8}, Vec2{X: -0.6, Z: 0.8}},
		{"nan", Vec2{X: math.NaN(), Z: 0.5}, Vec2{Z: 0.5}},
		{"inf", Vec2{X: 1, Z: math.Inf(-1)}, Vec2{X: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.ClampUnit()
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}
}

func TestMode_Valid(t *testing.T) {
	assert.True(t, ModeFree.Valid())
	assert.True(t, ModeTimed.Valid())
	assert.False(t, Mode("").Valid())
}

func TestFakeClock(t *testing.T) {
	c := NewFakeClock(testStart)
	c.Advance(90 * time.Second)
	assert.Equal(t, testStart.Add(90*time.Second), c.Now())

	c.Set(testStart)
	assert.Equal(t, testStart, c.Now())

	var fn Clock = ClockFunc(func() time.Time { return testStart })
	assert.Equal(t, testStart, fn.Now())
}
