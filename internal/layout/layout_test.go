package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var treeSamples = map[int]float64{
	0: 180, 120: 0, 336: 0, 527: 0, 648: 0, 737: 0,
	814: 0, 862: 0, 876: 0, 886: 0, 900: 180,
}

func TestSampleAnglesExact(t *testing.T) {
	g, err := Build(treeSamples, 900)
	require.NoError(t, err)
	for i, a := range treeSamples {
		if i >= g.Len() {
			continue
		}
		assert.Equal(t, a, g.Angle(i), "index %d", i)
	}
}

func TestRadiusRamp(t *testing.T) {
	g, err := Build(treeSamples, 900)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.Radius(0))
	for i := 1; i < g.Len(); i++ {
		require.Less(t, g.Radius(i), g.Radius(i-1))
	}
	assert.Greater(t, g.Radius(899), 0.0)
}

func TestInterpolationWraps(t *testing.T) {
	g, err := Build(map[int]float64{0: 350, 10: 10}, 20)
	require.NoError(t, err)
	assert.InDelta(t, 0, g.Angle(5), 1e-9)
	for i := 1; i < 10; i++ {
		// stays on the short arc through 0
		assert.LessOrEqual(t, AngleDistance(g.Angle(i), 0), 10.0+1e-9)
	}
	// past the last sample the end angle holds
	assert.Equal(t, 10.0, g.Angle(15))
}

func TestBeforeFirstSample(t *testing.T) {
	g, err := Build(map[int]float64{4: 90, 8: 180}, 10)
	require.NoError(t, err)
	assert.Equal(t, 90.0, g.Angle(0))
	assert.InDelta(t, 135, g.Angle(6), 1e-9)
}

func TestRings(t *testing.T) {
	g, err := Build(map[int]float64{0: 90, 10: 270}, 20)
	require.NoError(t, err)
	rings := g.Rings()
	require.Len(t, rings, 2)
	assert.Equal(t, 0, rings[0].Start)
	assert.Equal(t, 5, rings[0].End)
	assert.Equal(t, 5, rings[1].Start)
	assert.Equal(t, 20, rings[1].End)
	assert.InDelta(t, 0.9, rings[0].Radius, 1e-9)
	assert.Equal(t, 0, g.Ring(4))
	assert.Equal(t, 1, g.Ring(5))
	assert.Equal(t, Pixel{Index: 5, Angle: g.Angle(5), Radius: 0.75, Ring: 1}, g.Pixel(5))

	assert.Equal(t, []int{0, 5}, g.IndicesNearAngle(90))
	assert.Equal(t, []int{4, 10}, g.IndicesNearAngle(270))
}

func TestTreeHasRings(t *testing.T) {
	g, err := Build(treeSamples, 900)
	require.NoError(t, err)
	rings := g.Rings()
	assert.Greater(t, len(rings), 5)
	for k, r := range rings {
		assert.Equal(t, k, r.Index)
		if k > 0 {
			assert.Equal(t, rings[k-1].End, r.Start)
			assert.Less(t, r.Radius, rings[k-1].Radius)
		}
	}
	assert.Equal(t, 900, rings[len(rings)-1].End)
}

func TestCrossesIgnoresAntipode(t *testing.T) {
	assert.False(t, crosses(350, 10, RingAngle))
	assert.True(t, crosses(170, 190, RingAngle))
	assert.True(t, crosses(190, 170, RingAngle))
	assert.False(t, crosses(180, 190, RingAngle))
}

func TestAngleDistance(t *testing.T) {
	assert.Equal(t, 20.0, AngleDistance(350, 10))
	assert.Equal(t, 180.0, AngleDistance(0, 180))
	assert.Equal(t, 20.0, AngleDistance(-10, 10))
	assert.Equal(t, 0.0, AngleDistance(720, 0))
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(nil, 10)
	assert.ErrorIs(t, err, ErrNoSamples)
	_, err = Build(treeSamples, 0)
	assert.Error(t, err)
	_, err = Build(map[int]float64{-1: 0}, 10)
	assert.Error(t, err)
}
