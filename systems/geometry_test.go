package systems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientedAABB(t *testing.T) {
	tests := []struct {
		name         string
		yaw          float32
		halfW, halfD float32
		wantW, wantD float32
	}{
		{name: "axis aligned", yaw: 0, halfW: 2, halfD: 1, wantW: 2, wantD: 1},
		{name: "quarter turn swaps extents", yaw: math.Pi / 2, halfW: 2, halfD: 1, wantW: 1, wantD: 2},
		{name: "half turn is identity", yaw: math.Pi, halfW: 2, halfD: 1, wantW: 2, wantD: 1},
		{name: "diagonal grows bounds", yaw: math.Pi / 4, halfW: 2, halfD: 1,
			wantW: 3 * math.Sqrt2 / 2, wantD: 3 * math.Sqrt2 / 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := OrientedAABB(5, 7, tc.yaw, tc.halfW, tc.halfD)
			assert.Equal(t, float32(5), b.X)
			assert.Equal(t, float32(7), b.Z)
			assert.InDelta(t, tc.wantW, b.HalfW, 1e-5)
			assert.InDelta(t, tc.wantD, b.HalfD, 1e-5)
		})
	}
}

func TestResolveCircleAABB(t *testing.T) {
	box := AABB{X: 5, Z: 5, HalfW: 1, HalfD: 1}

	t.Run("no overlap", func(t *testing.T) {
		x, z, pushed := ResolveCircleAABB(2, 5, 0.5, box)
		assert.False(t, pushed)
		assert.Equal(t, float32(2), x)
		assert.Equal(t, float32(5), z)
	})

	t.Run("pushes along least penetration axis", func(t *testing.T) {
		// Deeper in Z than in X, so the push is along X.
		x, z, pushed := ResolveCircleAABB(4.5, 5, 0.5, box)
		require.True(t, pushed)
		assert.InDelta(t, 3.5, x, 1e-5)
		assert.Equal(t, float32(5), z)
	})

	t.Run("push direction follows the circle's side", func(t *testing.T) {
		x, _, pushed := ResolveCircleAABB(5.5, 5, 0.5, box)
		require.True(t, pushed)
		assert.InDelta(t, 6.5, x, 1e-5)
	})

	t.Run("grazing contact is not a hit", func(t *testing.T) {
		_, _, pushed := ResolveCircleAABB(6.5, 5, 0.5, box)
		assert.False(t, pushed)
	})
}

func TestSegmentAABB(t *testing.T) {
	box := AABB{X: 5, Z: 5, HalfW: 1, HalfD: 1}

	t.Run("head-on hit reports entry parameter", func(t *testing.T) {
		tHit, hit := SegmentAABB(2, 5, 6, 5, box)
		require.True(t, hit)
		assert.InDelta(t, 0.5, tHit, 1e-5) // enters at x=4, halfway along the segment
	})

	t.Run("miss to the side", func(t *testing.T) {
		_, hit := SegmentAABB(2, 8, 8, 8, box)
		assert.False(t, hit)
	})

	t.Run("segment ends short of the box", func(t *testing.T) {
		_, hit := SegmentAABB(2, 5, 3.5, 5, box)
		assert.False(t, hit)
	})

	t.Run("start inside hits at zero", func(t *testing.T) {
		tHit, hit := SegmentAABB(5, 5, 9, 5, box)
		require.True(t, hit)
		assert.Equal(t, float32(0), tHit)
	})

	t.Run("degenerate axis outside the slab", func(t *testing.T) {
		// Vertical segment whose X never enters the box.
		_, hit := SegmentAABB(2, 2, 2, 8, box)
		assert.False(t, hit)
	})
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, normalizeAngle(2*math.Pi), 1e-5)
	assert.InDelta(t, -math.Pi/2, normalizeAngle(3*math.Pi/2), 1e-5)
	assert.InDelta(t, math.Pi/2, normalizeAngle(-3*math.Pi/2), 1e-5)
	assert.InDelta(t, 1, normalizeAngle(1), 1e-5)
}
