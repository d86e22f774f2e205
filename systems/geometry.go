// Package systems contains movement, collision and carry-geometry systems
// for the environment.
package systems

import "math"

// AABB is an axis-aligned box on the floor plane (center + half extents).
// Walls and obstacle collision boxes are full height, so all solid-body
// queries reduce to the horizontal plane.
type AABB struct {
	X, Z         float32
	HalfW, HalfD float32
}

// OrientedAABB returns the axis-aligned bounds of a box with the given yaw.
// Conservative for collision: the bounds grow as the box rotates off-axis.
func OrientedAABB(x, z, yaw, halfW, halfD float32) AABB {
	c := float32(math.Abs(math.Cos(float64(yaw))))
	s := float32(math.Abs(math.Sin(float64(yaw))))
	return AABB{
		X:     x,
		Z:     z,
		HalfW: c*halfW + s*halfD,
		HalfD: s*halfW + c*halfD,
	}
}

// ResolveCircleAABB pushes a circle at (x,z) with radius r out of the box.
// Returns the corrected position and whether a push happened. The push is
// along the axis of least penetration.
func ResolveCircleAABB(x, z, r float32, b AABB) (float32, float32, bool) {
	dx := x - b.X
	dz := z - b.Z

	px := (b.HalfW + r) - abs32(dx)
	if px <= 0 {
		return x, z, false
	}
	pz := (b.HalfD + r) - abs32(dz)
	if pz <= 0 {
		return x, z, false
	}

	if px < pz {
		if dx < 0 {
			px = -px
		}
		return x + px, z, true
	}
	if dz < 0 {
		pz = -pz
	}
	return x, z + pz, true
}

// SegmentAABB intersects the segment (x0,z0)-(x1,z1) with the box using the
// slab method. Returns the entry parameter t in [0,1] and whether the
// segment hits. A segment starting inside the box hits at t=0.
func SegmentAABB(x0, z0, x1, z1 float32, b AABB) (float32, bool) {
	tmin := float32(0)
	tmax := float32(1)

	for axis := 0; axis < 2; axis++ {
		var origin, delta, center, half float32
		if axis == 0 {
			origin, delta, center, half = x0, x1-x0, b.X, b.HalfW
		} else {
			origin, delta, center, half = z0, z1-z0, b.Z, b.HalfD
		}

		lo := center - half
		hi := center + half

		if delta == 0 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - origin) / delta
		t2 := (hi - origin) / delta
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}

	return tmin, true
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
