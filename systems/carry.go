package systems

import (
	"math"

	"github.com/pthm-cable/hideseek/components"
)

// CarryPose computes where a carried obstacle sits relative to its holder.
//
// The obstacle's cardinal face closest to facing the agent is rotated to
// point exactly at the agent, and the obstacle is placed at carryDist in
// front of the agent. A line-of-sight probe from the agent toward the target
// position clamps the standoff when a wall or another obstacle is in the
// way, keeping at least minClear from the agent so the carried box never
// clips through a corner.
func CarryPose(holder components.Position, holderYaw, curYaw, halfW, halfD,
	carryDist, minClear float32, blockers []AABB) (x, z, yaw float32) {

	fx := float32(math.Cos(float64(holderYaw)))
	fz := float32(math.Sin(float64(holderYaw)))

	dist := carryDist

	// Probe past the target by the obstacle's largest half extent so the
	// box's near face, not just its center, clears the blocker.
	margin := halfW
	if halfD > margin {
		margin = halfD
	}
	probeLen := carryDist + margin
	px := holder.X + fx*probeLen
	pz := holder.Z + fz*probeLen

	for _, b := range blockers {
		if t, hit := SegmentAABB(holder.X, holder.Z, px, pz, b); hit {
			d := t*probeLen - margin
			if d < dist {
				dist = d
			}
		}
	}
	if dist < minClear {
		dist = minClear
	}

	x = holder.X + fx*dist
	z = holder.Z + fz*dist

	// Face the agent with the nearest cardinal face: rotate by the residual
	// between the face-to-agent direction and the closest multiple of 90deg.
	facing := normalizeAngle(holderYaw + math.Pi)
	quarter := float32(math.Pi / 2)
	k := float32(math.Round(float64((facing - curYaw) / quarter)))
	yaw = normalizeAngle(facing - k*quarter)

	return x, z, yaw
}
