package main

import (
	"math"
	"math/rand"

	"driftgate/server/internal/geom"
)

// placementResult reports where the solver left the object and whether the
// position is collision-free.
type placementResult struct {
	Position geom.Vec3
	Attempts int
	OK       bool
}

// placeInDisk samples random positions inside a horizontal disk until the
// object's inflated bounding box clears every existing obstacle, or the
// attempt budget runs out. Height is supplied by the caller, never sampled.
//
// Ground-tagged objects are excluded from the clearance test: everything is
// expected to rest on ground, so ground never counts as a horizontal
// obstacle. The object itself is likewise skipped so re-placement works.
//
// On exhaustion the object stays at its last sampled position and OK is
// false. Callers treat that as a soft failure; a dense early layout must not
// abort universe generation.
func placeInDisk(obj *WorldObject, height, maxRadius float64, obstacles []*WorldObject, clearance float64, rng *rand.Rand, attempts int) placementResult {
	if attempts <= 0 {
		attempts = maxPlacementAttempts
	}
	if clearance <= 0 {
		clearance = 1
	}

	var pos geom.Vec3
	for attempt := 1; attempt <= attempts; attempt++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := rng.Float64() * maxRadius
		pos = geom.Vec3{
			X: math.Cos(angle) * dist,
			Y: height,
			Z: math.Sin(angle) * dist,
		}
		obj.SetYaw(rng.Float64() * 2 * math.Pi)
		obj.SetPosition(pos)

		if !overlapsAny(obj, obstacles, clearance) {
			return placementResult{Position: pos, Attempts: attempt, OK: true}
		}
	}
	return placementResult{Position: pos, Attempts: attempts, OK: false}
}

// placeOnGroundInDisk runs the same retry loop but settles each candidate on
// the ground beneath it before the clearance test. Testing at the settled
// height matters in platforms mode: an elevated platform would otherwise lift
// an accepted candidate into overlap with objects already resting on it.
func placeOnGroundInDisk(obj *WorldObject, maxRadius float64, obstacles []*WorldObject, clearance float64, rng *rand.Rand, attempts int) placementResult {
	if attempts <= 0 {
		attempts = maxPlacementAttempts
	}
	if clearance <= 0 {
		clearance = 1
	}

	var pos geom.Vec3
	for attempt := 1; attempt <= attempts; attempt++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := rng.Float64() * maxRadius
		x := math.Cos(angle) * dist
		z := math.Sin(angle) * dist
		obj.SetYaw(rng.Float64() * 2 * math.Pi)
		settleOnGround(obj, x, z, obstacles)
		pos = obj.Position

		if !overlapsAny(obj, obstacles, clearance) {
			return placementResult{Position: pos, Attempts: attempt, OK: true}
		}
	}
	return placementResult{Position: pos, Attempts: attempts, OK: false}
}

// overlapsAny tests the object's inflated box against every non-ground
// obstacle except itself.
func overlapsAny(obj *WorldObject, obstacles []*WorldObject, clearance float64) bool {
	inflated := obj.Bounds().Inflated(clearance)
	for _, other := range obstacles {
		if other == obj || other.Kind == KindGround {
			continue
		}
		if inflated.Overlaps(other.Bounds()) {
			return true
		}
	}
	return false
}
