package main

import "driftgate/server/internal/geom"

// groundHeightAt casts a ray straight down from just above the query point
// and returns the height of the nearest ground surface below it. The origin
// is lifted by groundRayLift so a point already resting on a surface does
// not start the ray inside it. Only ground-tagged objects are tested.
//
// The second return is false when no ground lies within groundRayLength;
// callers substitute fallbackGroundHeight instead of propagating an invalid
// coordinate.
func groundHeightAt(point geom.Vec3, objects []*WorldObject) (float64, bool) {
	origin := point
	origin.Y += groundRayLift

	best := 0.0
	found := false
	for _, obj := range objects {
		if obj.Kind != KindGround {
			continue
		}
		height, ok := obj.Bounds().IntersectsRayDown(origin, groundRayLength)
		if !ok {
			continue
		}
		if !found || height > best {
			best = height
			found = true
		}
	}
	return best, found
}

// settleOnGround positions obj so its bottom rests on the ground below the
// given horizontal position, falling back to a default clearance height when
// no ground is found. Reports whether real ground was hit.
func settleOnGround(obj *WorldObject, x, z float64, objects []*WorldObject) bool {
	probe := geom.Vec3{X: x, Y: groundRayLength / 2, Z: z}
	height, ok := groundHeightAt(probe, objects)
	if !ok {
		height = fallbackGroundHeight
	}
	obj.SetPosition(geom.Vec3{X: x, Y: height + obj.Size.Y/2, Z: z})
	return ok
}
