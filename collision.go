package main

import (
	"math"

	"driftgate/server/internal/geom"
)

// collisionOptions select between the player and NPC resolution variants.
type collisionOptions struct {
	// StepUp is the ledge height the entity may climb without a hard stop.
	// Only the player variant sets it.
	StepUp float64
	// ResolveAll iterates every intersecting obstacle, recomputing the
	// swept box after each correction so later checks see the corrected
	// position. The NPC variant resolves a single obstacle per frame.
	ResolveAll bool
	// BoundaryRadius keeps the entity inside the universe disk. Zero
	// disables containment.
	BoundaryRadius float64
}

func playerCollisionOptions(radius float64) collisionOptions {
	return collisionOptions{StepUp: stepUpHeight, ResolveAll: true, BoundaryRadius: radius}
}

func npcCollisionOptions(radius float64) collisionOptions {
	return collisionOptions{BoundaryRadius: radius}
}

// resolveEntityCollision corrects an intended per-frame displacement so the
// entity does not interpenetrate any obstacle, and reports whether vertical
// motion was arrested by ground this frame. Velocity components that would
// drive continued penetration are zeroed in place.
//
// Obstacles are resolved in list order. Ground contact takes priority over
// the general axis correction; NPC and item objects never block movement.
func resolveEntityCollision(bounds geom.AABB, displacement geom.Vec3, velocity *geom.Vec3, obstacles []*WorldObject, opts collisionOptions) (geom.Vec3, bool) {
	corrected := displacement
	grounded := false
	moved := bounds.Translated(corrected)
	resolvedGeneral := false

	for _, obs := range obstacles {
		if !obs.blocksMovement() {
			continue
		}
		ob := obs.Bounds()
		if !moved.Overlaps(ob) {
			continue
		}

		if velocity.Y <= 0 && obs.Kind == KindGround {
			surface := ob.Max.Y
			// Land only when the entity started at or above the surface
			// (within the step allowance); a deep side overlap falls
			// through to the axis correction instead of teleporting up.
			if moved.Min.Y <= surface && bounds.Min.Y >= surface-opts.StepUp-1e-6 {
				corrected.Y = surface - bounds.Min.Y
				velocity.Y = 0
				grounded = true
				moved = bounds.Translated(corrected)
				continue
			}
		}

		if resolvedGeneral && !opts.ResolveAll {
			continue
		}

		pen := moved.PenetrationDepths(ob)
		axis, depth := minPenetrationAxis(pen)
		if depth <= 0 {
			continue
		}

		sign := 1.0
		mc, oc := moved.Center(), ob.Center()
		switch axis {
		case axisX:
			if mc.X < oc.X {
				sign = -1
			}
			corrected.X += sign * depth
			velocity.X = 0
		case axisY:
			if mc.Y < oc.Y {
				sign = -1
			}
			corrected.Y += sign * depth
			velocity.Y = 0
		case axisZ:
			if mc.Z < oc.Z {
				sign = -1
			}
			corrected.Z += sign * depth
			velocity.Z = 0
		}
		resolvedGeneral = true
		if opts.ResolveAll {
			moved = bounds.Translated(corrected)
		}
	}

	if opts.BoundaryRadius > 0 {
		corrected = containInBoundary(bounds, corrected, velocity, opts.BoundaryRadius)
	}

	return corrected, grounded
}

type axisIndex int

const (
	axisX axisIndex = iota
	axisY
	axisZ
)

// minPenetrationAxis picks the axis of least resistance: the smallest
// positive per-axis overlap.
func minPenetrationAxis(pen geom.Vec3) (axisIndex, float64) {
	axis := axisX
	depth := pen.X
	if pen.Y < depth {
		axis, depth = axisY, pen.Y
	}
	if pen.Z < depth {
		axis, depth = axisZ, pen.Z
	}
	return axis, depth
}

// containInBoundary pushes an entity that left the universe disk radially
// back to the rim and strips the outward component of its velocity.
func containInBoundary(bounds geom.AABB, corrected geom.Vec3, velocity *geom.Vec3, radius float64) geom.Vec3 {
	center := bounds.Center().Add(corrected)
	dist := math.Hypot(center.X, center.Z)
	if dist <= radius {
		return corrected
	}

	scale := radius / dist
	corrected.X += center.X*scale - center.X
	corrected.Z += center.Z*scale - center.Z

	// Radial unit vector on the ground plane.
	nx := center.X / dist
	nz := center.Z / dist
	outward := velocity.X*nx + velocity.Z*nz
	if outward > 0 {
		velocity.X -= outward * nx
		velocity.Z -= outward * nz
	}
	return corrected
}
