package main

import (
	"math"
	"testing"

	"driftgate/server/internal/geom"
)

func TestResolveLandsOnGround(t *testing.T) {
	ground := groundDisk(30, 0)
	obstacles := []*WorldObject{ground}

	// Entity 2 units above the surface, falling fast enough to pass through
	// in one frame.
	bounds := geom.NewAABB(geom.Vec3{Y: 3}, geom.Vec3{X: 0.4, Y: 0.9, Z: 0.4})
	velocity := geom.Vec3{Y: -20}
	displacement := velocity.Scale(0.25)

	corrected, grounded := resolveEntityCollision(bounds, displacement, &velocity, obstacles, playerCollisionOptions(30))
	if !grounded {
		t.Fatal("expected grounded")
	}
	if velocity.Y != 0 {
		t.Fatalf("velocity.Y = %v, want 0", velocity.Y)
	}
	// Bottom rests exactly on the surface.
	landed := bounds.Translated(corrected)
	if math.Abs(landed.Min.Y) > 1e-9 {
		t.Fatalf("bottom = %v, want 0", landed.Min.Y)
	}
}

func TestResolveStepUpIsPlayerOnly(t *testing.T) {
	ledge := newWorldObject(KindGround, "ledge", geom.Vec3{X: 4, Y: 0.5, Z: 4})
	ledge.SetPosition(geom.Vec3{X: 3, Y: 0.25})
	obstacles := []*WorldObject{ledge}

	// Entity standing at ground level, walking into the 0.5-high ledge.
	bounds := geom.NewAABB(geom.Vec3{X: 0.8, Y: 0.9}, geom.Vec3{X: 0.4, Y: 0.9, Z: 0.4})

	playerVel := geom.Vec3{X: 2}
	corrected, grounded := resolveEntityCollision(bounds, geom.Vec3{X: 0.15}, &playerVel, obstacles, playerCollisionOptions(30))
	if !grounded {
		t.Fatal("player should step onto the ledge")
	}
	stepped := bounds.Translated(corrected)
	if math.Abs(stepped.Min.Y-0.5) > 1e-9 {
		t.Fatalf("player bottom = %v, want ledge top 0.5", stepped.Min.Y)
	}

	npcVel := geom.Vec3{X: 2}
	corrected, grounded = resolveEntityCollision(bounds, geom.Vec3{X: 0.15}, &npcVel, obstacles, npcCollisionOptions(30))
	if grounded {
		t.Fatal("npc must not step up")
	}
	blocked := bounds.Translated(corrected)
	if blocked.Max.X > ledge.Bounds().Min.X+1e-9 {
		t.Fatalf("npc penetrates ledge: max.X = %v", blocked.Max.X)
	}
	if npcVel.X != 0 {
		t.Fatalf("npc velocity.X = %v, want 0", npcVel.X)
	}
}

func TestResolvePushesOutOnMinAxis(t *testing.T) {
	wall := newWorldObject(KindScenery, "wall", geom.Vec3{X: 1, Y: 4, Z: 6})
	wall.SetPosition(geom.Vec3{X: 2, Y: 2})
	obstacles := []*WorldObject{wall}

	bounds := geom.NewAABB(geom.Vec3{X: 0.8, Y: 1}, geom.Vec3{X: 0.4, Y: 0.9, Z: 0.4})
	velocity := geom.Vec3{X: 3}
	corrected, _ := resolveEntityCollision(bounds, geom.Vec3{X: 0.5}, &velocity, obstacles, playerCollisionOptions(30))

	moved := bounds.Translated(corrected)
	if moved.Max.X > wall.Bounds().Min.X+1e-9 {
		t.Fatalf("still penetrating: max.X = %v, wall min.X = %v", moved.Max.X, wall.Bounds().Min.X)
	}
	if velocity.X != 0 {
		t.Fatalf("velocity.X = %v, want 0", velocity.X)
	}
}

func TestNPCAndItemsNeverBlock(t *testing.T) {
	npc := newWorldObject(KindNPC, "drifter", geom.Vec3{X: 1, Y: 2, Z: 1})
	npc.SetPosition(geom.Vec3{X: 1, Y: 1})
	item := newWorldObject(KindItem, "clue", geom.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	item.SetPosition(geom.Vec3{X: 1, Y: 0.5})
	obstacles := []*WorldObject{npc, item}

	bounds := geom.NewAABB(geom.Vec3{Y: 1}, geom.Vec3{X: 0.4, Y: 0.9, Z: 0.4})
	velocity := geom.Vec3{X: 3}
	displacement := geom.Vec3{X: 0.9}
	corrected, _ := resolveEntityCollision(bounds, displacement, &velocity, obstacles, playerCollisionOptions(30))

	if corrected != displacement {
		t.Fatalf("displacement altered: %v, want %v", corrected, displacement)
	}
	if velocity.X != 3 {
		t.Fatalf("velocity.X = %v, want untouched", velocity.X)
	}
}

func TestNonCollidableSceneryNeverBlocks(t *testing.T) {
	ghost := newWorldObject(KindScenery, "hologram", geom.Vec3{X: 2, Y: 2, Z: 2})
	ghost.NonCollidable = true
	ghost.SetPosition(geom.Vec3{X: 0.5, Y: 1})

	bounds := geom.NewAABB(geom.Vec3{Y: 1}, geom.Vec3{X: 0.4, Y: 0.9, Z: 0.4})
	velocity := geom.Vec3{X: 1}
	displacement := geom.Vec3{X: 0.2}
	corrected, _ := resolveEntityCollision(bounds, displacement, &velocity, []*WorldObject{ghost}, playerCollisionOptions(30))
	if corrected != displacement {
		t.Fatalf("non-collidable object altered movement: %v", corrected)
	}
}

func TestBoundaryContainment(t *testing.T) {
	bounds := geom.NewAABB(geom.Vec3{X: 29, Y: 1}, geom.Vec3{X: 0.4, Y: 0.9, Z: 0.4})
	velocity := geom.Vec3{X: 5}
	corrected, _ := resolveEntityCollision(bounds, geom.Vec3{X: 5}, &velocity, nil, playerCollisionOptions(30))

	center := bounds.Center().Add(corrected)
	if math.Hypot(center.X, center.Z) > 30+1e-9 {
		t.Fatalf("escaped boundary: %v", center)
	}
	if velocity.X > 1e-9 {
		t.Fatalf("outward velocity kept: %v", velocity.X)
	}
}

func TestDeepSideOverlapDoesNotTeleportUp(t *testing.T) {
	// Tall ground block; entity is beside it, well below the top. Ground
	// snap must not trigger, the axis correction pushes sideways instead.
	block := newWorldObject(KindGround, "mesa", geom.Vec3{X: 4, Y: 10, Z: 4})
	block.SetPosition(geom.Vec3{X: 3, Y: 5})

	bounds := geom.NewAABB(geom.Vec3{X: 0.8, Y: 1}, geom.Vec3{X: 0.4, Y: 0.9, Z: 0.4})
	velocity := geom.Vec3{X: 2, Y: -1}
	corrected, grounded := resolveEntityCollision(bounds, geom.Vec3{X: 0.5, Y: -0.1}, &velocity, []*WorldObject{block}, playerCollisionOptions(30))

	if grounded {
		t.Fatal("must not snap onto a surface 10 units up")
	}
	moved := bounds.Translated(corrected)
	if moved.Max.X > block.Bounds().Min.X+1e-9 {
		t.Fatalf("still penetrating: %v", moved.Max.X)
	}
}
