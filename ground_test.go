package main

import (
	"math"
	"testing"

	"driftgate/server/internal/geom"
)

func groundDisk(radius, top float64) *WorldObject {
	disk := newWorldObject(KindGround, "ground_disk", geom.Vec3{X: radius * 2, Y: groundThickness, Z: radius * 2})
	disk.SetPosition(geom.Vec3{Y: top - groundThickness/2})
	return disk
}

func TestGroundHeightPicksHighestSurface(t *testing.T) {
	base := groundDisk(30, 0)
	platform := newWorldObject(KindGround, "platform", geom.Vec3{X: 6, Y: 1, Z: 6})
	platform.SetPosition(geom.Vec3{X: 2, Y: 2.5, Z: 2})

	objects := []*WorldObject{base, platform}

	height, ok := groundHeightAt(geom.Vec3{X: 2, Y: 10, Z: 2}, objects)
	if !ok {
		t.Fatal("expected ground hit")
	}
	if math.Abs(height-3) > 1e-9 {
		t.Fatalf("height = %v, want platform top 3", height)
	}

	// Off the platform footprint only the base disk is hit.
	height, ok = groundHeightAt(geom.Vec3{X: 20, Y: 10, Z: 20}, objects)
	if !ok || math.Abs(height) > 1e-9 {
		t.Fatalf("height = %v ok=%v, want base top 0", height, ok)
	}
}

func TestGroundHeightMiss(t *testing.T) {
	base := groundDisk(10, 0)
	if _, ok := groundHeightAt(geom.Vec3{X: 50, Y: 10, Z: 50}, []*WorldObject{base}); ok {
		t.Fatal("expected miss outside ground footprint")
	}
	// Scenery never counts as ground.
	rock := newWorldObject(KindScenery, "rock", geom.Vec3{X: 4, Y: 4, Z: 4})
	rock.SetPosition(geom.Vec3{X: 50, Y: 2, Z: 50})
	if _, ok := groundHeightAt(geom.Vec3{X: 50, Y: 10, Z: 50}, []*WorldObject{base, rock}); ok {
		t.Fatal("expected scenery to be ignored")
	}
}

func TestGroundHeightLiftedOrigin(t *testing.T) {
	base := groundDisk(10, 0)
	// A query point exactly on the surface still hits: the lifted origin
	// starts the ray above the top face.
	height, ok := groundHeightAt(geom.Vec3{X: 1, Y: 0, Z: 1}, []*WorldObject{base})
	if !ok || math.Abs(height) > 1e-9 {
		t.Fatalf("height = %v ok=%v, want hit at 0", height, ok)
	}
}

func TestSettleOnGround(t *testing.T) {
	base := groundDisk(10, 0)
	crate := newWorldObject(KindScenery, "crate", geom.Vec3{X: 1, Y: 2, Z: 1})

	if !settleOnGround(crate, 3, -2, []*WorldObject{base}) {
		t.Fatal("expected ground hit")
	}
	if math.Abs(crate.Position.Y-1) > 1e-9 {
		t.Fatalf("center Y = %v, want 1 (bottom resting at 0)", crate.Position.Y)
	}
	if crate.Bounds().Min.Y < -1e-9 {
		t.Fatalf("bottom sank below surface: %v", crate.Bounds().Min.Y)
	}
}

func TestSettleOnGroundFallback(t *testing.T) {
	crate := newWorldObject(KindScenery, "crate", geom.Vec3{X: 1, Y: 2, Z: 1})
	if settleOnGround(crate, 0, 0, nil) {
		t.Fatal("expected fallback")
	}
	want := fallbackGroundHeight + crate.Size.Y/2
	if math.Abs(crate.Position.Y-want) > 1e-9 {
		t.Fatalf("center Y = %v, want fallback %v", crate.Position.Y, want)
	}
}
