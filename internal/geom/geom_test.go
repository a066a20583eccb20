package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVecOps(t *testing.T) {
	a := Vec3{X: 3, Y: 0, Z: 4}
	if got := a.Length(); !almostEqual(got, 5) {
		t.Fatalf("Length = %v, want 5", got)
	}
	if got := a.HorizontalLength(); !almostEqual(got, 5) {
		t.Fatalf("HorizontalLength = %v, want 5", got)
	}

	n := a.Normalized()
	if !almostEqual(n.Length(), 1) {
		t.Fatalf("Normalized length = %v, want 1", n.Length())
	}
	if zero := (Vec3{}).Normalized(); zero != (Vec3{}) {
		t.Fatalf("Normalized zero vector = %v, want zero", zero)
	}

	sum := a.Add(Vec3{X: 1, Y: 2, Z: 3})
	if sum != (Vec3{X: 4, Y: 2, Z: 7}) {
		t.Fatalf("Add = %v", sum)
	}
	if d := Distance(Vec3{X: 1}, Vec3{X: 4, Z: 4}); !almostEqual(d, 5) {
		t.Fatalf("Distance = %v, want 5", d)
	}
	if d := HorizontalDistance(Vec3{X: 1, Y: 99}, Vec3{X: 4, Y: -5, Z: 4}); !almostEqual(d, 5) {
		t.Fatalf("HorizontalDistance = %v, want 5", d)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Fatalf("Clamp high = %v", got)
	}
	if got := Clamp(-5, 0, 3); got != 0 {
		t.Fatalf("Clamp low = %v", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Fatalf("Clamp mid = %v", got)
	}
}

func TestAABBOverlap(t *testing.T) {
	a := NewAABB(Vec3{}, Vec3{X: 1, Y: 1, Z: 1})
	b := NewAABB(Vec3{X: 1.5}, Vec3{X: 1, Y: 1, Z: 1})
	if !a.Overlaps(b) {
		t.Fatal("expected overlap")
	}

	c := NewAABB(Vec3{X: 3}, Vec3{X: 1, Y: 1, Z: 1})
	if a.Overlaps(c) {
		t.Fatal("expected no overlap")
	}
	// Inflation scales about the center, closing the gap.
	if !a.Inflated(2.5).Overlaps(c) {
		t.Fatal("expected inflated overlap")
	}
}

func TestAABBOverlapsPadded(t *testing.T) {
	a := NewAABB(Vec3{}, Vec3{X: 1, Y: 1, Z: 1})
	// Gap of 0.08 on X; padding applies to both boxes, so 0.05 closes it
	// and 0.02 does not.
	b := NewAABB(Vec3{X: 2.08}, Vec3{X: 1, Y: 1, Z: 1})
	if a.Overlaps(b) {
		t.Fatal("boxes must be separated without padding")
	}
	if !a.OverlapsPadded(b, 0.05) {
		t.Fatal("expected padded overlap across the gap")
	}
	if a.OverlapsPadded(b, 0.02) {
		t.Fatal("padding too small to close the gap")
	}
}

func TestAABBPenetrationDepths(t *testing.T) {
	a := NewAABB(Vec3{}, Vec3{X: 1, Y: 1, Z: 1})
	b := NewAABB(Vec3{X: 1.5, Y: 0.2}, Vec3{X: 1, Y: 1, Z: 1})
	pen := a.PenetrationDepths(b)
	if !almostEqual(pen.X, 0.5) {
		t.Fatalf("pen.X = %v, want 0.5", pen.X)
	}
	if !almostEqual(pen.Y, 1.8) {
		t.Fatalf("pen.Y = %v, want 1.8", pen.Y)
	}
}

func TestIntersectsRayDown(t *testing.T) {
	box := NewAABB(Vec3{Y: -0.5}, Vec3{X: 5, Y: 0.5, Z: 5})

	top, ok := box.IntersectsRayDown(Vec3{X: 1, Y: 10, Z: 1}, 60)
	if !ok {
		t.Fatal("expected hit")
	}
	if !almostEqual(top, 0) {
		t.Fatalf("top = %v, want 0", top)
	}

	if _, ok := box.IntersectsRayDown(Vec3{X: 20, Y: 10}, 60); ok {
		t.Fatal("expected miss outside footprint")
	}
	if _, ok := box.IntersectsRayDown(Vec3{X: 1, Y: -5, Z: 1}, 60); ok {
		t.Fatal("expected miss when origin is below the top face")
	}
	if _, ok := box.IntersectsRayDown(Vec3{X: 1, Y: 100, Z: 1}, 50); ok {
		t.Fatal("expected miss beyond ray length")
	}
}

func TestTranslatedDoesNotMutate(t *testing.T) {
	a := NewAABB(Vec3{}, Vec3{X: 1, Y: 1, Z: 1})
	moved := a.Translated(Vec3{X: 2})
	if a.Min.X != -1 {
		t.Fatalf("original mutated: %v", a.Min)
	}
	if !almostEqual(moved.Min.X, 1) {
		t.Fatalf("moved.Min.X = %v, want 1", moved.Min.X)
	}
}
