package main

import (
	"math"
	"testing"
	"time"

	"driftgate/server/internal/geom"
)

func TestSetIntentClampsToUnitDisk(t *testing.T) {
	p := newPlayerState("p1", geom.Vec3{}, time.Now())

	p.setIntent(3, 4, false, time.Now())
	if mag := math.Hypot(p.intentX, p.intentZ); math.Abs(mag-1) > 1e-9 {
		t.Fatalf("intent magnitude = %v, want 1", mag)
	}
	if math.Abs(p.intentX-0.6) > 1e-9 || math.Abs(p.intentZ-0.8) > 1e-9 {
		t.Fatalf("intent = (%v, %v), want (0.6, 0.8)", p.intentX, p.intentZ)
	}

	// In-disk intent passes through untouched.
	p.setIntent(0.3, -0.4, true, time.Now())
	if p.intentX != 0.3 || p.intentZ != -0.4 {
		t.Fatalf("intent = (%v, %v), want unchanged", p.intentX, p.intentZ)
	}
	if !p.jump {
		t.Fatal("jump intent lost")
	}
}
