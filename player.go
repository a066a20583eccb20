package main

import (
	"time"

	"driftgate/server/internal/geom"
)

// playerState tracks one connected player inside the simulation. Network
// bookkeeping (heartbeats, RTT) lives here too so the disconnect sweep can
// run inside the tick without touching the hub.
type playerState struct {
	ID       string
	Position geom.Vec3
	Velocity geom.Vec3
	Yaw      float64

	// Most recent movement intent, normalized on the ground plane.
	intentX float64
	intentZ float64
	jump    bool

	grounded bool
	Score    int

	lastInput     time.Time
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

func newPlayerState(id string, spawn geom.Vec3, now time.Time) *playerState {
	return &playerState{
		ID:            id,
		Position:      spawn,
		lastInput:     now,
		lastHeartbeat: now,
	}
}

// setIntent clamps the incoming movement vector to the unit disk so a
// hostile client cannot exceed base speed.
func (p *playerState) setIntent(dx, dz float64, jump bool, now time.Time) {
	if mag := (geom.Vec3{X: dx, Z: dz}).HorizontalLength(); mag > 1 {
		dx /= mag
		dz /= mag
	}
	p.intentX = dx
	p.intentZ = dz
	if jump {
		p.jump = true
	}
	p.lastInput = now
}

func (p *playerState) bounds() geom.AABB {
	return geom.NewAABB(p.Position, geom.Vec3{X: playerHalfWidth, Y: playerHeight / 2, Z: playerHalfWidth})
}

// respawnAt resets motion state at the given point.
func (p *playerState) respawnAt(spawn geom.Vec3) {
	p.Position = spawn
	p.Velocity = geom.Vec3{}
	p.grounded = false
	p.jump = false
}
