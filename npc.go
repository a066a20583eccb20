package main

import "driftgate/server/internal/geom"

// npcBehaviorState is the agent FSM state.
type npcBehaviorState string

const (
	npcWandering npcBehaviorState = "wandering"
	npcWaiting   npcBehaviorState = "waiting"
	// npcStatic marks hint-type agents that never move.
	npcStatic npcBehaviorState = "static"
)

// npcAgent wraps a placed world object with behavior state. Agents persist
// for the life of their universe and are destroyed with it.
type npcAgent struct {
	obj *WorldObject

	state    npcBehaviorState
	target   geom.Vec3
	velocity geom.Vec3
	speed    float64
	canFly   bool

	// waitUntil is a simulation-time deadline (seconds) for the waiting
	// state.
	waitUntil float64

	// Stuck detection: displacement since windowStart is checked once the
	// rolling window elapses. lastGoodPos is the most recent position that
	// made clear progress, used when an agent has to be pulled back inside
	// the world.
	windowStart   geom.Vec3
	windowElapsed float64
	lastGoodPos   geom.Vec3
	grounded      bool
}

func newNPCAgent(obj *WorldObject, speed float64, canFly bool) *npcAgent {
	return &npcAgent{
		obj:         obj,
		state:       npcWandering,
		target:      obj.Position,
		speed:       speed,
		canFly:      canFly,
		windowStart: obj.Position,
		lastGoodPos: obj.Position,
	}
}

func newStaticAgent(obj *WorldObject) *npcAgent {
	return &npcAgent{
		obj:         obj,
		state:       npcStatic,
		target:      obj.Position,
		windowStart: obj.Position,
		lastGoodPos: obj.Position,
	}
}
