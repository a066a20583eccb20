package main

import (
	"context"
	"math"

	"driftgate/server/internal/geom"
	"driftgate/server/logging"
	loggingsim "driftgate/server/logging/simulation"
)

// runNPCBehaviors advances every agent: FSM decision, velocity integration,
// and the cheap single-obstacle collision variant.
func (w *World) runNPCBehaviors(dt float64) {
	u := w.universe
	if u == nil {
		return
	}
	for _, agent := range u.Agents {
		if agent.state == npcStatic {
			continue
		}
		w.updateAgentBehavior(agent, dt)
		w.integrateAgent(agent, dt)
		w.detectAgentStuck(agent, dt)
	}
}

// updateAgentBehavior runs the wander/wait state machine and shapes the
// agent's desired velocity.
func (w *World) updateAgentBehavior(agent *npcAgent, dt float64) {
	switch agent.state {
	case npcWandering:
		to := agent.target.Sub(agent.obj.Position)
		if !agent.canFly {
			to.Y = 0
		}
		arrivedVertically := !agent.canFly || math.Abs(to.Y) < npcArriveRadius
		if to.HorizontalLength() < npcArriveRadius && arrivedVertically {
			agent.state = npcWaiting
			agent.waitUntil = w.simSeconds + w.randomDistance(npcWaitMinSeconds, npcWaitMaxSeconds)
			return
		}

		dir := to.Normalized()
		agent.velocity.X += dir.X * npcAcceleration * dt
		agent.velocity.Z += dir.Z * npcAcceleration * dt
		if agent.canFly {
			agent.velocity.Y += dir.Y * npcAcceleration * dt
		}

		speed := agent.velocity.HorizontalLength()
		if speed > agent.speed {
			scale := agent.speed / speed
			agent.velocity.X *= scale
			agent.velocity.Z *= scale
		}
		if agent.canFly {
			agent.velocity.Y = geom.Clamp(agent.velocity.Y, -agent.speed, agent.speed)
		}
	case npcWaiting:
		agent.velocity.X *= npcWaitDamping
		agent.velocity.Z *= npcWaitDamping
		if agent.canFly {
			agent.velocity.Y *= npcWaitDamping
		}
		if w.simSeconds >= agent.waitUntil {
			agent.state = npcWandering
			agent.target = w.chooseWanderTarget(agent)
		}
	}
}

// integrateAgent applies gravity to walkers, resolves collision with the
// single-obstacle NPC variant, and commits the corrected move.
func (w *World) integrateAgent(agent *npcAgent, dt float64) {
	u := w.universe
	if !agent.canFly {
		agent.velocity.Y -= u.Physics.Gravity * dt
	}

	displacement := agent.velocity.Scale(dt)
	corrected, grounded := resolveEntityCollision(agent.obj.Bounds(), displacement, &agent.velocity, u.Objects, npcCollisionOptions(u.Radius))
	agent.obj.SetPosition(agent.obj.Position.Add(corrected))
	agent.grounded = grounded

	// Fell off the world: pull back to the last position that made
	// progress rather than raining agents past the kill plane.
	if agent.obj.Position.Y < killPlaneY {
		agent.obj.SetPosition(agent.lastGoodPos)
		agent.velocity = geom.Vec3{}
		agent.target = w.chooseWanderTarget(agent)
	}
}

// detectAgentStuck forces a new target and a small random nudge on any agent
// that should be moving but has not displaced meaningfully over the rolling
// window. This recovers agents wedged against geometry the simplified NPC
// collision response cannot resolve.
func (w *World) detectAgentStuck(agent *npcAgent, dt float64) {
	if agent.state != npcWandering {
		agent.windowStart = agent.obj.Position
		agent.windowElapsed = 0
		return
	}

	agent.windowElapsed += dt
	if agent.windowElapsed < npcStuckWindow {
		return
	}

	moved := geom.DistanceSq(agent.obj.Position, agent.windowStart)
	if moved >= npcStuckEpsilonSq {
		agent.lastGoodPos = agent.obj.Position
	} else {
		agent.target = w.chooseWanderTarget(agent)
		angle := w.randomAngle()
		agent.velocity.X += math.Cos(angle) * npcStuckNudgeSpeed
		agent.velocity.Z += math.Sin(angle) * npcStuckNudgeSpeed

		w.telemetry.IncrementNPCStuckRecoveries()
		loggingsim.NPCStuckRecovered(
			context.Background(),
			w.publisher,
			w.currentTick,
			logging.EntityRef{ID: agent.obj.ID, Kind: logging.EntityKindNPC},
			loggingsim.NPCStuckRecoveredPayload{StuckSeconds: agent.windowElapsed},
		)
	}
	agent.windowStart = agent.obj.Position
	agent.windowElapsed = 0
}

// chooseWanderTarget picks a random point inside the agent's wander disk.
// Targets too close to the agent degenerate into tiny loops, so they are
// replaced with a point roughly opposite the agent's current angular
// position in the universe.
func (w *World) chooseWanderTarget(agent *npcAgent) geom.Vec3 {
	u := w.universe
	radius := npcWanderRadius
	if agent.canFly {
		radius *= npcFlyWanderScale
	}
	if u != nil && radius > u.Radius {
		radius = u.Radius
	}

	angle := w.randomAngle()
	dist := w.randomFloat() * radius
	target := geom.Vec3{X: math.Cos(angle) * dist, Z: math.Sin(angle) * dist}

	if geom.HorizontalDistance(target, agent.obj.Position) < npcMinTargetDist {
		opposite := math.Atan2(agent.obj.Position.Z, agent.obj.Position.X) + math.Pi + (w.randomFloat()-0.5)*0.8
		dist = w.randomDistance(npcMinTargetDist, radius)
		target = geom.Vec3{X: math.Cos(opposite) * dist, Z: math.Sin(opposite) * dist}
	}

	if agent.canFly {
		target.Y = w.randomDistance(1.5, npcFlyMaxAltitude)
	} else if u != nil {
		height, ok := groundHeightAt(geom.Vec3{X: target.X, Y: groundRayLength / 2, Z: target.Z}, u.Objects)
		if !ok {
			height = fallbackGroundHeight
		}
		target.Y = height + agent.obj.Size.Y/2
	}
	return target
}
