package main

import (
	"testing"

	"driftgate/server/internal/geom"
)

func driftWorldWithAgents(t *testing.T) (*World, *npcAgent) {
	t.Helper()
	w := newTestWorld(t, "npc-test")
	w.generateUniverse(UniverseDrift)
	for _, agent := range w.universe.Agents {
		if agent.state != npcStatic {
			return w, agent
		}
	}
	t.Fatal("no wandering agent in drift universe")
	return nil, nil
}

func TestWanderArrivalStartsWaiting(t *testing.T) {
	w, agent := driftWorldWithAgents(t)

	agent.state = npcWandering
	agent.target = agent.obj.Position
	w.updateAgentBehavior(agent, 0.05)

	if agent.state != npcWaiting {
		t.Fatalf("state = %v, want waiting", agent.state)
	}
	wait := agent.waitUntil - w.simSeconds
	if wait < npcWaitMinSeconds || wait > npcWaitMaxSeconds {
		t.Fatalf("wait = %v, want within [%v, %v]", wait, npcWaitMinSeconds, npcWaitMaxSeconds)
	}
}

func TestWaitExpiryResumesWandering(t *testing.T) {
	w, agent := driftWorldWithAgents(t)

	agent.state = npcWaiting
	agent.waitUntil = w.simSeconds + 1
	w.updateAgentBehavior(agent, 0.05)
	if agent.state != npcWaiting {
		t.Fatalf("state = %v, want still waiting", agent.state)
	}

	w.simSeconds = agent.waitUntil + 0.01
	w.updateAgentBehavior(agent, 0.05)
	if agent.state != npcWandering {
		t.Fatalf("state = %v, want wandering", agent.state)
	}
}

func TestWaitingDampsVelocity(t *testing.T) {
	w, agent := driftWorldWithAgents(t)

	agent.state = npcWaiting
	agent.waitUntil = w.simSeconds + 10
	agent.velocity = geom.Vec3{X: 4, Z: -2}
	w.updateAgentBehavior(agent, 0.05)

	if agent.velocity.X != 4*npcWaitDamping || agent.velocity.Z != -2*npcWaitDamping {
		t.Fatalf("velocity = %v, want damped", agent.velocity)
	}
}

func TestStuckDetectionRecovers(t *testing.T) {
	w, agent := driftWorldWithAgents(t)

	agent.state = npcWandering
	agent.target = agent.obj.Position.Add(geom.Vec3{X: 10})
	agent.velocity = geom.Vec3{}
	agent.windowStart = agent.obj.Position
	agent.windowElapsed = 0
	before := w.telemetry.Snapshot().NPCStuckRecoveries

	// Simulate a wedged agent: six half-second checks close the window with
	// zero displacement.
	for i := 0; i < 6; i++ {
		w.detectAgentStuck(agent, 0.5)
	}

	if agent.velocity.HorizontalLength() == 0 {
		t.Fatal("expected a recovery nudge")
	}
	if got := w.telemetry.Snapshot().NPCStuckRecoveries; got != before+1 {
		t.Fatalf("recoveries = %d, want %d", got, before+1)
	}
	if agent.windowElapsed != 0 {
		t.Fatalf("window not reset: %v", agent.windowElapsed)
	}
}

func TestStuckDetectionIgnoresProgress(t *testing.T) {
	w, agent := driftWorldWithAgents(t)

	agent.state = npcWandering
	agent.windowStart = agent.obj.Position
	agent.windowElapsed = 0
	before := w.telemetry.Snapshot().NPCStuckRecoveries

	for i := 0; i < 6; i++ {
		agent.obj.SetPosition(agent.obj.Position.Add(geom.Vec3{X: 0.5}))
		w.detectAgentStuck(agent, 0.5)
	}

	if got := w.telemetry.Snapshot().NPCStuckRecoveries; got != before {
		t.Fatalf("recoveries = %d, want unchanged %d", got, before)
	}
	if agent.lastGoodPos == (geom.Vec3{}) {
		t.Fatal("lastGoodPos never advanced")
	}
}

func TestStuckWindowResetsOutsideWandering(t *testing.T) {
	w, agent := driftWorldWithAgents(t)

	agent.state = npcWaiting
	agent.windowElapsed = 2.5
	w.detectAgentStuck(agent, 0.5)
	if agent.windowElapsed != 0 {
		t.Fatalf("window = %v, want reset while waiting", agent.windowElapsed)
	}
}

func TestIntegrateRecoversFromKillPlane(t *testing.T) {
	w, agent := driftWorldWithAgents(t)

	safe := agent.obj.Position
	agent.lastGoodPos = safe
	agent.obj.SetPosition(geom.Vec3{X: safe.X, Y: killPlaneY - 5, Z: safe.Z})
	agent.velocity = geom.Vec3{Y: -30}

	w.integrateAgent(agent, 0.05)

	if agent.obj.Position != safe {
		t.Fatalf("position = %v, want reset to %v", agent.obj.Position, safe)
	}
	if agent.velocity != (geom.Vec3{}) {
		t.Fatalf("velocity = %v, want zeroed", agent.velocity)
	}
}

func TestChooseWanderTargetStaysInBounds(t *testing.T) {
	w, agent := driftWorldWithAgents(t)

	for i := 0; i < 50; i++ {
		target := w.chooseWanderTarget(agent)
		if target.HorizontalLength() > w.universe.Radius+1e-9 {
			t.Fatalf("target outside universe: %v", target)
		}
	}
}

func TestCloseTargetReplacedWithOppositeSide(t *testing.T) {
	w, agent := driftWorldWithAgents(t)

	// Park the agent at the rim so nearby samples are likely; every returned
	// target must still clear the minimum distance or sit across the arena.
	agent.obj.SetPosition(geom.Vec3{X: 10, Z: 0})
	for i := 0; i < 50; i++ {
		target := w.chooseWanderTarget(agent)
		if geom.HorizontalDistance(target, agent.obj.Position) < npcMinTargetDist {
			t.Fatalf("target %v too close to agent at %v", target, agent.obj.Position)
		}
	}
}
