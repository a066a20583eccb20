package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"driftgate/server/internal/biome"
	"driftgate/server/internal/geom"
	"driftgate/server/internal/progress"
	"driftgate/server/internal/snapshot"
	"driftgate/server/logging"
	logginglifecycle "driftgate/server/logging/lifecycle"
	loggingsim "driftgate/server/logging/simulation"
)

// CommandKind discriminates queued player commands.
type CommandKind string

const (
	CommandMove      CommandKind = "move"
	CommandHeartbeat CommandKind = "heartbeat"
)

// Command is one queued player input, applied at the start of the tick it
// was collected for.
type Command struct {
	PlayerID string
	Kind     CommandKind

	// Move fields.
	DX   float64
	DZ   float64
	Jump bool

	// Heartbeat fields.
	RTT time.Duration
}

// worldDeps bundles the world's collaborators. Nil members degrade to no-op
// implementations so tests can construct a bare world.
type worldDeps struct {
	Publisher  logging.Publisher
	Scene      SceneBackend
	Assets     AssetLibrary
	Audio      AudioNotifier
	Objectives ObjectiveNotifier
	Progress   *progress.Store
	Snapshots  *snapshot.Writer
	Catalog    biome.Catalog
}

// World owns the authoritative simulation: the live universe, connected
// players, and every derived subsystem stream. All mutation happens on the
// tick goroutine; the mutex only guards the snapshot path.
type World struct {
	mu sync.Mutex

	config  worldConfig
	seed    string
	catalog biome.Catalog

	universe *UniverseState
	players  map[string]*playerState

	publisher  logging.Publisher
	scene      SceneBackend
	assets     AssetLibrary
	audio      AudioNotifier
	objectives ObjectiveNotifier
	progress   *progress.Store
	snapshots  *snapshot.Writer
	telemetry  *telemetryCounters

	rng *rand.Rand

	currentTick  uint64
	simSeconds   float64
	generation   uint64
	softFailures int

	collectedClues map[int]bool
	totalScore     int

	// pendingSwitch defers a portal transition to the end of the tick so
	// the universe is never rebuilt mid-iteration.
	pendingSwitch *UniverseKind
}

func newWorld(cfg worldConfig, deps worldDeps) *World {
	cfg = cfg.normalized()
	w := &World{
		config:         cfg,
		seed:           cfg.Seed,
		catalog:        deps.Catalog,
		players:        make(map[string]*playerState),
		publisher:      deps.Publisher,
		scene:          deps.Scene,
		assets:         deps.Assets,
		audio:          deps.Audio,
		objectives:     deps.Objectives,
		progress:       deps.Progress,
		snapshots:      deps.Snapshots,
		telemetry:      newTelemetryCounters(),
		collectedClues: make(map[int]bool),
	}
	if w.publisher == nil {
		w.publisher = logging.NopPublisher()
	}
	if w.scene == nil {
		w.scene = nopScene{}
	}
	if w.assets == nil {
		w.assets = nopAssets{}
	}
	if w.audio == nil {
		w.audio = nopAudio{}
	}
	if w.objectives == nil {
		w.objectives = nopObjectives{}
	}
	w.rng = newDeterministicRNG(w.seed, "world")

	w.restoreProgress()
	w.generateUniverse(UniverseHub)
	return w
}

// restoreProgress loads previously collected clues and the running score so
// collected items never respawn across restarts.
func (w *World) restoreProgress() {
	if w.progress == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if clues, err := w.progress.Clues(ctx, w.seed); err == nil {
		for _, idx := range clues {
			w.collectedClues[idx] = true
		}
	}
	if score, err := w.progress.Score(ctx); err == nil {
		w.totalScore = score
	}
}

// AddPlayer spawns a player at the current universe spawn point.
func (w *World) AddPlayer(id string, now time.Time) *playerState {
	w.mu.Lock()
	defer w.mu.Unlock()

	spawn := w.universe.SpawnPoint
	p := newPlayerState(id, spawn, now)
	p.Score = w.totalScore
	w.players[id] = p

	logginglifecycle.PlayerJoined(
		context.Background(),
		w.publisher,
		w.currentTick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer},
		logginglifecycle.PlayerJoinedPayload{SpawnX: spawn.X, SpawnY: spawn.Y, SpawnZ: spawn.Z},
	)
	return p
}

// RemovePlayer drops a player and publishes the disconnect.
func (w *World) RemovePlayer(id, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removePlayerLocked(id, reason)
}

func (w *World) removePlayerLocked(id, reason string) {
	if _, ok := w.players[id]; !ok {
		return
	}
	delete(w.players, id)
	logginglifecycle.PlayerDisconnected(
		context.Background(),
		w.publisher,
		w.currentTick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer},
		logginglifecycle.PlayerDisconnectedPayload{Reason: reason},
		nil,
	)
}

// stepResult reports tick side effects the hub must act on.
type stepResult struct {
	Disconnected []string
	Switched     bool
}

// Step advances the simulation one tick: apply queued commands, integrate
// players, run agents, resolve pickups and portal entries, sweep stale
// connections, and finally perform any deferred universe switch.
func (w *World) Step(tick uint64, now time.Time, dt float64, commands []Command) stepResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := time.Now()
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	w.currentTick = tick
	w.simSeconds += dt

	for _, cmd := range commands {
		w.applyCommand(cmd, now)
	}

	w.stepPlayers(dt)
	w.runNPCBehaviors(dt)
	w.resolvePickups()
	w.resolvePortals()

	var result stepResult
	result.Disconnected = w.sweepStale(now)

	if w.pendingSwitch != nil {
		dest := *w.pendingSwitch
		w.pendingSwitch = nil
		w.switchUniverse(dest)
		result.Switched = true
	}

	w.telemetry.ObserveTickDuration(time.Since(started))
	return result
}

func (w *World) applyCommand(cmd Command, now time.Time) {
	p, ok := w.players[cmd.PlayerID]
	if !ok {
		return
	}
	switch cmd.Kind {
	case CommandMove:
		p.setIntent(cmd.DX, cmd.DZ, cmd.Jump, now)
	case CommandHeartbeat:
		p.lastHeartbeat = now
		p.lastRTT = cmd.RTT
	}
}

// stepPlayers integrates every player against the live universe physics.
func (w *World) stepPlayers(dt float64) {
	u := w.universe
	for _, p := range w.players {
		dx, dz := p.intentX, p.intentZ
		if u.RandomizeControls {
			dx, dz = -dx, -dz
		}

		if dx != 0 || dz != 0 {
			p.Velocity.X = dx * u.Physics.MoveSpeed
			p.Velocity.Z = dz * u.Physics.MoveSpeed
		} else {
			p.Velocity.X *= u.Physics.Friction
			p.Velocity.Z *= u.Physics.Friction
		}

		if p.jump && p.grounded {
			p.Velocity.Y = jumpSpeed
			p.grounded = false
		}
		p.jump = false
		p.Velocity.Y -= u.Physics.Gravity * dt

		displacement := p.Velocity.Scale(dt)
		corrected, grounded := resolveEntityCollision(p.bounds(), displacement, &p.Velocity, u.Objects, playerCollisionOptions(u.Radius))
		p.Position = p.Position.Add(corrected)
		p.grounded = grounded

		if p.Position.Y < killPlaneY {
			w.respawnPlayer(p, "kill_plane")
			continue
		}

		if u.hazardTouching(p.bounds(), hazardTouchMargin) != nil {
			w.respawnPlayer(p, "hazard")
		}
	}
}

// respawnPlayer resets a player to the current spawn point.
func (w *World) respawnPlayer(p *playerState, reason string) {
	fellFrom := p.Position.Y
	p.respawnAt(w.universe.SpawnPoint)
	w.telemetry.IncrementRespawns()
	loggingsim.EntityRespawned(
		context.Background(),
		w.publisher,
		w.currentTick,
		logging.EntityRef{ID: p.ID, Kind: logging.EntityKindPlayer},
		loggingsim.EntityRespawnedPayload{FellFromY: fellFrom, Reason: reason},
	)
}

// resolvePickups collects any item within pickup range of a player. Clue
// items persist their index; objective items advance the active objective
// and pay out its reward on completion.
func (w *World) resolvePickups() {
	u := w.universe
	items := u.Items()
	if len(items) == 0 {
		return
	}

	for _, p := range w.players {
		for _, item := range items {
			if geom.Distance(p.Position, item.Position) > itemPickupRadius {
				continue
			}
			if !u.removeObject(item.ID, w.scene) {
				continue
			}

			score := 1
			if item.ClueIndex >= 0 {
				w.collectedClues[item.ClueIndex] = true
				if w.progress != nil {
					w.progress.RecordClue(w.seed, item.ClueIndex)
				}
			}
			if item.ObjectiveType != "" && u.Objective != nil && u.Objective.Kind == item.ObjectiveType {
				u.Objective.Remaining--
				if u.Objective.Remaining <= 0 {
					score += u.Objective.Reward
					w.objectives.SetObjectiveText("Objective complete")
					u.Objective = nil
				}
			}

			w.totalScore += score
			p.Score = w.totalScore
			if w.progress != nil {
				w.progress.AddScore(score)
			}

			loggingsim.ItemCollected(
				context.Background(),
				w.publisher,
				w.currentTick,
				logging.EntityRef{ID: p.ID, Kind: logging.EntityKindPlayer},
				loggingsim.ItemCollectedPayload{ItemID: item.ID, ClueIndex: item.ClueIndex, Score: w.totalScore},
			)
		}
		items = u.Items()
	}
}

// resolvePortals defers a universe switch when any player stands within
// entry range of a portal.
func (w *World) resolvePortals() {
	if w.pendingSwitch != nil {
		return
	}
	for _, p := range w.players {
		for _, portal := range w.universe.Portals() {
			if geom.HorizontalDistance(p.Position, portal.Position) > portalEnterRadius {
				continue
			}
			dest := portal.Destination
			w.pendingSwitch = &dest
			return
		}
	}
}

// sweepStale removes players whose heartbeats went silent.
func (w *World) sweepStale(now time.Time) []string {
	var dropped []string
	for id, p := range w.players {
		if now.Sub(p.lastHeartbeat) <= disconnectAfter {
			continue
		}
		dropped = append(dropped, id)
		w.removePlayerLocked(id, "heartbeat_timeout")
	}
	return dropped
}

// switchUniverse rebuilds the world for the destination kind and respawns
// every player at the new spawn point.
func (w *World) switchUniverse(dest UniverseKind) {
	from := w.universe.Kind
	summary := w.generateUniverse(dest)
	for _, p := range w.players {
		p.respawnAt(summary.SpawnPoint)
	}
	logginglifecycle.UniverseSwitched(
		context.Background(),
		w.publisher,
		w.currentTick,
		logging.EntityRef{Kind: logging.EntityKindUniverse},
		logginglifecycle.UniverseSwitchedPayload{From: string(from), To: string(dest)},
	)
}

// Snapshot builds the per-tick broadcast state.
func (w *World) Snapshot() stateMessage {
	w.mu.Lock()
	defer w.mu.Unlock()

	u := w.universe
	msg := stateMessage{
		Type:              "state",
		Tick:              w.currentTick,
		UniverseKind:      string(u.Kind),
		Biome:             u.BiomeKey,
		Generation:        u.Generation,
		SpawnPoint:        u.SpawnPoint,
		Physics:           u.Physics,
		RandomizeControls: u.RandomizeControls,
		Score:             w.totalScore,
	}
	if u.Objective != nil {
		obj := *u.Objective
		msg.Objective = &obj
	}
	for _, p := range w.players {
		msg.Players = append(msg.Players, playerSnapshot{
			ID:       p.ID,
			Position: p.Position,
			Velocity: p.Velocity,
			Yaw:      p.Yaw,
			Grounded: p.grounded,
		})
	}
	for _, agent := range u.Agents {
		msg.NPCs = append(msg.NPCs, npcSnapshot{
			ID:       agent.obj.ID,
			Name:     agent.obj.Name,
			Position: agent.obj.Position,
			State:    string(agent.state),
		})
	}
	for _, item := range u.Items() {
		msg.Items = append(msg.Items, itemSnapshot{
			ID:        item.ID,
			Name:      item.Name,
			Position:  item.Position,
			ClueIndex: item.ClueIndex,
		})
	}
	for _, portal := range u.Portals() {
		msg.Portals = append(msg.Portals, portalSnapshot{
			ID:          portal.ID,
			Position:    portal.Position,
			Destination: string(portal.Destination),
		})
	}
	return msg
}

// CurrentSummary rebuilds the join-time summary of the live universe.
func (w *World) CurrentSummary() universeSummary {
	w.mu.Lock()
	defer w.mu.Unlock()
	u := w.universe
	summary := universeSummary{
		SpawnPoint:        u.SpawnPoint,
		Physics:           u.Physics,
		RandomizeControls: u.RandomizeControls,
	}
	if u.Objective != nil {
		obj := *u.Objective
		summary.Objective = &obj
	}
	return summary
}

// ObjectCount reports the live object total, for diagnostics.
func (w *World) ObjectCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.universe.Objects)
}
