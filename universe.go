package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"driftgate/server/internal/biome"
	"driftgate/server/internal/geom"
	"driftgate/server/internal/snapshot"
	"driftgate/server/logging"
	loggingworldgen "driftgate/server/logging/worldgen"
)

// clueCatalogSize is the number of distinct clue indices across all
// universes. Collected indices persist and never respawn.
const clueCatalogSize = 24

// baseClueItemCount is how many clue items a generated universe carries
// outside of any mini-objective.
const baseClueItemCount = 3

// universeSummary is handed back to the interaction loop after a build.
type universeSummary struct {
	SpawnPoint        geom.Vec3        `json:"spawnPoint"`
	Physics           physicsParams    `json:"physics"`
	RandomizeControls bool             `json:"randomizeControls"`
	Objective         *activeObjective `json:"objective,omitempty"`
}

// generateUniverse runs one full build: clear, biome select, environment,
// then placement phases in strict dependency order, so later phases avoid
// overlapping earlier placements. Every phase degrades softly; generation
// always completes and always returns a usable summary.
func (w *World) generateUniverse(kind UniverseKind) universeSummary {
	started := time.Now()
	w.generation++
	w.softFailures = 0

	if w.universe != nil {
		w.universe.release(w.scene)
	}
	u := &UniverseState{Kind: kind, Generation: w.generation}
	w.universe = u

	key, b := w.selectBiome(kind)
	u.BiomeKey = key
	u.Biome = b
	u.GroundMode = b.GroundMode
	if kind == UniverseHub {
		u.Radius = hubUniverseRadius
	} else {
		u.Radius = defaultUniverseRadius
	}
	u.Physics = physicsParams{
		Gravity:   baseGravity * b.Physics.GravityMultiplier,
		Friction:  b.Physics.Friction,
		MoveSpeed: baseMoveSpeed * b.Physics.SpeedMultiplier,
	}
	chaosRNG := w.subsystemRNG(fmt.Sprintf("universe.%d.chaos", w.generation))
	u.RandomizeControls = b.Physics.ControlChaos > 0 && chaosRNG.Float64() < b.Physics.ControlChaos

	w.scene.SetEnvironment(EnvironmentParams{
		SkyColors:    b.SkyColors,
		FogDensity:   b.FogDensity,
		AmbientLight: 0.8,
	})
	if b.AmbientSound != "" {
		w.audio.SetAmbient(b.AmbientSound)
	}

	w.placeGround(u, b)
	w.placePortals(u, kind)
	if kind == UniverseHub {
		w.placeConsole(u)
	} else {
		w.placeScenery(u, b)
		w.placeHazards(u, b)
	}
	if w.config.NPCs {
		w.spawnNPCs(u, b)
	}
	if w.config.Items && kind != UniverseHub {
		w.spawnClueItems(u)
	}
	if w.config.Objectives && kind != UniverseHub {
		w.spawnObjectiveItems(u, b)
	}
	u.SpawnPoint = w.computeSpawnPoint(u)

	w.recordUniverse(u, started)

	return universeSummary{
		SpawnPoint:        u.SpawnPoint,
		Physics:           u.Physics,
		RandomizeControls: u.RandomizeControls,
		Objective:         u.Objective,
	}
}

// selectBiome picks the hub entry for hub universes and a uniformly random
// non-hub entry otherwise. A missing catalog entry degrades to normalized
// defaults.
func (w *World) selectBiome(kind UniverseKind) (string, biome.Biome) {
	if kind == UniverseHub {
		if b, ok := w.catalog.Get(biome.HubKey); ok {
			return biome.HubKey, b
		}
		return biome.HubKey, defaultBiome()
	}

	keys := w.catalog.Keys()
	if len(keys) == 0 {
		w.warnPhaseSkipped("biome_select", "catalog has no non-hub entries")
		return "fallback", defaultBiome()
	}
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.biome", w.generation))
	key := keys[rng.Intn(len(keys))]
	b, _ := w.catalog.Get(key)
	return key, b
}

func defaultBiome() biome.Biome {
	return biome.Biome{
		GroundMode: "disk",
		Physics: biome.Physics{
			GravityMultiplier: 1,
			Friction:          0.92,
			SpeedMultiplier:   1,
		},
	}
}

// placeGround lays either one solid disk or a scatter of floating platforms,
// always with a guaranteed central platform so the spawn search has ground
// beneath it.
func (w *World) placeGround(u *UniverseState, b biome.Biome) {
	if b.GroundMode != "platforms" {
		disk := newWorldObject(KindGround, "ground_disk", geom.Vec3{X: u.Radius * 2, Y: groundThickness, Z: u.Radius * 2})
		disk.SetPosition(geom.Vec3{Y: -groundThickness / 2})
		u.addObject(disk, w.scene)
		return
	}

	center := newWorldObject(KindGround, "platform_center", geom.Vec3{X: platformMaxSize, Y: groundThickness, Z: platformMaxSize})
	center.SetPosition(geom.Vec3{Y: -groundThickness / 2})
	u.addObject(center, w.scene)

	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.platforms", w.generation))
	count := b.PlatformCount
	if count <= 0 {
		count = 10
	}
	for i := 0; i < count; i++ {
		side := platformMinSize + rng.Float64()*(platformMaxSize-platformMinSize)
		platform := newWorldObject(KindGround, "platform", geom.Vec3{X: side, Y: groundThickness, Z: side})
		height := platformMinHeight + rng.Float64()*(platformMaxHeight-platformMinHeight)
		result := placeInDisk(platform, height, u.Radius*0.9, u.Objects, 1.0, rng, maxPlacementAttempts)
		if !result.OK {
			w.warnPlacementExhausted("ground.platforms", platform, result.Attempts)
		}
		u.addObject(platform, w.scene)
	}
}

// placePortals adds one portal in the hub (to a drift universe) and two in a
// drift universe (back to the hub, onward to another drift). The second
// portal must clear the first by minPortalSeparation; the retry loop shares
// the standard attempt budget.
func (w *World) placePortals(u *UniverseState, kind UniverseKind) {
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.portals", w.generation))

	destinations := []UniverseKind{UniverseDrift}
	if kind != UniverseHub {
		destinations = []UniverseKind{UniverseHub, UniverseDrift}
	}

	var placed []*WorldObject
	for _, dest := range destinations {
		portal := newWorldObject(KindPortal, "portal", geom.Vec3{X: 1.6, Y: 2.6, Z: 0.6})
		portal.Destination = dest

		ok := false
		attempts := 0
		for attempt := 1; attempt <= maxPlacementAttempts; attempt++ {
			result := placeOnGroundInDisk(portal, u.Radius*0.8, u.Objects, portalClearance, rng, 1)
			attempts = attempt
			if !result.OK {
				continue
			}
			if tooCloseToPortals(portal, placed) {
				continue
			}
			ok = true
			break
		}
		if !ok {
			w.warnPlacementExhausted("portals", portal, attempts)
		}
		u.addObject(portal, w.scene)
		placed = append(placed, portal)
	}
}

func tooCloseToPortals(portal *WorldObject, placed []*WorldObject) bool {
	for _, other := range placed {
		if geom.HorizontalDistance(portal.Position, other.Position) < minPortalSeparation {
			return true
		}
	}
	return false
}

// placeConsole drops the hub's clue console near the center.
func (w *World) placeConsole(u *UniverseState) {
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.console", w.generation))
	size, ok := w.assets.PrefabSize("hub_console")
	if !ok {
		size = geom.Vec3{X: 1.8, Y: 1.4, Z: 0.9}
	}
	console := newWorldObject(KindConsole, "hub_console", size)
	result := placeOnGroundInDisk(console, u.Radius*0.35, u.Objects, sceneryClearance, rng, maxPlacementAttempts)
	if !result.OK {
		w.warnPlacementExhausted("console", console, result.Attempts)
	}
	u.addObject(console, w.scene)
}

// placeScenery scatters the biome's prefabs. Missing asset metadata falls
// back to a procedural box so a bad catalog entry never aborts the phase.
func (w *World) placeScenery(u *UniverseState, b biome.Biome) {
	if len(b.SceneryPrefabs) == 0 {
		w.warnPhaseSkipped("scenery", "biome has no scenery prefabs")
		return
	}
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.scenery", w.generation))
	count := b.SceneryMin
	if b.SceneryMax > b.SceneryMin {
		count += rng.Intn(b.SceneryMax - b.SceneryMin + 1)
	}

	for i := 0; i < count; i++ {
		name := b.SceneryPrefabs[rng.Intn(len(b.SceneryPrefabs))]
		size, ok := w.assets.PrefabSize(name)
		if !ok {
			size = geom.Vec3{
				X: 0.8 + rng.Float64()*2.2,
				Y: 1.0 + rng.Float64()*3.5,
				Z: 0.8 + rng.Float64()*2.2,
			}
		}
		obj := newWorldObject(KindScenery, name, size)
		result := placeOnGroundInDisk(obj, u.Radius*0.92, u.Objects, sceneryClearance, rng, maxPlacementAttempts)
		if !result.OK {
			w.warnPlacementExhausted("scenery", obj, result.Attempts)
		}
		u.addObject(obj, w.scene)
	}
}

// placeHazards scatters the biome's hazard prefabs. Hazards are collidable
// scenery that respawns the player on contact.
func (w *World) placeHazards(u *UniverseState, b biome.Biome) {
	if b.Hazards == nil || len(b.Hazards.Prefabs) == 0 {
		return
	}
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.hazards", w.generation))
	count := b.Hazards.CountMin
	if b.Hazards.CountMax > b.Hazards.CountMin {
		count += rng.Intn(b.Hazards.CountMax - b.Hazards.CountMin + 1)
	}

	for i := 0; i < count; i++ {
		name := b.Hazards.Prefabs[rng.Intn(len(b.Hazards.Prefabs))]
		size, ok := w.assets.PrefabSize(name)
		if !ok {
			size = geom.Vec3{
				X: 1.0 + rng.Float64()*1.5,
				Y: 0.6 + rng.Float64()*1.2,
				Z: 1.0 + rng.Float64()*1.5,
			}
		}
		obj := newWorldObject(KindScenery, name, size)
		obj.Hazard = true
		result := placeOnGroundInDisk(obj, u.Radius*0.92, u.Objects, sceneryClearance, rng, maxPlacementAttempts)
		if !result.OK {
			w.warnPlacementExhausted("hazards", obj, result.Attempts)
		}
		u.addObject(obj, w.scene)
	}
}

// spawnNPCs populates the universe per the biome's rules, plus an optional
// static hint agent.
func (w *World) spawnNPCs(u *UniverseState, b biome.Biome) {
	if b.NPCs == nil {
		w.warnPhaseSkipped("npcs", "biome has no npc rules")
		return
	}
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.npcs", w.generation))
	count := b.NPCs.CountMin
	if b.NPCs.CountMax > b.NPCs.CountMin {
		count += rng.Intn(b.NPCs.CountMax - b.NPCs.CountMin + 1)
	}

	for i := 0; i < count; i++ {
		obj := newWorldObject(KindNPC, "drifter", geom.Vec3{X: 0.8, Y: 1.2, Z: 0.8})
		result := placeOnGroundInDisk(obj, u.Radius*0.85, u.Objects, itemClearance, rng, maxPlacementAttempts)
		if !result.OK {
			w.warnPlacementExhausted("npcs", obj, result.Attempts)
		}
		if b.NPCs.CanFly {
			altitude := w.randomDistanceWith(rng, 1.5, npcFlyMaxAltitude)
			obj.SetPosition(geom.Vec3{X: obj.Position.X, Y: altitude, Z: obj.Position.Z})
		}
		u.addObject(obj, w.scene)

		agent := newNPCAgent(obj, b.NPCs.Speed, b.NPCs.CanFly)
		agent.target = w.chooseWanderTarget(agent)
		u.Agents = append(u.Agents, agent)
	}

	if b.NPCs.IncludeHint {
		obj := newWorldObject(KindNPC, "hint_keeper", geom.Vec3{X: 0.9, Y: 1.6, Z: 0.9})
		result := placeOnGroundInDisk(obj, u.Radius*0.4, u.Objects, sceneryClearance, rng, maxPlacementAttempts)
		if !result.OK {
			w.warnPlacementExhausted("npcs.hint", obj, result.Attempts)
		}
		u.addObject(obj, w.scene)
		u.Agents = append(u.Agents, newStaticAgent(obj))
	}
}

// spawnClueItems places collectible clues whose indices are drawn from the
// uncollected remainder of the global clue catalog.
func (w *World) spawnClueItems(u *UniverseState) {
	indices := w.uncollectedClues(baseClueItemCount)
	if len(indices) == 0 {
		return
	}
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.items", w.generation))
	for _, idx := range indices {
		item := newWorldObject(KindItem, fmt.Sprintf("clue_%02d", idx), geom.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
		item.ClueIndex = idx
		item.NonCollidable = true
		result := placeOnGroundInDisk(item, u.Radius*0.9, u.Objects, itemClearance, rng, maxPlacementAttempts)
		if !result.OK {
			w.warnPlacementExhausted("items", item, result.Attempts)
		}
		// Float collectibles slightly so they read as pickups.
		item.SetPosition(item.Position.Add(geom.Vec3{Y: 0.4}))
		u.addObject(item, w.scene)
	}
}

// uncollectedClues picks up to n clue indices not yet recorded as collected.
func (w *World) uncollectedClues(n int) []int {
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.clues", w.generation))
	var available []int
	for idx := 0; idx < clueCatalogSize; idx++ {
		if !w.collectedClues[idx] {
			available = append(available, idx)
		}
	}
	rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})
	if len(available) > n {
		available = available[:n]
	}
	return available
}

// spawnObjectiveItems adds the biome's optional mini-objective item set and
// activates the objective.
func (w *World) spawnObjectiveItems(u *UniverseState, b biome.Biome) {
	if b.Objective == nil {
		return
	}
	count := b.Objective.ItemCount
	if count <= 0 {
		count = 3
	}
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.objective", w.generation))
	for i := 0; i < count; i++ {
		item := newWorldObject(KindItem, b.Objective.Kind, geom.Vec3{X: 0.4, Y: 0.4, Z: 0.4})
		item.ObjectiveType = b.Objective.Kind
		item.NonCollidable = true
		result := placeOnGroundInDisk(item, u.Radius*0.9, u.Objects, itemClearance, rng, maxPlacementAttempts)
		if !result.OK {
			w.warnPlacementExhausted("objective", item, result.Attempts)
		}
		item.SetPosition(item.Position.Add(geom.Vec3{Y: 0.4}))
		u.addObject(item, w.scene)
	}

	u.Objective = &activeObjective{
		Kind:      b.Objective.Kind,
		Remaining: count,
		Reward:    b.Objective.Reward,
	}
	w.objectives.SetObjectiveText(fmt.Sprintf("Collect %d %s", count, b.Objective.Kind))
}

// computeSpawnPoint searches for a collision-clear player spawn, nudging
// within a small radius and re-querying the ground after every nudge. The
// search shares the placement attempt budget; on exhaustion the last
// candidate is returned so generation still completes.
func (w *World) computeSpawnPoint(u *UniverseState) geom.Vec3 {
	rng := w.subsystemRNG(fmt.Sprintf("universe.%d.spawn", w.generation))

	candidate := geom.Vec3{}
	for attempt := 1; attempt <= maxPlacementAttempts; attempt++ {
		height, ok := groundHeightAt(geom.Vec3{X: candidate.X, Y: groundRayLength / 2, Z: candidate.Z}, u.Objects)
		if !ok {
			height = fallbackGroundHeight
			w.warnGroundMiss(candidate.X, candidate.Z)
		}
		candidate.Y = height + playerHeight/2 + 0.05

		if ok && w.spawnClear(u, candidate) {
			return candidate
		}

		angle := rng.Float64() * 2 * math.Pi
		dist := rng.Float64() * spawnNudgeRadius
		candidate.X = math.Cos(angle) * dist
		candidate.Z = math.Sin(angle) * dist
	}
	return candidate
}

// spawnClear reports whether no non-ground object sits within the spawn
// clearance radius of the candidate.
func (w *World) spawnClear(u *UniverseState, candidate geom.Vec3) bool {
	for _, obj := range u.Objects {
		if obj.Kind == KindGround {
			continue
		}
		if geom.HorizontalDistance(obj.Position, candidate) < spawnClearRadius {
			return false
		}
	}
	return true
}

// recordUniverse writes the snapshot, persists the visit, bumps telemetry,
// and publishes the completion event.
func (w *World) recordUniverse(u *UniverseState, started time.Time) {
	if w.progress != nil {
		w.progress.RecordVisit(string(u.Kind))
	}
	if w.snapshots != nil {
		record := snapshot.UniverseRecord{
			Header:     snapshot.Header{Seed: w.seed, Generation: u.Generation},
			Kind:       string(u.Kind),
			Biome:      u.BiomeKey,
			Radius:     u.Radius,
			SpawnPoint: u.SpawnPoint,
			GroundMode: u.GroundMode,
		}
		if u.Objective != nil {
			record.ObjectiveKind = u.Objective.Kind
		}
		for _, obj := range u.Objects {
			record.Objects = append(record.Objects, snapshot.ObjectRecord{
				ID:       obj.ID,
				Kind:     string(obj.Kind),
				Position: obj.Position,
				Yaw:      obj.Yaw,
				Size:     obj.Size,
			})
		}
		if _, err := w.snapshots.Write(record); err != nil {
			w.publisher.Publish(context.Background(), logging.Event{
				Type:     "worldgen.snapshot_failed",
				Tick:     w.currentTick,
				Severity: logging.SeverityWarn,
				Category: logging.CategoryWorldgen,
				Extra:    map[string]any{"error": err.Error()},
			})
		}
	}

	w.telemetry.IncrementUniversesGenerated()
	loggingworldgen.UniverseGenerated(
		context.Background(),
		w.publisher,
		w.currentTick,
		logging.EntityRef{ID: fmt.Sprintf("universe-%d", u.Generation), Kind: logging.EntityKindUniverse},
		loggingworldgen.UniverseGeneratedPayload{
			Kind:         string(u.Kind),
			Biome:        u.BiomeKey,
			Objects:      len(u.Objects),
			Portals:      len(u.Portals()),
			NPCs:         len(u.Agents),
			Items:        len(u.Items()),
			SpawnX:       u.SpawnPoint.X,
			SpawnY:       u.SpawnPoint.Y,
			SpawnZ:       u.SpawnPoint.Z,
			DurationMs:   time.Since(started).Milliseconds(),
			SoftFailures: w.softFailures,
		},
	)
}

// randomDistanceWith mirrors randomDistance on an explicit stream.
func (w *World) randomDistanceWith(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

func (w *World) warnPlacementExhausted(phase string, obj *WorldObject, attempts int) {
	w.softFailures++
	w.telemetry.IncrementPlacementFailures()
	loggingworldgen.PlacementExhausted(
		context.Background(),
		w.publisher,
		w.currentTick,
		logging.EntityRef{ID: obj.ID, Kind: logging.EntityKindObject},
		loggingworldgen.PlacementExhaustedPayload{Phase: phase, Attempts: attempts},
	)
}

func (w *World) warnGroundMiss(x, z float64) {
	w.softFailures++
	w.telemetry.IncrementGroundMisses()
	loggingworldgen.GroundQueryMiss(
		context.Background(),
		w.publisher,
		w.currentTick,
		logging.EntityRef{Kind: logging.EntityKindUniverse},
		loggingworldgen.GroundQueryMissPayload{X: x, Z: z, Fallback: fallbackGroundHeight},
	)
}

func (w *World) warnPhaseSkipped(phase, reason string) {
	w.softFailures++
	loggingworldgen.PhaseSkipped(
		context.Background(),
		w.publisher,
		w.currentTick,
		logging.EntityRef{Kind: logging.EntityKindUniverse},
		loggingworldgen.PhaseSkippedPayload{Phase: phase, Reason: reason},
	)
}
