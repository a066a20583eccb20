package worldgen

import (
	"context"

	"driftgate/server/logging"
)

const (
	// EventUniverseGenerated is emitted after a universe build completes.
	EventUniverseGenerated logging.EventType = "worldgen.universe_generated"
	// EventPlacementExhausted is emitted when the placement solver runs out
	// of attempts and leaves an object at its last sampled position.
	EventPlacementExhausted logging.EventType = "worldgen.placement_exhausted"
	// EventGroundQueryMiss is emitted when a downward ground ray finds no
	// surface and a fallback height is substituted.
	EventGroundQueryMiss logging.EventType = "worldgen.ground_query_miss"
	// EventPhaseSkipped is emitted when an optional generation phase is
	// skipped because its biome configuration is absent.
	EventPhaseSkipped logging.EventType = "worldgen.phase_skipped"
)

// UniverseGeneratedPayload summarizes a completed build.
type UniverseGeneratedPayload struct {
	Kind         string  `json:"kind"`
	Biome        string  `json:"biome"`
	Objects      int     `json:"objects"`
	Portals      int     `json:"portals"`
	NPCs         int     `json:"npcs"`
	Items        int     `json:"items"`
	SpawnX       float64 `json:"spawnX"`
	SpawnY       float64 `json:"spawnY"`
	SpawnZ       float64 `json:"spawnZ"`
	DurationMs   int64   `json:"durationMs"`
	SoftFailures int     `json:"softFailures"`
}

// PlacementExhaustedPayload identifies the object that could not be placed.
type PlacementExhaustedPayload struct {
	Phase    string `json:"phase"`
	Attempts int    `json:"attempts"`
}

// GroundQueryMissPayload records the query point that found no ground.
type GroundQueryMissPayload struct {
	X        float64 `json:"x"`
	Z        float64 `json:"z"`
	Fallback float64 `json:"fallback"`
}

// PhaseSkippedPayload names the skipped phase and the missing config.
type PhaseSkippedPayload struct {
	Phase  string `json:"phase"`
	Reason string `json:"reason"`
}

// UniverseGenerated publishes a universe completion event.
func UniverseGenerated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UniverseGeneratedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventUniverseGenerated,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryWorldgen,
		Payload:  payload,
	})
}

// PlacementExhausted publishes a soft placement failure.
func PlacementExhausted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlacementExhaustedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlacementExhausted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryWorldgen,
		Payload:  payload,
	})
}

// GroundQueryMiss publishes a soft ground-query failure.
func GroundQueryMiss(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GroundQueryMissPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGroundQueryMiss,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryWorldgen,
		Payload:  payload,
	})
}

// PhaseSkipped publishes an optional-phase skip.
func PhaseSkipped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PhaseSkippedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPhaseSkipped,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryWorldgen,
		Payload:  payload,
	})
}
