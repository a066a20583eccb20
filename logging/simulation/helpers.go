package simulation

import (
	"context"

	"driftgate/server/logging"
)

const (
	// EventEntityRespawned is emitted when an entity is reset to the spawn
	// point, after a kill-plane fall or hazard contact.
	EventEntityRespawned logging.EventType = "simulation.entity_respawned"
	// EventNPCStuckRecovered is emitted when stuck detection forces a new
	// wander target on an agent.
	EventNPCStuckRecovered logging.EventType = "simulation.npc_stuck_recovered"
	// EventItemCollected is emitted when a player picks up a collectible.
	EventItemCollected logging.EventType = "simulation.item_collected"
)

// EntityRespawnedPayload records why the entity was reset and where from.
type EntityRespawnedPayload struct {
	FellFromY float64 `json:"fellFromY"`
	Reason    string  `json:"reason"`
}

// NPCStuckRecoveredPayload records how long the agent was wedged.
type NPCStuckRecoveredPayload struct {
	StuckSeconds float64 `json:"stuckSeconds"`
}

// ItemCollectedPayload identifies the collected item.
type ItemCollectedPayload struct {
	ItemID    string `json:"itemId"`
	ClueIndex int    `json:"clueIndex"`
	Score     int    `json:"score"`
}

// EntityRespawned publishes a respawn event.
func EntityRespawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload EntityRespawnedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEntityRespawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// NPCStuckRecovered publishes a stuck-recovery event.
func NPCStuckRecovered(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload NPCStuckRecoveredPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventNPCStuckRecovered,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// ItemCollected publishes an item pickup event.
func ItemCollected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemCollectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventItemCollected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}
