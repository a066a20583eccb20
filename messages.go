package main

import "driftgate/server/internal/geom"

// Client → server messages.

type clientEnvelope struct {
	Type string `json:"type"`

	// input
	DX   float64 `json:"dx,omitempty"`
	DZ   float64 `json:"dz,omitempty"`
	Jump bool    `json:"jump,omitempty"`

	// heartbeat
	SentAt int64 `json:"sentAt,omitempty"`
}

// Server → client messages.

type joinMessage struct {
	Type            string          `json:"type"`
	ProtocolVersion int             `json:"protocolVersion"`
	PlayerID        string          `json:"playerId"`
	Summary         universeSummary `json:"summary"`
}

type heartbeatMessage struct {
	Type     string `json:"type"`
	SentAt   int64  `json:"sentAt"`
	ServerAt int64  `json:"serverAt"`
}

type playerSnapshot struct {
	ID       string    `json:"id"`
	Position geom.Vec3 `json:"position"`
	Velocity geom.Vec3 `json:"velocity"`
	Yaw      float64   `json:"yaw"`
	Grounded bool      `json:"grounded"`
}

type npcSnapshot struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Position geom.Vec3 `json:"position"`
	State    string    `json:"state"`
}

type itemSnapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  geom.Vec3 `json:"position"`
	ClueIndex int       `json:"clueIndex"`
}

type portalSnapshot struct {
	ID          string    `json:"id"`
	Position    geom.Vec3 `json:"position"`
	Destination string    `json:"destination"`
}

type stateMessage struct {
	Type              string           `json:"type"`
	Tick              uint64           `json:"tick"`
	UniverseKind      string           `json:"universeKind"`
	Biome             string           `json:"biome"`
	Generation        uint64           `json:"generation"`
	SpawnPoint        geom.Vec3        `json:"spawnPoint"`
	Physics           physicsParams    `json:"physics"`
	RandomizeControls bool             `json:"randomizeControls"`
	Score             int              `json:"score"`
	Objective         *activeObjective `json:"objective,omitempty"`
	Players           []playerSnapshot `json:"players"`
	NPCs              []npcSnapshot    `json:"npcs"`
	Items             []itemSnapshot   `json:"items"`
	Portals           []portalSnapshot `json:"portals"`
}
