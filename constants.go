package main

import "time"

const (
	ProtocolVersion   = 1
	writeWait         = 10 * time.Second
	tickRate          = 20 // ticks per second
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval

	// maxFrameDelta clamps a single physics step so a stalled server does
	// not integrate one huge frame on resume.
	maxFrameDelta = 0.1 // seconds

	baseMoveSpeed   = 6.0  // units per second on flat ground
	baseGravity     = 24.0 // downward acceleration, before biome multiplier
	jumpSpeed       = 9.5
	playerHalfWidth = 0.4
	playerHeight    = 1.8

	// stepUpHeight lets the player walk over low ledges without a hard
	// stop. NPC collision never steps up.
	stepUpHeight = 0.55

	// killPlaneY triggers a respawn to the last computed spawn point.
	killPlaneY = -40.0

	hubUniverseRadius     = 24.0
	defaultUniverseRadius = 60.0
	groundThickness       = 1.0

	// maxPlacementAttempts is the shared retry budget for object placement
	// and the spawn-clearance search. Raising it trades generation time for
	// denser packing.
	maxPlacementAttempts = 25

	sceneryClearance    = 1.35
	portalClearance     = 2.5
	minPortalSeparation = 10.0
	itemClearance       = 1.1

	groundRayLift        = 2.0
	groundRayLength      = 60.0
	fallbackGroundHeight = 0.5

	spawnClearRadius = 3.0
	spawnNudgeRadius = 4.0

	portalEnterRadius = 1.5
	itemPickupRadius  = 1.4

	// hazardTouchMargin pads the player's box for hazard contact tests, so
	// resting against a hazard face still counts as touching it.
	hazardTouchMargin = 0.05

	defaultObjectExtent = 1.0

	platformMinSize   = 3.0
	platformMaxSize   = 8.0
	platformMinHeight = 0.0
	platformMaxHeight = 10.0

	npcArriveRadius    = 1.2
	npcWanderRadius    = 18.0
	npcFlyWanderScale  = 1.6
	npcFlyMaxAltitude  = 12.0
	npcMinTargetDist   = 3.0
	npcAcceleration    = 8.0
	npcWaitDamping     = 0.82
	npcWaitMinSeconds  = 1.5
	npcWaitMaxSeconds  = 4.0
	npcStuckWindow     = 3.0 // seconds below the movement threshold before recovery
	npcStuckEpsilonSq  = 0.04
	npcStuckNudgeSpeed = 2.5

	snapshotRetention = 32
)
