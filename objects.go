package main

import (
	"github.com/google/uuid"

	"driftgate/server/internal/geom"
)

// ObjectKind is the tagged classification of a placed object. Collision and
// placement decisions pattern-match on it instead of probing ad hoc flags.
type ObjectKind string

const (
	KindGround  ObjectKind = "ground"
	KindScenery ObjectKind = "scenery"
	KindPortal  ObjectKind = "portal"
	KindConsole ObjectKind = "console"
	KindItem    ObjectKind = "item"
	KindNPC     ObjectKind = "npc"
)

// WorldObject is any entity placed in a universe. Position is the center of
// the object's bounding box; the box is recomputed after every transform
// change.
type WorldObject struct {
	ID   string     `json:"id"`
	Kind ObjectKind `json:"kind"`
	Name string     `json:"name,omitempty"`

	// Capability flags layered on top of Kind.
	NonCollidable bool `json:"nonCollidable,omitempty"`
	Hazard        bool `json:"hazard,omitempty"`

	// Portal destination, set only for KindPortal.
	Destination UniverseKind `json:"destination,omitempty"`

	// Objective metadata, set only for KindItem.
	ObjectiveType string `json:"objectiveType,omitempty"`
	ClueIndex     int    `json:"clueIndex,omitempty"`

	Position geom.Vec3 `json:"position"`
	Yaw      float64   `json:"yaw"`
	Size     geom.Vec3 `json:"size"`

	bounds geom.AABB
}

// newWorldObject builds an object with a fresh ID. A zero or negative size
// component is replaced with a conservative default extent so malformed
// geometry still collides sanely.
func newWorldObject(kind ObjectKind, name string, size geom.Vec3) *WorldObject {
	if size.X <= 0 {
		size.X = defaultObjectExtent
	}
	if size.Y <= 0 {
		size.Y = defaultObjectExtent
	}
	if size.Z <= 0 {
		size.Z = defaultObjectExtent
	}
	obj := &WorldObject{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      name,
		Size:      size,
		ClueIndex: -1,
	}
	obj.recomputeBounds()
	return obj
}

// SetPosition moves the object and refreshes its bounding box.
func (o *WorldObject) SetPosition(p geom.Vec3) {
	o.Position = p
	o.recomputeBounds()
}

// SetYaw rotates the object about the vertical axis. The bounding box stays
// axis-aligned; rotation only affects rendering.
func (o *WorldObject) SetYaw(yaw float64) {
	o.Yaw = yaw
}

func (o *WorldObject) recomputeBounds() {
	o.bounds = geom.NewAABB(o.Position, o.Size.Scale(0.5))
}

// Bounds returns the cached axis-aligned bounding box.
func (o *WorldObject) Bounds() geom.AABB {
	return o.bounds
}

// blocksMovement reports whether the object participates in collision.
func (o *WorldObject) blocksMovement() bool {
	if o.NonCollidable {
		return false
	}
	// NPC solidity is intentionally disabled: agents never block the player
	// or each other.
	return o.Kind != KindNPC && o.Kind != KindItem
}
