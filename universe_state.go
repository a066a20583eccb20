package main

import (
	"driftgate/server/internal/biome"
	"driftgate/server/internal/geom"
)

// UniverseKind names the two arena flavors.
type UniverseKind string

const (
	UniverseHub   UniverseKind = "hub"
	UniverseDrift UniverseKind = "drift"
)

// physicsParams are the effective physics values for the live universe,
// after biome multipliers.
type physicsParams struct {
	Gravity   float64 `json:"gravity"`
	Friction  float64 `json:"friction"`
	MoveSpeed float64 `json:"moveSpeed"`
}

// activeObjective tracks a biome mini-objective while its universe lives.
type activeObjective struct {
	Kind      string `json:"kind"`
	Remaining int    `json:"remaining"`
	Reward    int    `json:"reward"`
}

// UniverseState is the live arena: every placed object plus the effective
// environment parameters. Exactly one instance is live at a time; the
// generator owns it and the frame loop borrows it for the duration of a
// tick.
type UniverseState struct {
	Kind       UniverseKind
	BiomeKey   string
	Biome      biome.Biome
	Radius     float64
	GroundMode string
	Generation uint64

	Objects []*WorldObject
	Agents  []*npcAgent

	SpawnPoint        geom.Vec3
	Physics           physicsParams
	RandomizeControls bool
	Objective         *activeObjective
}

// addObject appends to the universe and registers with the scene backend.
func (u *UniverseState) addObject(obj *WorldObject, scene SceneBackend) {
	u.Objects = append(u.Objects, obj)
	if scene != nil {
		scene.AddObject(obj)
	}
}

// removeObject drops an object by identity, returning whether it was
// present. Removal preserves order; the slice is small and scanned linearly
// everywhere else too.
func (u *UniverseState) removeObject(id string, scene SceneBackend) bool {
	for i, obj := range u.Objects {
		if obj.ID != id {
			continue
		}
		if scene != nil {
			scene.RemoveObject(obj)
		}
		u.Objects = append(u.Objects[:i], u.Objects[i+1:]...)
		return true
	}
	return false
}

// Portals returns the active portal objects.
func (u *UniverseState) Portals() []*WorldObject {
	var portals []*WorldObject
	for _, obj := range u.Objects {
		if obj.Kind == KindPortal {
			portals = append(portals, obj)
		}
	}
	return portals
}

// Items returns the remaining collectible objects.
func (u *UniverseState) Items() []*WorldObject {
	var items []*WorldObject
	for _, obj := range u.Objects {
		if obj.Kind == KindItem {
			items = append(items, obj)
		}
	}
	return items
}

// hazardTouching returns the first hazard object within margin of the given
// box, or nil when clear. The margin keeps face contact after collision
// push-out counting as a touch.
func (u *UniverseState) hazardTouching(box geom.AABB, margin float64) *WorldObject {
	for _, obj := range u.Objects {
		if obj.Hazard && box.OverlapsPadded(obj.Bounds(), margin) {
			return obj
		}
	}
	return nil
}

// groundObjects returns every ground-tagged object.
func (u *UniverseState) groundObjects() []*WorldObject {
	var ground []*WorldObject
	for _, obj := range u.Objects {
		if obj.Kind == KindGround {
			ground = append(ground, obj)
		}
	}
	return ground
}

// release unregisters every object from the scene and empties the universe.
func (u *UniverseState) release(scene SceneBackend) {
	if scene != nil {
		for _, obj := range u.Objects {
			scene.RemoveObject(obj)
		}
	}
	u.Objects = nil
	u.Agents = nil
	u.Objective = nil
}
