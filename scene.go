package main

import "driftgate/server/internal/geom"

// EnvironmentParams configure the visual shell of a universe. The core
// computes them; a rendering collaborator applies them.
type EnvironmentParams struct {
	SkyColors    []string `json:"skyColors,omitempty"`
	FogDensity   float64  `json:"fogDensity"`
	AmbientLight float64  `json:"ambientLight"`
}

// SceneBackend is the rendering collaborator. The core never draws; it only
// reports object lifecycles and environment changes.
type SceneBackend interface {
	AddObject(obj *WorldObject)
	RemoveObject(obj *WorldObject)
	SetEnvironment(params EnvironmentParams)
}

// AssetLibrary resolves prefab names to their footprint. A miss returns
// ok=false and the core substitutes a procedural fallback shape.
type AssetLibrary interface {
	PrefabSize(name string) (geom.Vec3, bool)
}

// AudioNotifier receives ambient sound selections. Fire-and-forget; it
// exerts no control flow back into the core.
type AudioNotifier interface {
	SetAmbient(key string)
}

// ObjectiveNotifier receives objective text updates for the HUD.
type ObjectiveNotifier interface {
	SetObjectiveText(text string)
}

type nopScene struct{}

func (nopScene) AddObject(*WorldObject)           {}
func (nopScene) RemoveObject(*WorldObject)        {}
func (nopScene) SetEnvironment(EnvironmentParams) {}

type nopAssets struct{}

func (nopAssets) PrefabSize(string) (geom.Vec3, bool) { return geom.Vec3{}, false }

type nopAudio struct{}

func (nopAudio) SetAmbient(string) {}

type nopObjectives struct{}

func (nopObjectives) SetObjectiveText(string) {}
