// Package biome loads the immutable biome catalog consumed by universe
// generation. Catalogs are authored in YAML and validated against the JSON
// schema generated by cmd/biomeschema.
package biome

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// HubKey is the reserved catalog entry for the hub universe. It is never a
// candidate for random selection.
const HubKey = "hub"

// Catalog maps biome keys to their configuration records.
type Catalog struct {
	Biomes map[string]Biome `yaml:"biomes" json:"biomes" jsonschema:"required"`
}

// Biome is an immutable configuration record. Missing optional sections are
// tolerated; generation falls back to defaults or skips the phase.
type Biome struct {
	DisplayName    string           `yaml:"display_name" json:"display_name"`
	SkyColors      []string         `yaml:"sky_colors" json:"sky_colors,omitempty"`
	FogDensity     float64          `yaml:"fog_density" json:"fog_density,omitempty"`
	GroundMode     string           `yaml:"ground_mode" json:"ground_mode,omitempty" jsonschema:"enum=disk,enum=platforms"`
	PlatformCount  int              `yaml:"platform_count" json:"platform_count,omitempty"`
	SceneryPrefabs []string         `yaml:"scenery_prefabs" json:"scenery_prefabs,omitempty"`
	SceneryMin     int              `yaml:"scenery_min" json:"scenery_min,omitempty"`
	SceneryMax     int              `yaml:"scenery_max" json:"scenery_max,omitempty"`
	Hazards        *HazardRules     `yaml:"hazards" json:"hazards,omitempty"`
	NPCs           *NPCRules        `yaml:"npcs" json:"npcs,omitempty"`
	Physics        Physics          `yaml:"physics" json:"physics"`
	Objective      *ObjectiveConfig `yaml:"objective" json:"objective,omitempty"`
	AmbientSound   string           `yaml:"ambient_sound" json:"ambient_sound,omitempty"`
}

// HazardRules controls environmental hazard placement for a biome. Hazards
// are solid scenery that respawns the player on contact.
type HazardRules struct {
	Prefabs  []string `yaml:"prefabs" json:"prefabs" jsonschema:"required"`
	CountMin int      `yaml:"count_min" json:"count_min"`
	CountMax int      `yaml:"count_max" json:"count_max"`
}

// NPCRules controls agent spawning for a biome.
type NPCRules struct {
	CountMin    int     `yaml:"count_min" json:"count_min"`
	CountMax    int     `yaml:"count_max" json:"count_max"`
	CanFly      bool    `yaml:"can_fly" json:"can_fly,omitempty"`
	Speed       float64 `yaml:"speed" json:"speed,omitempty"`
	IncludeHint bool    `yaml:"include_hint" json:"include_hint,omitempty"`
}

// Physics multipliers applied on top of the universe defaults.
type Physics struct {
	GravityMultiplier float64 `yaml:"gravity_multiplier" json:"gravity_multiplier,omitempty"`
	Friction          float64 `yaml:"friction" json:"friction,omitempty"`
	SpeedMultiplier   float64 `yaml:"speed_multiplier" json:"speed_multiplier,omitempty"`
	ControlChaos      float64 `yaml:"control_chaos" json:"control_chaos,omitempty"`
}

// ObjectiveConfig describes an optional mini-objective item set.
type ObjectiveConfig struct {
	Kind      string `yaml:"kind" json:"kind" jsonschema:"required"`
	ItemCount int    `yaml:"item_count" json:"item_count"`
	Reward    int    `yaml:"reward" json:"reward,omitempty"`
}

// Load reads, schema-validates, and normalizes a catalog file.
func Load(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("biome catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML catalog document.
func Parse(raw []byte) (Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Catalog{}, fmt.Errorf("biome catalog: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return Catalog{}, fmt.Errorf("biome catalog: %w", err)
	}

	var catalog Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		return Catalog{}, fmt.Errorf("biome catalog: %w", err)
	}
	return catalog.normalized(), nil
}

// normalized applies defaults so consumers never see zero physics values.
func (c Catalog) normalized() Catalog {
	out := Catalog{Biomes: make(map[string]Biome, len(c.Biomes))}
	for key, b := range c.Biomes {
		if b.GroundMode == "" {
			b.GroundMode = "disk"
		}
		if b.Physics.GravityMultiplier == 0 {
			b.Physics.GravityMultiplier = 1
		}
		if b.Physics.Friction == 0 {
			b.Physics.Friction = defaultFriction
		}
		if b.Physics.SpeedMultiplier == 0 {
			b.Physics.SpeedMultiplier = 1
		}
		if b.SceneryMax < b.SceneryMin {
			b.SceneryMax = b.SceneryMin
		}
		if b.Hazards != nil && b.Hazards.CountMax < b.Hazards.CountMin {
			b.Hazards.CountMax = b.Hazards.CountMin
		}
		if b.NPCs != nil {
			if b.NPCs.CountMax < b.NPCs.CountMin {
				b.NPCs.CountMax = b.NPCs.CountMin
			}
			if b.NPCs.Speed <= 0 {
				b.NPCs.Speed = 1
			}
		}
		out.Biomes[key] = b
	}
	return out
}

const defaultFriction = 0.92

// Keys returns every non-hub biome key in sorted order, so random selection
// over the slice stays deterministic for a fixed seed.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Biomes))
	for key := range c.Biomes {
		if key == HubKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get looks up a biome, reporting whether the key exists.
func (c Catalog) Get(key string) (Biome, bool) {
	b, ok := c.Biomes[key]
	return b, ok
}

// MarshalJSONDocument renders the catalog as JSON, used by schema tooling.
func (c Catalog) MarshalJSONDocument() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
