package biome

import (
	"strings"
	"testing"
)

const validCatalog = `
biomes:
  hub:
    display_name: "Hub"
    sky_colors: ["#101018"]
  verdant:
    display_name: "Verdant"
    ground_mode: disk
    scenery_prefabs: [tree, rock]
    scenery_min: 4
    scenery_max: 8
    npcs:
      count_min: 2
      count_max: 4
      speed: 2.5
    physics:
      gravity_multiplier: 1.0
  shatterfield:
    display_name: "Shatterfield"
    ground_mode: platforms
    platform_count: 12
    hazards:
      prefabs: [shard_cluster]
      count_min: 1
      count_max: 2
    physics:
      gravity_multiplier: 0.4
`

func TestParseAppliesDefaults(t *testing.T) {
	catalog, err := Parse([]byte(validCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	hub, ok := catalog.Get(HubKey)
	if !ok {
		t.Fatal("hub entry missing")
	}
	if hub.GroundMode != "disk" {
		t.Fatalf("hub ground mode = %q, want disk default", hub.GroundMode)
	}
	if hub.Physics.Friction != defaultFriction {
		t.Fatalf("hub friction = %v, want %v", hub.Physics.Friction, defaultFriction)
	}
	if hub.Physics.GravityMultiplier != 1 {
		t.Fatalf("hub gravity multiplier = %v, want 1", hub.Physics.GravityMultiplier)
	}

	verdant, _ := catalog.Get("verdant")
	if verdant.NPCs == nil || verdant.NPCs.Speed != 2.5 {
		t.Fatalf("verdant npcs = %+v", verdant.NPCs)
	}

	shatter, _ := catalog.Get("shatterfield")
	if shatter.Physics.GravityMultiplier != 0.4 {
		t.Fatalf("shatterfield gravity = %v", shatter.Physics.GravityMultiplier)
	}
	if shatter.Hazards == nil || len(shatter.Hazards.Prefabs) != 1 {
		t.Fatalf("shatterfield hazards = %+v", shatter.Hazards)
	}
}

func TestHazardCountFixup(t *testing.T) {
	raw := `
biomes:
  swapped:
    display_name: "Swapped"
    hazards:
      prefabs: [pit]
      count_min: 4
      count_max: 1
`
	catalog, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, _ := catalog.Get("swapped")
	if b.Hazards.CountMax != b.Hazards.CountMin {
		t.Fatalf("count max = %d, want raised to min %d", b.Hazards.CountMax, b.Hazards.CountMin)
	}
}

func TestKeysExcludeHubAndSort(t *testing.T) {
	catalog, err := Parse([]byte(validCatalog))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	keys := catalog.Keys()
	if len(keys) != 2 {
		t.Fatalf("keys = %v, want 2 non-hub entries", keys)
	}
	if keys[0] != "shatterfield" || keys[1] != "verdant" {
		t.Fatalf("keys not sorted: %v", keys)
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	raw := `
biomes:
  oops:
    display_name: "Oops"
    not_a_field: true
`
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestParseRejectsBadGroundMode(t *testing.T) {
	raw := `
biomes:
  oops:
    display_name: "Oops"
    ground_mode: lava
`
	_, err := Parse([]byte(raw))
	if err == nil {
		t.Fatal("expected schema violation")
	}
	if !strings.Contains(err.Error(), "biome catalog") {
		t.Fatalf("error missing context: %v", err)
	}
}

func TestNPCCountFixup(t *testing.T) {
	raw := `
biomes:
  swapped:
    display_name: "Swapped"
    npcs:
      count_min: 5
      count_max: 2
`
	catalog, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, _ := catalog.Get("swapped")
	if b.NPCs.CountMax != b.NPCs.CountMin {
		t.Fatalf("count max = %d, want raised to min %d", b.NPCs.CountMax, b.NPCs.CountMin)
	}
}
