package main

import "strings"

const defaultWorldSeed = "drifter"

// worldConfig captures the knobs used when running the server.
type worldConfig struct {
	Seed              string `json:"seed"`
	BiomeCatalogPath  string `json:"biomeCatalogPath"`
	ProgressDBPath    string `json:"progressDbPath"`
	SnapshotDir       string `json:"snapshotDir"`
	SnapshotRetention int    `json:"snapshotRetention"`
	NPCs              bool   `json:"npcs"`
	Items             bool   `json:"items"`
	Objectives        bool   `json:"objectives"`
}

// normalized returns a config with defaults applied.
func (cfg worldConfig) normalized() worldConfig {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = defaultWorldSeed
	}
	if normalized.BiomeCatalogPath == "" {
		normalized.BiomeCatalogPath = "config/biomes.yaml"
	}
	if normalized.SnapshotRetention == 0 {
		normalized.SnapshotRetention = snapshotRetention
	}
	return normalized
}

// defaultWorldConfig enables every world feature and the default seed.
func defaultWorldConfig() worldConfig {
	return worldConfig{
		Seed:       defaultWorldSeed,
		NPCs:       true,
		Items:      true,
		Objectives: true,
	}
}
