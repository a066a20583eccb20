package main

import (
	"sync/atomic"
	"time"
)

// telemetryCounters aggregates cheap process-lifetime counters for the
// diagnostics endpoint. Everything is atomic so the tick loop never blocks
// on a reader.
type telemetryCounters struct {
	universesGenerated atomic.Uint64
	placementFailures  atomic.Uint64
	groundMisses       atomic.Uint64
	respawns           atomic.Uint64
	npcStuckRecoveries atomic.Uint64
	ticks              atomic.Uint64
	tickDurationMicros atomic.Uint64
	slowestTickMicros  atomic.Uint64
}

func newTelemetryCounters() *telemetryCounters {
	return &telemetryCounters{}
}

func (t *telemetryCounters) IncrementUniversesGenerated() { t.universesGenerated.Add(1) }
func (t *telemetryCounters) IncrementPlacementFailures()  { t.placementFailures.Add(1) }
func (t *telemetryCounters) IncrementGroundMisses()       { t.groundMisses.Add(1) }
func (t *telemetryCounters) IncrementRespawns()           { t.respawns.Add(1) }
func (t *telemetryCounters) IncrementNPCStuckRecoveries() { t.npcStuckRecoveries.Add(1) }

// ObserveTickDuration accumulates total tick time and tracks the slowest
// tick seen so far.
func (t *telemetryCounters) ObserveTickDuration(d time.Duration) {
	micros := uint64(d.Microseconds())
	t.ticks.Add(1)
	t.tickDurationMicros.Add(micros)
	for {
		prev := t.slowestTickMicros.Load()
		if micros <= prev {
			return
		}
		if t.slowestTickMicros.CompareAndSwap(prev, micros) {
			return
		}
	}
}

// telemetrySnapshot is the JSON shape served by /diagnostics.
type telemetrySnapshot struct {
	UniversesGenerated uint64  `json:"universesGenerated"`
	PlacementFailures  uint64  `json:"placementFailures"`
	GroundMisses       uint64  `json:"groundMisses"`
	Respawns           uint64  `json:"respawns"`
	NPCStuckRecoveries uint64  `json:"npcStuckRecoveries"`
	Ticks              uint64  `json:"ticks"`
	AvgTickMicros      float64 `json:"avgTickMicros"`
	SlowestTickMicros  uint64  `json:"slowestTickMicros"`
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	snap := telemetrySnapshot{
		UniversesGenerated: t.universesGenerated.Load(),
		PlacementFailures:  t.placementFailures.Load(),
		GroundMisses:       t.groundMisses.Load(),
		Respawns:           t.respawns.Load(),
		NPCStuckRecoveries: t.npcStuckRecoveries.Load(),
		Ticks:              t.ticks.Load(),
		SlowestTickMicros:  t.slowestTickMicros.Load(),
	}
	if snap.Ticks > 0 {
		snap.AvgTickMicros = float64(t.tickDurationMicros.Load()) / float64(snap.Ticks)
	}
	return snap
}
