package main

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// newDeterministicRNG derives an independent random stream from the world
// seed and a subsystem label, so adding a consumer never perturbs the draws
// of another.
func newDeterministicRNG(seed, label string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	h.Write([]byte{':'})
	h.Write([]byte(label))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// subsystemRNG returns a deterministic stream keyed by the world seed and
// the given label.
func (w *World) subsystemRNG(label string) *rand.Rand {
	if w == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return newDeterministicRNG(w.seed, label)
}

func (w *World) randomFloat() float64 {
	if w != nil && w.rng != nil {
		return w.rng.Float64()
	}
	return rand.Float64()
}

func (w *World) randomAngle() float64 {
	return w.randomFloat() * 2 * math.Pi
}

func (w *World) randomDistance(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + w.randomFloat()*(max-min)
}
