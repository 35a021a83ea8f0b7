package graph

import (
	"math"
	"time"

	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/pkg/config"
)

// DecayStrength applies exponential decay over elapsed hours to s,
// using the given half-life. It is pure and composes exactly:
// DecayStrength(DecayStrength(s, hl, dt1), hl, dt2) equals
// DecayStrength(s, hl, dt1+dt2), so repeated maintenance ticks never
// double-decay an edge as long as callers advance last_activated_at
// by the same Δt they decayed over.
func DecayStrength(s float32, halfLifeHours, elapsedHours float64) float32 {
	if elapsedHours <= 0 {
		return s
	}
	lambda := math.Ln2 / halfLifeHours
	factor := math.Exp(-lambda * elapsedHours)
	out := float32(float64(s) * factor)
	if out < 0 {
		return 0
	}
	return out
}

// HalfLifeHours returns the decay half-life for e given whether it is
// potentiated.
func HalfLifeHours(potentiated bool, cfg config.GraphConfig) float64 {
	if potentiated {
		return cfg.PotentiatedHalfLifeHours
	}
	return cfg.NormalHalfLifeHours
}

// Decay applies exponential decay to e in place, computing elapsed
// time from e.LastActivatedAt to now. It does not touch
// LastActivatedAt itself — callers that want to avoid double-decaying
// on the next tick must do so only once per elapsed interval, which
// DecayStrength's composability guarantees regardless of tick
// granularity.
func Decay(e *model.Edge, cfg config.GraphConfig, now time.Time) {
	elapsed := now.Sub(e.LastActivatedAt).Hours()
	if elapsed <= 0 {
		return
	}
	e.Strength = DecayStrength(e.Strength, HalfLifeHours(e.Potentiated, cfg), elapsed)
}

// ShouldPrune reports whether e has decayed below the floor and is not
// protected by potentiation.
func ShouldPrune(e *model.Edge, cfg config.GraphConfig) bool {
	return !e.Potentiated && e.Strength < cfg.MinStrength
}

// Strengthen applies the Hebbian update to e for a co-activation
// observed at now: it first decays e to the current moment (so use
// that was dormant for a while doesn't get a free ride on stale
// strength), then applies s <- s + eta*(1-s), increments the
// activation count, and — on crossing LTPThreshold — adds the
// one-shot LTP bonus exactly once and flips Potentiated. Returns true
// if this call caused potentiation.
func Strengthen(e *model.Edge, cfg config.GraphConfig, now time.Time) bool {
	Decay(e, cfg, now)

	eta := float64(cfg.HebbianEta)
	e.Strength = float32(float64(e.Strength) + eta*(1-float64(e.Strength)))
	if e.Strength > 1.0 {
		e.Strength = 1.0
	}

	e.ActivationCount++
	e.LastActivatedAt = now

	becamePotentiated := false
	if !e.Potentiated && e.ActivationCount >= cfg.LTPThreshold {
		e.Strength += cfg.LTPBonus
		if e.Strength > 1.0 {
			e.Strength = 1.0
		}
		e.Potentiated = true
		becamePotentiated = true
	}

	return becamePotentiated
}
