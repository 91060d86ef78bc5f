package main

import "math"

// PlayCommand is a single note to sound. It is produced by the Arbiter and
// consumed by the synth in one off-then-on emission.
type PlayCommand struct {
	Note     uint8
	Velocity uint8
}

// Arbiter turns raw sensor readings into play decisions. It keeps the last
// accepted reading as private state; ProcessReading is its only mutating
// method, called once per loop tick.
type Arbiter struct {
	accepted int
}

// NewArbiter returns an arbiter with accepted = 0, matching the powered-on
// state of the sensor fixture. The first settled reading therefore compares
// against zero and can sound one note before the sensor stabilizes.
func NewArbiter() *Arbiter {
	return &Arbiter{}
}

// Accepted reports the last reading that passed the hysteresis gate.
func (a *Arbiter) Accepted() int { return a.accepted }

// ProcessReading runs one accept/play decision:
//
//  1. hysteresis gate: changes smaller than HYSTERESIS_THRESHOLD against the
//     last accepted reading are jitter; reject, state unchanged.
//  2. accept: the reading becomes the new accepted value. This happens even
//     when step 3 suppresses playback, so hysteresis always compares against
//     the latest candidate, not the latest played note. Intentional; do not
//     reorder.
//  3. noise floor: accepted values strictly above NOISE_FLOOR mean an open
//     circuit (no touch); suppress.
//  4. remap: the accepted value maps linearly onto the note range, inverted
//     (firm touch = low resistance = high note).
func (a *Arbiter) ProcessReading(raw int) (PlayCommand, bool) {
	delta := raw - a.accepted
	if delta < 0 {
		delta = -delta
	}
	if delta < HYSTERESIS_THRESHOLD {
		logger.Debug("arbiter: reading rejected by hysteresis", "raw", raw, "accepted", a.accepted, "delta", delta)
		return PlayCommand{}, false
	}

	a.accepted = raw
	if a.accepted > NOISE_FLOOR {
		logger.Debug("arbiter: open circuit, note suppressed", "accepted", a.accepted)
		return PlayCommand{}, false
	}

	note := remapNote(a.accepted)
	logger.Debug("arbiter: play", "accepted", a.accepted, "note", note)
	return PlayCommand{Note: note, Velocity: VELOCITY}, true
}

// remapNote interpolates a sensor value in [0, SENSOR_MAX] onto
// [HIGHEST_NOTE, LOWEST_NOTE] and saturates at the note bounds, so even
// out-of-range inputs yield a playable note.
func remapNote(value int) uint8 {
	span := float64(HIGHEST_NOTE - LOWEST_NOTE)
	n := int(math.Round(HIGHEST_NOTE - float64(value)*span/SENSOR_MAX))
	if n < LOWEST_NOTE {
		n = LOWEST_NOTE
	}
	if n > HIGHEST_NOTE {
		n = HIGHEST_NOTE
	}
	return uint8(n)
}
