package main

import (
	"context"
	"time"
)

// Bridge ties the sampler, the arbiter and the synth into the fixed-period
// polling loop: one sample and one decision per tick, strictly in order.
type Bridge struct {
	sampler Sampler
	arbiter *Arbiter
	synth   Synth
	tel     *Telemetry
}

func NewBridge(sampler Sampler, synth Synth, tel *Telemetry) *Bridge {
	return &Bridge{
		sampler: sampler,
		arbiter: NewArbiter(),
		synth:   synth,
		tel:     tel,
	}
}

// Tick runs one sample-and-decide cycle. A sampler error skips the cycle;
// the arbiter itself has no failure modes.
func (b *Bridge) Tick() {
	raw, err := b.sampler.Sample()
	if err != nil {
		logger.Warn("bridge: sample failed, skipping tick", "err", err)
		return
	}

	before := b.arbiter.Accepted()
	cmd, play := b.arbiter.ProcessReading(raw)
	if after := b.arbiter.Accepted(); after != before {
		b.tel.PublishReading(after)
	}
	if !play {
		return
	}

	// blanket off before the new note; the synth sustains and nothing
	// tracks which note is currently sounding
	if err := b.synth.AllNotesOff(); err != nil {
		logger.Error("bridge: all notes off failed", "err", err)
		return
	}
	if err := b.synth.NoteOn(cmd.Note, cmd.Velocity); err != nil {
		logger.Error("bridge: note on failed", "err", err)
		return
	}
	logger.Info("bridge: note", "note", cmd.Note, "velocity", cmd.Velocity, "accepted", b.arbiter.Accepted())
	b.tel.PublishNote(cmd)
}

// Run drives Tick at the sixteenth-note period until ctx is cancelled, then
// silences the synth.
func (b *Bridge) Run(ctx context.Context) {
	ticker := time.NewTicker(SIXTEENTH_NOTE_MS * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("bridge: stopping")
			if err := b.synth.AllNotesOff(); err != nil {
				logger.Error("bridge: final all notes off failed", "err", err)
			}
			return
		case <-ticker.C:
			b.Tick()
		}
	}
}
