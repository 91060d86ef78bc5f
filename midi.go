package main

import (
	"fmt"
	"io"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.bug.st/serial"
)

// MIDI controller numbers used by the setup handshake and note emission.
const (
	ccBankSelect  = 0
	ccVolume      = 7
	ccAllNotesOff = 123
)

// Synth is the MIDI-capable synthesizer the bridge drives. Every play
// decision is emitted as AllNotesOff followed by NoteOn; with a single voice
// and no per-note note-off tracking, the blanket off prevents stuck notes
// under a sustaining instrument.
type Synth interface {
	Setup(volume, bank, instrument uint8) error
	AllNotesOff() error
	NoteOn(note, velocity uint8) error
	Close() error
}

// -------------------- SerialSynth --------------------

// SerialSynth writes raw channel messages to a synth module wired to a
// serial port (31250 baud for a DIN MIDI shield).
type SerialSynth struct {
	w      io.Writer
	closer io.Closer
}

// OpenSerialSynth opens the named serial device at the given baud rate.
func OpenSerialSynth(name string, baud int) (*SerialSynth, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("synth: open %q: %w", name, err)
	}
	logger.Info("synth: port opened", "device", name, "baud", baud)
	return &SerialSynth{w: p, closer: p}, nil
}

// NewSerialSynth wraps an already-open writer. Used by tests.
func NewSerialSynth(w io.Writer) *SerialSynth {
	return &SerialSynth{w: w}
}

func (s *SerialSynth) send(msg midi.Message) error {
	if _, err := s.w.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("synth: write: %w", err)
	}
	return nil
}

func (s *SerialSynth) Setup(volume, bank, instrument uint8) error {
	logger.Info("synth: setup", "volume", volume, "bank", bank, "instrument", instrument)
	for _, msg := range []midi.Message{
		midi.ControlChange(CHANNEL, ccVolume, volume),
		midi.ControlChange(CHANNEL, ccBankSelect, bank),
		midi.ProgramChange(CHANNEL, instrument),
	} {
		if err := s.send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *SerialSynth) AllNotesOff() error {
	return s.send(midi.ControlChange(CHANNEL, ccAllNotesOff, 0))
}

func (s *SerialSynth) NoteOn(note, velocity uint8) error {
	return s.send(midi.NoteOn(CHANNEL, note, velocity))
}

func (s *SerialSynth) Close() error {
	if s.closer == nil {
		return nil
	}
	logger.Info("synth: closing port")
	return s.closer.Close()
}

// -------------------- DriverSynth --------------------

// PREFERRED_PATTERNS: output ports matching any of these are picked first.
var PREFERRED_PATTERNS = []string{"FluidSynth", "TiMidity"}

// EXCLUDED_PATTERNS: virtual/system ports that are never auto-selected.
var EXCLUDED_PATTERNS = []string{"Midi Through", "Through Port", "Dummy"}

// DriverSynth sends the same messages to a local MIDI output port via the
// rtmidi driver, so the bridge can drive a software synth with no serial
// hardware at all.
type DriverSynth struct {
	drv *rtmididrv.Driver
	out drivers.Out
}

// OpenDriverSynth opens the MIDI output port whose name contains pattern.
// With an empty pattern it auto-selects: a preferred port if one matches,
// otherwise the only non-excluded port available.
func OpenDriverSynth(pattern string) (*DriverSynth, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("synth: rtmididrv: %w", err)
	}
	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("synth: list outputs: %w", err)
	}

	out, ok := pickOut(outs, pattern)
	if !ok {
		drv.Close()
		return nil, fmt.Errorf("synth: no usable MIDI output (pattern %q, %d ports)", pattern, len(outs))
	}
	if err := out.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("synth: open %q: %w", out.String(), err)
	}
	logger.Info("synth: MIDI output connected", "port", out.String())
	return &DriverSynth{drv: drv, out: out}, nil
}

func pickOut(outs []drivers.Out, pattern string) (drivers.Out, bool) {
	var usable []drivers.Out
	for _, o := range outs {
		name := o.String()
		excluded := false
		for _, pat := range EXCLUDED_PATTERNS {
			if containsCI(name, pat) {
				excluded = true
				break
			}
		}
		if excluded {
			logger.Debug("synth: output excluded", "port", name)
			continue
		}
		usable = append(usable, o)
	}

	if pattern != "" {
		for _, o := range usable {
			if containsCI(o.String(), pattern) {
				return o, true
			}
		}
		return nil, false
	}
	for _, pat := range PREFERRED_PATTERNS {
		for _, o := range usable {
			if containsCI(o.String(), pat) {
				return o, true
			}
		}
	}
	if len(usable) == 1 {
		return usable[0], true
	}
	return nil, false
}

func (d *DriverSynth) Setup(volume, bank, instrument uint8) error {
	logger.Info("synth: setup", "volume", volume, "bank", bank, "instrument", instrument)
	for _, msg := range []midi.Message{
		midi.ControlChange(CHANNEL, ccVolume, volume),
		midi.ControlChange(CHANNEL, ccBankSelect, bank),
		midi.ProgramChange(CHANNEL, instrument),
	} {
		if err := d.out.Send(msg); err != nil {
			return fmt.Errorf("synth: send: %w", err)
		}
	}
	return nil
}

func (d *DriverSynth) AllNotesOff() error {
	if err := d.out.Send(midi.ControlChange(CHANNEL, ccAllNotesOff, 0)); err != nil {
		return fmt.Errorf("synth: send: %w", err)
	}
	return nil
}

func (d *DriverSynth) NoteOn(note, velocity uint8) error {
	if err := d.out.Send(midi.NoteOn(CHANNEL, note, velocity)); err != nil {
		return fmt.Errorf("synth: send: %w", err)
	}
	return nil
}

func (d *DriverSynth) Close() error {
	_ = d.out.Close()
	d.drv.Close()
	return nil
}

// -------------------- utility --------------------

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
