package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type scriptedSampler struct {
	readings []int
	errs     []error
	i        int
}

func (s *scriptedSampler) Sample() (int, error) {
	i := s.i
	s.i++
	if i < len(s.errs) && s.errs[i] != nil {
		return 0, s.errs[i]
	}
	return s.readings[i], nil
}

func (s *scriptedSampler) Close() error { return nil }

type recordingSynth struct {
	calls []string
}

func (r *recordingSynth) Setup(volume, bank, instrument uint8) error {
	r.calls = append(r.calls, "setup")
	return nil
}

func (r *recordingSynth) AllNotesOff() error {
	r.calls = append(r.calls, "off")
	return nil
}

func (r *recordingSynth) NoteOn(note, velocity uint8) error {
	r.calls = append(r.calls, "on")
	return nil
}

func (r *recordingSynth) Close() error { return nil }

func TestTickPlaysOffThenOn(t *testing.T) {
	assert := assert.New(t)
	synth := &recordingSynth{}
	b := NewBridge(&scriptedSampler{readings: []int{300}}, synth, nil)

	b.Tick()
	assert.Equal([]string{"off", "on"}, synth.calls)
}

func TestTickSuppressedSendsNothing(t *testing.T) {
	assert := assert.New(t)
	synth := &recordingSynth{}
	// 950 passes hysteresis against 0 but is open circuit
	b := NewBridge(&scriptedSampler{readings: []int{950}}, synth, nil)

	b.Tick()
	assert.Empty(synth.calls)
	assert.Equal(950, b.arbiter.Accepted())
}

func TestTickSamplerErrorSkipsCycle(t *testing.T) {
	assert := assert.New(t)
	synth := &recordingSynth{}
	s := &scriptedSampler{
		readings: []int{0, 300},
		errs:     []error{errors.New("port gone"), nil},
	}
	b := NewBridge(s, synth, nil)

	b.Tick()
	assert.Empty(synth.calls)
	assert.Equal(0, b.arbiter.Accepted())

	b.Tick()
	assert.Equal([]string{"off", "on"}, synth.calls)
}

func TestTickSequenceMatchesArbiterDecisions(t *testing.T) {
	assert := assert.New(t)
	synth := &recordingSynth{}
	// play, jitter-rejected, suppressed open circuit, play again
	b := NewBridge(&scriptedSampler{readings: []int{300, 305, 950, 400}}, synth, nil)

	for i := 0; i < 4; i++ {
		b.Tick()
	}
	assert.Equal([]string{"off", "on", "off", "on"}, synth.calls)
	assert.Equal(400, b.arbiter.Accepted())
}
