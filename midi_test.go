package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialSynthNoteOnBytes(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	s := NewSerialSynth(&buf)

	assert.NoError(s.NoteOn(82, 127))
	assert.Equal([]byte{0x90 | CHANNEL, 82, 127}, buf.Bytes())
}

func TestSerialSynthAllNotesOffBytes(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	s := NewSerialSynth(&buf)

	assert.NoError(s.AllNotesOff())
	assert.Equal([]byte{0xB0 | CHANNEL, ccAllNotesOff, 0}, buf.Bytes())
}

func TestSerialSynthSetupHandshakeOrder(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	s := NewSerialSynth(&buf)

	assert.NoError(s.Setup(120, 0, 19))
	want := []byte{
		0xB0 | CHANNEL, ccVolume, 120,
		0xB0 | CHANNEL, ccBankSelect, 0,
		0xC0 | CHANNEL, 19,
	}
	assert.Equal(want, buf.Bytes())
}

func TestSerialSynthOffThenOnPair(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	s := NewSerialSynth(&buf)

	assert.NoError(s.AllNotesOff())
	assert.NoError(s.NoteOn(60, VELOCITY))
	want := []byte{
		0xB0 | CHANNEL, ccAllNotesOff, 0,
		0x90 | CHANNEL, 60, VELOCITY,
	}
	assert.Equal(want, buf.Bytes())
}
