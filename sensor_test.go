package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimSamplerStaysInSensorRange(t *testing.T) {
	assert := assert.New(t)
	s := NewSimSampler(1)

	for i := 0; i < 2000; i++ {
		v, err := s.Sample()
		assert.NoError(err)
		assert.GreaterOrEqual(v, 0)
		assert.LessOrEqual(v, SENSOR_MAX)
	}
}

func TestSimSamplerDeterministicPerSeed(t *testing.T) {
	assert := assert.New(t)
	a, b := NewSimSampler(7), NewSimSampler(7)

	for i := 0; i < 200; i++ {
		va, _ := a.Sample()
		vb, _ := b.Sample()
		assert.Equal(va, vb, "i=%d", i)
	}
}

func TestSimSamplerProducesTouchesAndOpenCircuit(t *testing.T) {
	assert := assert.New(t)
	s := NewSimSampler(3)

	var touches, open int
	for i := 0; i < 2000; i++ {
		v, _ := s.Sample()
		if v > NOISE_FLOOR {
			open++
		} else {
			touches++
		}
	}
	assert.Positive(touches)
	assert.Positive(open)
}
