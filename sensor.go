package main

import (
	"fmt"
	"math/rand"

	"go.bug.st/serial"
)

// Sampler supplies one raw sensor reading in [0, SENSOR_MAX] per loop tick.
// No filtering, no state the loop can observe; the arbiter owns all of that.
type Sampler interface {
	Sample() (int, error)
	Close() error
}

// -------------------- SerialSampler --------------------

// SerialSampler reads framed ADC conversions from the sensor MCU over a
// serial port.
type SerialSampler struct {
	port   serial.Port
	frames *FrameReader
}

// OpenSerialSampler opens the named serial device at the given baud rate.
func OpenSerialSampler(name string, baud int) (*SerialSampler, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("sensor: open %q: %w", name, err)
	}
	logger.Info("sensor: port opened", "device", name, "baud", baud)
	return &SerialSampler{port: p, frames: NewFrameReader(p)}, nil
}

// Sample blocks until the next valid reading frame arrives.
func (s *SerialSampler) Sample() (int, error) {
	v, err := s.frames.Next()
	if err != nil {
		return 0, fmt.Errorf("sensor: read frame: %w", err)
	}
	return v, nil
}

func (s *SerialSampler) Close() error {
	logger.Info("sensor: closing port")
	return s.port.Close()
}

// -------------------- SimSampler --------------------

// SimSampler is a synthetic touch sensor for hardware-free runs. It
// alternates open-circuit stretches with touch episodes; within an episode
// the value drifts toward a random pressure target with per-sample noise,
// which exercises both arbiter gates the way a real finger does.
type SimSampler struct {
	rng       *rand.Rand
	touching  bool
	remaining int // ticks left in the current episode
	value     int
	target    int
}

func NewSimSampler(seed int64) *SimSampler {
	return &SimSampler{
		rng:   rand.New(rand.NewSource(seed)),
		value: SENSOR_MAX,
	}
}

func (s *SimSampler) Sample() (int, error) {
	if s.remaining == 0 {
		s.touching = !s.touching
		if s.touching {
			s.remaining = 8 + s.rng.Intn(24)
			s.target = 100 + s.rng.Intn(NOISE_FLOOR-150)
			logger.Debug("sim: touch episode", "ticks", s.remaining, "target", s.target)
		} else {
			s.remaining = 4 + s.rng.Intn(16)
			s.target = NOISE_FLOOR + 1 + s.rng.Intn(SENSOR_MAX-NOISE_FLOOR)
			logger.Debug("sim: open circuit", "ticks", s.remaining)
		}
	}
	s.remaining--

	// drift a third of the way toward the target, then add jitter
	s.value += (s.target - s.value) / 3
	s.value += s.rng.Intn(13) - 6
	if s.value < 0 {
		s.value = 0
	}
	if s.value > SENSOR_MAX {
		s.value = SENSOR_MAX
	}
	return s.value, nil
}

func (s *SimSampler) Close() error { return nil }
