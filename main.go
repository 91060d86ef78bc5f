package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// -------------------- Logger --------------------

// logger is the package-wide structured logger. Safe to use before initLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug, // include file:line in debug mode
	})
	logger = slog.New(h)
	slog.SetDefault(logger) // stdlib log.* now routes through slog
}

// -------------------- Tunables --------------------

// Loop period. One decision per sixteenth note at 120 BPM.
const SIXTEENTH_NOTE_MS = 125

// Sensor contract: the MCU delivers 10-bit conversions.
const SENSOR_MAX = 1023

// Changes smaller than this against the last accepted reading are jitter.
// Larger values mean fewer false triggers but less response to light touches.
const HYSTERESIS_THRESHOLD = 15

// Readings strictly above this are open circuit: no touch on the pad.
const NOISE_FLOOR = 925

// Note range the sensor maps onto, inverted: firm touch = HIGHEST_NOTE.
const LOWEST_NOTE = 48  // C3
const HIGHEST_NOTE = 96 // C7

const CHANNEL = 0
const VELOCITY = 127
const VOLUME = 120
const BANK = 0
const INSTRUMENT_ID = 19 // church organ, sustains between ticks

// -------------------- Main --------------------

func main() {
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	sensorDev := flag.String("serial", "/dev/ttyACM0", "sensor serial port device")
	sensorBaud := flag.Int("baud", 115200, "sensor serial baud rate")
	midiDev := flag.String("midi-serial", "", "synth module serial port device (raw MIDI bytes)")
	midiBaud := flag.Int("midi-baud", 31250, "synth serial baud rate")
	midiPort := flag.String("midi-port", "", "MIDI output port name pattern (rtmidi; used when -midi-serial is empty)")
	sim := flag.Bool("sim", false, "use the synthetic sensor instead of the serial port")
	simSeed := flag.Int64("sim-seed", 1, "seed for the synthetic sensor")
	telemetryBroker := flag.String("telemetry-broker", "", "MQTT broker (host:port) for the reading/note trace")
	flag.Parse()

	initLogger(*debug)
	logger.Info("lou-arp starting",
		"serial", *sensorDev,
		"baud", *sensorBaud,
		"sim", *sim,
		"debug", *debug,
		"period_ms", SIXTEENTH_NOTE_MS,
		"hysteresis", HYSTERESIS_THRESHOLD,
		"noise_floor", NOISE_FLOOR,
		"note_range", fmt.Sprintf("%d-%d", LOWEST_NOTE, HIGHEST_NOTE),
	)

	sampler, err := openSampler(*sim, *simSeed, *sensorDev, *sensorBaud)
	if err != nil {
		logger.Error("sensor init failed", "err", err)
		os.Exit(1)
	}
	defer sampler.Close()

	synth, err := openSynth(*midiDev, *midiBaud, *midiPort)
	if err != nil {
		logger.Error("synth init failed", "err", err)
		os.Exit(1)
	}
	defer synth.Close()

	if err := synth.Setup(VOLUME, BANK, INSTRUMENT_ID); err != nil {
		logger.Error("synth setup failed", "err", err)
		os.Exit(1)
	}

	var tel *Telemetry
	if *telemetryBroker != "" {
		tel, err = NewTelemetry(*telemetryBroker)
		if err != nil {
			logger.Error("telemetry init failed", "err", err)
			os.Exit(1)
		}
		defer tel.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("running")
	NewBridge(sampler, synth, tel).Run(ctx)
}

func openSampler(sim bool, seed int64, dev string, baud int) (Sampler, error) {
	if sim {
		logger.Info("sensor: using simulator", "seed", seed)
		return NewSimSampler(seed), nil
	}
	return OpenSerialSampler(dev, baud)
}

func openSynth(serialDev string, baud int, portPattern string) (Synth, error) {
	if serialDev != "" {
		return OpenSerialSynth(serialDev, baud)
	}
	return OpenDriverSynth(portPattern)
}
