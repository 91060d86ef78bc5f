package main

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	topicReadings = "louarp/readings"
	topicNotes    = "louarp/notes"
)

// ReadingEvent is published whenever the arbiter accepts a reading.
type ReadingEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Value     int       `json:"value"`
}

// NoteEvent is published whenever a note is sounded.
type NoteEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Note      uint8     `json:"note"`
	Velocity  uint8     `json:"velocity"`
}

// Telemetry publishes the accepted-value and play-decision trace to an MQTT
// broker. Advisory only: publish failures are logged and never reach the
// loop. A nil *Telemetry is valid and no-ops, so the bridge can hold one
// unconditionally.
type Telemetry struct {
	client mqtt.Client
}

// NewTelemetry connects to the broker at host:port.
func NewTelemetry(broker string) (*Telemetry, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", broker))
	opts.SetClientID("lou-arp")
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("telemetry: connected", "broker", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("telemetry: connection lost", "broker", broker, "err", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect %q: %w", broker, token.Error())
	}
	return &Telemetry{client: client}, nil
}

func (t *Telemetry) PublishReading(value int) {
	if t == nil {
		return
	}
	t.publish(topicReadings, ReadingEvent{Timestamp: time.Now(), Value: value})
}

func (t *Telemetry) PublishNote(cmd PlayCommand) {
	if t == nil {
		return
	}
	t.publish(topicNotes, NoteEvent{Timestamp: time.Now(), Note: cmd.Note, Velocity: cmd.Velocity})
}

func (t *Telemetry) publish(topic string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("telemetry: marshal failed", "topic", topic, "err", err)
		return
	}
	token := t.client.Publish(topic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			logger.Warn("telemetry: publish failed", "topic", topic, "err", token.Error())
		}
	}()
}

func (t *Telemetry) Close() {
	if t == nil {
		return
	}
	t.client.Disconnect(250)
}
