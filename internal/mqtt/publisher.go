// Package mqtt is the subscriber-bus shell around the engine: it routes the
// derived signals to retained MQTT topics and advertises them to Home
// Assistant via discovery messages. The engine itself never imports this
// package; anything implementing the same publish surface could replace it.
package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/config"
)

// connectTimeout bounds the initial broker handshake.
const connectTimeout = 10 * time.Second

// Publisher publishes chamber signals to an MQTT broker. All signal topics
// are retained so late subscribers see current state immediately.
type Publisher struct {
	client paho.Client
	logger *slog.Logger
	base   string
	haBase string
	id     string
	qos    byte
}

// New builds a publisher from broker settings. The client id gets a short
// random suffix so a restarted daemon does not fight its own half-closed
// session for the id.
func New(cfg config.MQTT, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		logger: logger.With("component", "mqtt"),
		base:   cfg.Base,
		haBase: cfg.HABase,
		id:     cfg.ClientID,
		qos:    byte(cfg.QoS),
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID + "-" + uuid.NewString()[:8]).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetWill(p.topic("running"), "false", p.qos, true).
		SetOnConnectHandler(func(paho.Client) {
			p.logger.Info("connected to broker", "host", cfg.Host, "port", cfg.Port)
			p.publish(p.topic("running"), "true")
			p.discovery()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.logger.Warn("broker connection lost", "error", err)
		})

	p.client = paho.NewClient(opts)
	return p
}

// Connect dials the broker. Reconnection after that is automatic.
func (p *Publisher) Connect() error {
	tok := p.client.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connecting to broker: timed out after %s", connectTimeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	return nil
}

// Close announces the daemon offline and disconnects cleanly. The will
// covers the unclean case.
func (p *Publisher) Close() {
	p.publish(p.topic("running"), "false")
	p.client.Disconnect(250)
}

// PublishSignals writes one chamber's derived signals and its next scheduled
// refresh. Instants render as ISO-8601 with offset; absent instants publish
// as "None", which Home Assistant's timestamp sensors read as unknown.
func (p *Publisher) PublishSignals(name string, sig chamber.Signals, nextUpdate time.Time) {
	p.publish(p.topic(name+"/convened"), sig.Convened.String())
	p.publish(p.topic(name+"/convened_at"), instant(sig.ConvenedAt))
	p.publish(p.topic(name+"/adjourned_at"), instant(sig.AdjournedAt))
	p.publish(p.topic(name+"/convenes_at"), instant(sig.ConvenesAt))
	p.publish(p.topic(name+"/next_update"), instant(nextUpdate))
}

func instant(t time.Time) string {
	if t.IsZero() {
		return "None"
	}
	return t.Format(time.RFC3339)
}

func (p *Publisher) topic(suffix string) string {
	return p.base + "/" + suffix
}

func (p *Publisher) publish(topic, payload string) {
	tok := p.client.Publish(topic, p.qos, true, payload)
	go func() {
		tok.Wait()
		if err := tok.Error(); err != nil {
			p.logger.Warn("publish failed", "topic", topic, "error", err)
		}
	}()
}

func (p *Publisher) publishJSON(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("marshaling discovery payload", "topic", topic, "error", err)
		return
	}
	p.publish(topic, string(data))
}

// discovery publishes Home Assistant discovery configs: one running
// binary_sensor for the daemon, and per chamber a convened binary_sensor
// plus timestamp sensors for the three instants.
func (p *Publisher) discovery() {
	device := map[string]any{
		"name":         "Chambers",
		"identifiers":  []string{p.id},
		"manufacturer": "chrisgilldc",
		"model":        "chambers",
	}
	availability := map[string]any{
		"topic":                 p.topic("running"),
		"payload_available":     "true",
		"payload_not_available": "false",
	}

	p.publishJSON(fmt.Sprintf("%s/binary_sensor/%s/running/config", p.haBase, p.id), map[string]any{
		"name":         "Running",
		"object_id":    "chambers_running",
		"unique_id":    p.id + "_running",
		"device":       device,
		"device_class": "running",
		"state_topic":  p.topic("running"),
		"icon":         "mdi:play",
		"payload_on":   "true",
		"payload_off":  "false",
	})

	for _, name := range []string{"house", "senate"} {
		title := map[string]string{"house": "House", "senate": "Senate"}[name]

		p.publishJSON(fmt.Sprintf("%s/binary_sensor/%s/%s_convened/config", p.haBase, p.id, name), map[string]any{
			"name":         title + " Convened",
			"object_id":    fmt.Sprintf("chambers_%s_convened", name),
			"unique_id":    fmt.Sprintf("%s_%s_convened", p.id, name),
			"device":       device,
			"state_topic":  p.topic(name + "/convened"),
			"payload_on":   "true",
			"payload_off":  "false",
			"availability": availability,
		})

		for _, signal := range []string{"convened_at", "adjourned_at", "convenes_at"} {
			p.publishJSON(fmt.Sprintf("%s/sensor/%s/%s_%s/config", p.haBase, p.id, name, signal), map[string]any{
				"name":         fmt.Sprintf("%s %s", title, signalTitle(signal)),
				"object_id":    fmt.Sprintf("%s_%s", name, signal),
				"unique_id":    fmt.Sprintf("%s_%s_%s", p.id, name, signal),
				"device":       device,
				"state_topic":  p.topic(name + "/" + signal),
				"device_class": "timestamp",
				"availability": availability,
			})
		}
	}
}

func signalTitle(signal string) string {
	switch signal {
	case "convened_at":
		return "Convened At"
	case "adjourned_at":
		return "Adjourned At"
	case "convenes_at":
		return "Convenes At"
	}
	return signal
}
