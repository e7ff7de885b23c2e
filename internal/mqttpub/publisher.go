// Package mqttpub publishes dispatched input events to an MQTT broker for
// home-automation integration. Entirely optional: with no broker
// configured the daemon never touches this package.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config is the broker connection configuration.
type Config struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

// Event is the published payload.
type Event struct {
	Identity string    `json:"identity"`
	Action   string    `json:"action"`
	At       time.Time `json:"at"`
}

// Publisher is a connected MQTT event publisher.
type Publisher struct {
	client mqtt.Client
	topic  string
	log    zerolog.Logger
}

// Connect dials the broker. Connection failure is returned to the caller;
// the daemon treats it as "run without MQTT".
func Connect(cfg Config, logger zerolog.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("crowdeckd-" + uuid.NewString()[:8]).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqttpub: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqttpub: connect to %s: %w", cfg.Broker, err)
	}
	return &Publisher{client: client, topic: cfg.Topic, log: logger}, nil
}

// Publish sends one event, fire-and-forget at QoS 0.
func (p *Publisher) Publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn().Err(err).Msg("event marshal failed")
		return
	}
	p.client.Publish(p.topic, 0, false, payload)
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
