package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gnsslog/internal/parser"
	"gnsslog/internal/report"
)

type MQTTConfig struct {
	Broker   string
	ClientID string
	// Topic is the prefix; messages go to <Topic>/<id>/epochs and
	// <Topic>/<id>/summary.
	Topic   string
	QoS     byte
	Timeout time.Duration
}

// publisher is the subset of mqtt.Client the sink needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type MQTTSink struct {
	cfg    MQTTConfig
	pub    publisher
	client mqtt.Client
}

// NewMQTT connects to the broker.
func NewMQTT(cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("mqtt: connect %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, err)
	}
	return &MQTTSink{cfg: cfg, pub: client, client: client}, nil
}

// Publish sends every epoch as its own message, then a retained summary.
func (s *MQTTSink) Publish(ctx context.Context, id string, res parser.Result) error {
	epochTopic := fmt.Sprintf("%s/%s/epochs", s.cfg.Topic, id)
	for _, e := range res.Epochs {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("mqtt: marshal epoch: %w", err)
		}
		if err := s.send(epochTopic, false, payload); err != nil {
			return err
		}
	}

	summary := report.Build(res, 0)
	summary.Excerpt = ""
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("mqtt: marshal summary: %w", err)
	}
	return s.send(fmt.Sprintf("%s/%s/summary", s.cfg.Topic, id), true, payload)
}

func (s *MQTTSink) send(topic string, retained bool, payload []byte) error {
	token := s.pub.Publish(topic, s.cfg.QoS, retained, payload)
	if !token.WaitTimeout(s.cfg.Timeout) {
		return fmt.Errorf("mqtt: publish %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", topic, err)
	}
	return nil
}

func (s *MQTTSink) Close() error {
	if s.client != nil {
		s.client.Disconnect(250)
	}
	return nil
}
