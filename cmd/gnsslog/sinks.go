package main

import (
	"gnsslog/internal/config"
	"gnsslog/internal/publish"
)

// buildSinks connects every enabled sink. An empty Multi is valid.
func buildSinks(cfg config.Config) (publish.Multi, error) {
	var sinks publish.Multi
	if cfg.MQTT.Enable {
		s, err := publish.NewMQTT(publish.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
			QoS:      cfg.MQTT.QoS,
			Timeout:  cfg.MQTT.Timeout,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if cfg.Influx.Enable {
		sinks = append(sinks, publish.NewInflux(publish.InfluxConfig{
			URL:         cfg.Influx.URL,
			Token:       cfg.Influx.Token,
			Org:         cfg.Influx.Org,
			Bucket:      cfg.Influx.Bucket,
			Measurement: cfg.Influx.Measurement,
		}))
	}
	if cfg.UDP.Enable {
		s, err := publish.NewUDP(cfg.UDP.Dest)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
