package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Parser  ParserConfig  `yaml:"parser"`
	Report  ReportConfig  `yaml:"report"`
	Web     WebConfig     `yaml:"web"`
	Metrics MetricsConfig `yaml:"metrics"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Influx  InfluxConfig  `yaml:"influx"`
	UDP     UDPConfig     `yaml:"udp"`
}

type ParserConfig struct {
	ExcerptLimit  int `yaml:"excerpt_limit"`
	NMEALookahead int `yaml:"nmea_lookahead"`
}

type ReportConfig struct {
	// ExcerptChars bounds the recovered text attached to a report.
	ExcerptChars int `yaml:"excerpt_chars"`
}

type WebConfig struct {
	Listen         string `yaml:"listen"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	Workers        int    `yaml:"workers"`
	ResultsKept    int    `yaml:"results_kept"`
	LogLines       int    `yaml:"log_lines"`
}

type MetricsConfig struct {
	Enable bool `yaml:"enable"`
}

type MQTTConfig struct {
	Enable   bool          `yaml:"enable"`
	Broker   string        `yaml:"broker"`
	ClientID string        `yaml:"client_id"`
	Topic    string        `yaml:"topic"`
	QoS      byte          `yaml:"qos"`
	Timeout  time.Duration `yaml:"timeout"`
}

type InfluxConfig struct {
	Enable      bool   `yaml:"enable"`
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// UDPConfig forwards every epoch as a JSON datagram.
type UDPConfig struct {
	Enable bool   `yaml:"enable"`
	Dest   string `yaml:"dest"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.Metrics.Enable = true
	// Nothing is enabled that could fail validation.
	_ = cfg.applyDefaults()
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Metrics: MetricsConfig{Enable: true}}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Parser.ExcerptLimit < 0 {
		return fmt.Errorf("parser.excerpt_limit must be >= 0")
	}
	if cfg.Parser.ExcerptLimit == 0 {
		cfg.Parser.ExcerptLimit = 50000
	}
	if cfg.Parser.NMEALookahead < 0 {
		return fmt.Errorf("parser.nmea_lookahead must be >= 0")
	}
	if cfg.Parser.NMEALookahead == 0 {
		cfg.Parser.NMEALookahead = 500
	}
	if cfg.Report.ExcerptChars <= 0 {
		cfg.Report.ExcerptChars = 4000
	}

	if strings.TrimSpace(cfg.Web.Listen) == "" {
		cfg.Web.Listen = ":8080"
	}
	if cfg.Web.MaxUploadBytes <= 0 {
		cfg.Web.MaxUploadBytes = 256 << 20
	}
	if cfg.Web.Workers <= 0 {
		cfg.Web.Workers = 4
	}
	if cfg.Web.ResultsKept <= 0 {
		cfg.Web.ResultsKept = 32
	}
	if cfg.Web.LogLines <= 0 {
		cfg.Web.LogLines = 2000
	}

	if cfg.MQTT.Enable {
		if strings.TrimSpace(cfg.MQTT.Broker) == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
		}
		if cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "gnsslog"
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "gnsslog"
	}
	cfg.MQTT.Topic = strings.TrimRight(cfg.MQTT.Topic, "/")
	if cfg.MQTT.Timeout <= 0 {
		cfg.MQTT.Timeout = 5 * time.Second
	}

	if cfg.Influx.Enable {
		if strings.TrimSpace(cfg.Influx.URL) == "" {
			return fmt.Errorf("influx.url is required when influx.enable is true")
		}
		if cfg.Influx.Org == "" || cfg.Influx.Bucket == "" {
			return fmt.Errorf("influx.org and influx.bucket are required when influx.enable is true")
		}
	}
	if cfg.Influx.Measurement == "" {
		cfg.Influx.Measurement = "gnss_epoch"
	}

	if cfg.UDP.Enable && strings.TrimSpace(cfg.UDP.Dest) == "" {
		return fmt.Errorf("udp.dest is required when udp.enable is true")
	}
	return nil
}
