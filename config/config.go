package config

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nikolaydubina/fpdecimal"
	"gopkg.in/yaml.v3"

	"github.com/draakit/limitbook/pkg/db/queue"
)

// Config represents the application configuration
type Config struct {
	Engine struct {
		Symbol   string `yaml:"symbol"`
		TickSize string `yaml:"tick_size"`
	} `yaml:"engine"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Kafka struct {
		Enabled    bool   `yaml:"enabled"`
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
	} `yaml:"kafka"`

	Otel struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"otel"`
}

// Default configuration values
var (
	configFile = flag.String("config", "", "Path to config file (YAML)")
	logLevel   = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat  = flag.String("log_format", "pretty", "Log format: json, pretty")
)

// LoadConfig loads the configuration from command line flags and optionally from a config file
func LoadConfig() (*Config, error) {
	flag.Parse()

	config := &Config{}
	config.Engine.Symbol = "BTC-USDT"
	config.Engine.TickSize = "0.001"
	config.Log.Level = *logLevel
	config.Log.Format = *logFormat
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.Topic = "limitbook-executions"
	config.Otel.Endpoint = "localhost:4317"

	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		log.Printf("Loaded configuration from %s", *configFile)
	}

	// Push Kafka settings into the queue package.
	queue.SetBrokerList(config.Kafka.BrokerAddr)
	queue.SetTopic(config.Kafka.Topic)

	return config, nil
}

// TickSize parses the configured tick size as a decimal
func (c *Config) TickSize() (fpdecimal.Decimal, error) {
	tick, err := fpdecimal.FromString(c.Engine.TickSize)
	if err != nil {
		return fpdecimal.Zero, fmt.Errorf("invalid tick size %q: %w", c.Engine.TickSize, err)
	}
	return tick, nil
}
