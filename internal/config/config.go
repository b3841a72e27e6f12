package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/telvora/telvora/internal/api"
	"github.com/telvora/telvora/internal/cache"
	"github.com/telvora/telvora/internal/classifier"
	"github.com/telvora/telvora/internal/engine"
	"github.com/telvora/telvora/internal/events"
	"github.com/telvora/telvora/internal/insights"
	"github.com/telvora/telvora/internal/simulator"
	"github.com/telvora/telvora/internal/store"
)

// Config represents the overall application configuration.
type Config struct {
	API        api.GatewayConfig  `yaml:"api"`
	Store      store.Config       `yaml:"store"`
	Cache      cache.Config       `yaml:"cache"`
	Classifier classifier.Config  `yaml:"classifier"`
	Insights   insights.Config    `yaml:"insights"`
	Engine     engine.Config      `yaml:"engine"`
	Simulator  simulator.Config   `yaml:"simulator"`
	Kafka      events.KafkaConfig `yaml:"kafka"`

	// AveragesPath points at the global usage averages JSON file.
	AveragesPath string `yaml:"averages_path"`
}

// Default returns the configuration used when a section is omitted
// from the config file.
func Default() *Config {
	return &Config{
		API:          api.DefaultGatewayConfig(),
		Store:        store.DefaultConfig(),
		Cache:        cache.DefaultConfig(),
		Classifier:   classifier.DefaultConfig(),
		Insights:     insights.DefaultConfig(),
		Engine:       engine.DefaultConfig(),
		Simulator:    simulator.DefaultConfig(),
		Kafka:        events.DefaultKafkaConfig(),
		AveragesPath: "config/global_averages.json",
	}
}

// Load loads configuration from file. The path defaults to
// config/config.yaml and can be overridden with CONFIG_PATH; secrets
// come from the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Insights.APIKey = key
	}
	if password := os.Getenv("NEO4J_PASSWORD"); password != "" {
		cfg.Store.Password = password
	}

	return cfg, nil
}
