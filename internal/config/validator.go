package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs comprehensive validation of the configuration.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return fmt.Errorf("api config error: %v", err)
	}

	if err := c.validateStore(); err != nil {
		return fmt.Errorf("store config error: %v", err)
	}

	if err := c.validateClassifier(); err != nil {
		return fmt.Errorf("classifier config error: %v", err)
	}

	if err := c.validateKafka(); err != nil {
		return fmt.Errorf("kafka config error: %v", err)
	}

	if err := c.validateEngine(); err != nil {
		return fmt.Errorf("engine config error: %v", err)
	}

	if c.AveragesPath == "" {
		return fmt.Errorf("averages_path is required")
	}

	return nil
}

func (c *Config) validateAPI() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.API.EnableCORS && len(c.API.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed_origins is required when CORS is enabled")
	}

	if c.API.MaxRequestSize <= 0 {
		return fmt.Errorf("max_request_size must be greater than 0")
	}

	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case "memory":
		return nil
	case "neo4j":
	default:
		return fmt.Errorf("invalid driver: %s (must be neo4j or memory)", c.Store.Driver)
	}

	if c.Store.URI == "" {
		return fmt.Errorf("uri is required")
	}
	if _, err := url.Parse(c.Store.URI); err != nil {
		return fmt.Errorf("invalid uri format: %v", err)
	}

	if c.Store.Username == "" {
		return fmt.Errorf("username is required")
	}

	if c.Store.MaxPoolSize <= 0 {
		return fmt.Errorf("max_pool_size must be greater than 0")
	}

	return nil
}

func (c *Config) validateClassifier() error {
	if c.Classifier.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	parsed, err := url.Parse(c.Classifier.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url format: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https")
	}

	return nil
}

func (c *Config) validateKafka() error {
	// No brokers means local-only event delivery, which is valid.
	for _, broker := range c.Kafka.Brokers {
		if !strings.Contains(broker, ":") {
			return fmt.Errorf("invalid broker format: %s (expected host:port)", broker)
		}
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.ClientID == "" {
		return fmt.Errorf("client_id is required when brokers are configured")
	}

	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.TopN <= 0 {
		return fmt.Errorf("top_n must be greater than 0")
	}

	if c.Engine.SimulationPageSize <= 0 {
		return fmt.Errorf("simulation_page_size must be greater than 0")
	}

	if c.Simulator.Workers <= 0 {
		return fmt.Errorf("simulator workers must be greater than 0")
	}

	return nil
}
