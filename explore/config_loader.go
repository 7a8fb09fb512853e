package explore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the service configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if len(config.Robots) == 0 {
		return fmt.Errorf("at least one robot must be defined")
	}

	for i, rc := range config.Robots {
		if rc.ID == "" {
			return fmt.Errorf("robots[%d].id is required", i)
		}
		if rc.MapTopic == "" {
			return fmt.Errorf("robots[%d].mapTopic is required for %s", i, rc.ID)
		}
	}

	if config.Exploration.MinFrontierSize < 0 {
		return fmt.Errorf("exploration.minFrontierSize must be >= 0")
	}
	if len(config.Exploration.Strategies) == 0 {
		return fmt.Errorf("exploration.strategies must name at least one strategy")
	}
	for i, sc := range config.Exploration.Strategies {
		if sc.Name == "" {
			return fmt.Errorf("exploration.strategies[%d].name is required", i)
		}
	}

	return nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
