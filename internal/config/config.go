// Where: internal/config/config.go
// What: CLI configuration loading.
// Why: One config file drives synth, deploy, and the dispatch commands.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/amberflo/sbt-aws-amberflo/internal/adapter"
	"github.com/amberflo/sbt-aws-amberflo/internal/constants"
	"github.com/amberflo/sbt-aws-amberflo/internal/generator"
)

// DefaultPath is the config file looked up when no flag or env override
// names one.
const DefaultPath = "sbt-amberflo.yml"

// Config drives the CLI. Adapter carries the construct's own
// configuration surface; the rest parameterizes deployment.
type Config struct {
	StackName      string         `yaml:"stackName"`
	Region         string         `yaml:"region,omitempty"`
	ArtifactBucket string         `yaml:"artifactBucket,omitempty"`
	EventBusName   string         `yaml:"eventBusName,omitempty"`
	CodePackage    string         `yaml:"codePackage,omitempty"`
	Adapter        adapter.Config `yaml:"adapter"`
}

// ResolvePath returns the explicit path, the env override, or the default,
// in that order.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(constants.EnvConfigPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads, schema-validates, and decodes a config file, then applies
// environment overrides.
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(content)
}

// Parse validates and decodes a config document.
func Parse(content []byte) (Config, error) {
	if _, err := generator.ValidateConfig(content); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if value := os.Getenv(constants.EnvStackName); value != "" {
		cfg.StackName = value
	}
	if value := os.Getenv(constants.EnvArtifactBucket); value != "" {
		cfg.ArtifactBucket = value
	}
	if value := os.Getenv(constants.EnvEventBusName); value != "" {
		cfg.EventBusName = value
	}
	if value := os.Getenv(constants.EnvAWSRegion); value != "" && cfg.Region == "" {
		cfg.Region = value
	}
}
