package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// FileConfig is the optional YAML configuration file. Every field is
// optional; flags and environment variables take precedence.
type FileConfig struct {
	Provider string            `yaml:"provider"`
	Domain   string            `yaml:"domain"`
	Password string            `yaml:"password"`
	Host     any               `yaml:"host"` // string or list
	IP       string            `yaml:"ip"`
	APIHost  string            `yaml:"api_host"`
	Interval any               `yaml:"interval"` // seconds
	Settings map[string]string `yaml:"settings"`
}

// LoadFile reads the configuration file at path.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand ${ENV_VAR} references in string values.
	cfg.Provider = os.ExpandEnv(cfg.Provider)
	cfg.Domain = os.ExpandEnv(cfg.Domain)
	cfg.Password = os.ExpandEnv(cfg.Password)
	cfg.IP = os.ExpandEnv(cfg.IP)
	cfg.APIHost = os.ExpandEnv(cfg.APIHost)
	cfg.Host = expandAny(cfg.Host)
	cfg.Interval = expandAny(cfg.Interval)
	for k, v := range cfg.Settings {
		cfg.Settings[k] = os.ExpandEnv(v)
	}

	return &cfg, nil
}

// expandAny expands strings, and strings inside lists; other values are
// returned unchanged.
func expandAny(v any) any {
	switch t := v.(type) {
	case string:
		return os.ExpandEnv(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = expandAny(e)
		}
		return out
	default:
		return v
	}
}
