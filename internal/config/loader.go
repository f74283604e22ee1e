package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFlappy loads the simulator configuration.
// Search order: customPath -> ~/.flapsim/configs/flappy.yaml -> ./configs/flappy.yaml -> embedded default.
// Files are overlaid on the defaults, so a file only needs the keys it changes.
func LoadFlappy(customPath string) (FlappyConfig, error) {
	cfg := DefaultFlappyConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("flappy.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if parsed, ok := overlay(data); ok {
				return parsed, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "flappy.yaml")); err == nil {
		if parsed, ok := overlay(data); ok {
			return parsed, nil
		}
	}

	// Use embedded default YAML
	if parsed, ok := overlay(defaultFlappyYAML); ok {
		return parsed, nil
	}
	return DefaultFlappyConfig(), nil // Fallback to hardcoded if embed fails
}

// overlay parses data on top of the defaults. Files that fail to parse or
// validate are skipped so the next location in the search order is tried.
func overlay(data []byte) (FlappyConfig, bool) {
	cfg := DefaultFlappyConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	if err := cfg.Validate(); err != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flapsim", "configs", filename)
}

// paramsFile is the mapping form of a parameter file.
type paramsFile struct {
	Params []float64 `yaml:"params"`
}

// LoadParams reads a policy parameter vector from a YAML file. Both a bare
// sequence ("[0.4, -1.2, 0.7, 0.1]") and a mapping with a "params" key are
// accepted. The length is not checked here; see policy.NewParams.
func LoadParams(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params %s: %w", path, err)
	}
	return ParseParams(data)
}

// ParseParams decodes a parameter vector in either accepted YAML form.
func ParseParams(data []byte) ([]float64, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("%w: params document is empty", ErrInvalid)
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var values []float64
		if err := root.Decode(&values); err != nil {
			return nil, fmt.Errorf("failed to decode params: %w", err)
		}
		return values, nil
	case yaml.MappingNode:
		var pf paramsFile
		if err := root.Decode(&pf); err != nil {
			return nil, fmt.Errorf("failed to decode params: %w", err)
		}
		if pf.Params == nil {
			return nil, fmt.Errorf("%w: params mapping has no \"params\" key", ErrInvalid)
		}
		return pf.Params, nil
	default:
		return nil, fmt.Errorf("%w: params must be a sequence or mapping", ErrInvalid)
	}
}
