package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TagConfig describes static tags attached to every submitted report,
// typically CI metadata such as the job name or builder.
type TagConfig struct {
	Tags map[string]string `yaml:"tags"`
}

// LoadTagConfig reads a tag configuration file. An empty path yields
// an empty config rather than an error, since tags are optional.
func LoadTagConfig(path string) (*TagConfig, error) {
	if path == "" {
		return &TagConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag config %s: %w", path, err)
	}

	var cfg TagConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tag config %s: %w", path, err)
	}

	return &cfg, nil
}
