package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lsst-ts/ts-Dome/errors"
	"github.com/lsst-ts/ts-Dome/schema"
)

// Load reads a configuration document from disk. YAML is a superset of
// JSON, so both file formats are accepted.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapFatal(
				fmt.Errorf("%w: %s", errors.ErrMissingConfig, path),
				"Config", "Load", "read config file")
		}
		return nil, errors.WrapFatal(err, "Config", "Load", "read config file")
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"Config", "Load", "parse config file")
	}
	return raw, nil
}

// LoadAndDecode loads a configuration file and validates it against the
// connection schema in one step.
func LoadAndDecode(reg *schema.Registry, path string) (*ConnConfig, error) {
	raw, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Decode(reg, raw)
}
