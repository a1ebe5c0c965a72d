package tube

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// RobotConfig represents all supported fields in a robot JSON file.
type RobotConfig struct {
	Name  string   `json:"name"`
	Tubes []Config `json:"tubes"`
	// Compliance is "rigid" or "torsionally_compliant"; empty means rigid.
	Compliance     string         `json:"compliance,omitempty"`
	StrictOrdering bool           `json:"strict_ordering,omitempty"`
	Torsion        *TorsionConfig `json:"torsion,omitempty"`
}

// TorsionConfig bounds the torsional compliance solve. Zero values mean the solver defaults.
type TorsionConfig struct {
	MaxIterations int     `json:"max_iterations,omitempty"`
	Tolerance     float64 `json:"tolerance,omitempty"`
}

// UnmarshalRobotConfig parses the given JSON data into a robot config and validates it.
func UnmarshalRobotConfig(jsonData []byte) (*RobotConfig, error) {
	if len(jsonData) == 0 {
		return nil, ErrNoRobotInformation
	}

	cfg := &RobotConfig{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseRobotConfigFile reads and parses a robot config from a JSON file.
func ParseRobotConfigFile(filename string) (*RobotConfig, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	cfg, err := UnmarshalRobotConfig(jsonData)
	if err != nil {
		return nil, errors.Wrapf(err, "robot config %q", filename)
	}
	return cfg, nil
}

// Validate checks the config without building any tubes.
func (cfg *RobotConfig) Validate() error {
	if len(cfg.Tubes) == 0 {
		return errors.Wrap(ErrInvalidConfiguration, "robot config must list at least one tube")
	}
	var errs []error
	for i, tc := range cfg.Tubes {
		if err := tc.Validate(); err != nil {
			errs = append(errs, errors.Wrapf(err, "tube %d", i))
		}
	}
	if cfg.Torsion != nil {
		if cfg.Torsion.MaxIterations < 0 {
			errs = append(errs, errors.Wrapf(ErrInvalidConfiguration,
				"torsion max_iterations %d must be non-negative", cfg.Torsion.MaxIterations))
		}
		if cfg.Torsion.Tolerance < 0 {
			errs = append(errs, errors.Wrapf(ErrInvalidConfiguration,
				"torsion tolerance %v must be non-negative", cfg.Torsion.Tolerance))
		}
	}
	return multierr.Combine(errs...)
}

// ParseTubes builds the configured tubes in order, naming unnamed tubes by index.
func (cfg *RobotConfig) ParseTubes() ([]*Tube, error) {
	tubes := make([]*Tube, 0, len(cfg.Tubes))
	for i, tc := range cfg.Tubes {
		if tc.Name == "" {
			tc.Name = fmt.Sprintf("tube%d", i)
		}
		t, err := New(tc)
		if err != nil {
			return nil, err
		}
		tubes = append(tubes, t)
	}
	if cfg.StrictOrdering {
		if err := ValidateOrdering(tubes); err != nil {
			return nil, err
		}
	}
	return tubes, nil
}
