// Package config loads identification run configuration.
package config

import (
	"fmt"
	"os"

	"github.com/milosgajdos/go-identify/logging"
	"github.com/milosgajdos/go-identify/model"
	"gopkg.in/yaml.v3"
)

const (
	// MethodEKF selects extended Kalman filter
	MethodEKF = "ekf"
	// MethodRMLM selects recursive maximum likelihood method
	MethodRMLM = "rmlm"
)

// Config is identification run configuration
type Config struct {
	// Model is model family name
	Model string `yaml:"model"`
	// Observations is number of generated observations
	Observations int `yaml:"observations"`
	// DataFile is observation file path
	DataFile string `yaml:"data_file"`
	// Generate generates new observations into DataFile before identification
	Generate bool `yaml:"generate"`
	// Noise adds measurement noise to generated observations
	Noise bool `yaml:"noise"`
	// Seed seeds measurement noise; zero seeds from clock
	Seed uint64 `yaml:"seed"`
	// Theta0 is initial parameter guess
	Theta0 []float64 `yaml:"theta0"`
	// ThetaTrue overrides the true parameters of the model family
	ThetaTrue []float64 `yaml:"theta_true,omitempty"`
	// Methods lists estimation methods to run
	Methods []string `yaml:"methods"`
	// Results is results file path; empty writes to stdout
	Results string `yaml:"results"`
	// TrajectoryPrefix enables CSV export of parameter trajectories to <prefix>_<method>.csv
	TrajectoryPrefix string `yaml:"trajectory_prefix"`
	// PlotPrefix enables parameter plots saved to <prefix>_<method>_theta<i>.png
	PlotPrefix string `yaml:"plot_prefix"`
	// Log configures logging
	Log logging.Config `yaml:"log"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Model:        "position",
		Observations: 50,
		DataFile:     "position_control_system50",
		Generate:     true,
		Noise:        true,
		Theta0:       []float64{3, 0.5},
		Methods:      []string{MethodEKF, MethodRMLM},
		Log: logging.Config{
			Level: "INFO",
		},
	}
}

// Load reads configuration from YAML file at path on top of the default configuration.
// It returns error if the file can not be read or the resulting configuration is invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	f, err := model.Lookup(c.Model)
	if err != nil {
		return err
	}

	_, _, _, s := f.Model.Dims()

	if c.DataFile == "" {
		return fmt.Errorf("data file must be set")
	}

	if c.Generate && c.Observations <= 0 {
		return fmt.Errorf("invalid number of observations: %d", c.Observations)
	}

	if len(c.Theta0) != s {
		return fmt.Errorf("theta0 has %d parameters, model %s has %d", len(c.Theta0), c.Model, s)
	}

	if c.ThetaTrue != nil && len(c.ThetaTrue) != s {
		return fmt.Errorf("theta_true has %d parameters, model %s has %d", len(c.ThetaTrue), c.Model, s)
	}

	if len(c.Methods) == 0 {
		return fmt.Errorf("no estimation method selected")
	}

	for _, m := range c.Methods {
		if m != MethodEKF && m != MethodRMLM {
			return fmt.Errorf("unknown method: %q", m)
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// Write writes configuration as YAML to path
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
