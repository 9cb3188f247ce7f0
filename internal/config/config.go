// Package config holds the run configuration, merged from an optional YAML
// file and command-line flags (flags win).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/jaevans/harvester-auto-backup/internal/retention"
)

// Config is the full configuration surface of one run.
type Config struct {
	// Label is the key a VirtualMachine must carry with value "true" to be
	// selected. Required.
	Label string `yaml:"label"`

	// Namespace restricts discovery to one namespace. Empty means all
	// namespaces.
	Namespace string `yaml:"namespace"`

	// Verbose enables per-decision trace logging.
	Verbose bool `yaml:"verbose"`

	// DryRun computes and logs the plan without creating or deleting anything.
	DryRun bool `yaml:"dryRun"`

	WeeklyBoundaryOffset  retention.Period `yaml:"weeklyBoundaryOffset"`
	MonthlyBoundaryOffset retention.Period `yaml:"monthlyBoundaryOffset"`
	DeleteBoundaryOffset  retention.Period `yaml:"deleteBoundaryOffset"`

	// MetricsBindAddress, when set, serves prometheus counters for the
	// duration of the run (e.g. ":8080").
	MetricsBindAddress string `yaml:"metricsBindAddress"`

	// Kubeconfig is the path to a kubeconfig file. Empty falls back to the
	// usual in-cluster / environment resolution.
	Kubeconfig string `yaml:"kubeconfig"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		WeeklyBoundaryOffset:  retention.Period{Weeks: 2},
		MonthlyBoundaryOffset: retention.Period{Months: 2},
		DeleteBoundaryOffset:  retention.Period{Years: 1},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that must abort the run before any cluster
// call is made.
func (c Config) Validate(now time.Time) error {
	if c.Label == "" {
		return errors.New("label is required")
	}
	t := retention.NewThresholds(now, c.WeeklyBoundaryOffset, c.MonthlyBoundaryOffset, c.DeleteBoundaryOffset)
	if err := t.Validate(now); err != nil {
		return fmt.Errorf("invalid retention offsets: %w", err)
	}
	return nil
}
