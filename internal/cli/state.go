package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tair/mediops/internal/subscription"
)

// State is what mediopsctl remembers between runs
type State struct {
	Server string `yaml:"server,omitempty"`
	Token  string `yaml:"token,omitempty"`
	Plan   string `yaml:"plan,omitempty"`
}

// PlanName returns the chosen plan, falling back to the default tier
func (s *State) PlanName() string {
	if s.Plan == "" {
		return subscription.Default
	}
	return s.Plan
}

// DefaultStatePath is $MEDIOPS_STATE or mediops/state.yaml under the user
// config directory
func DefaultStatePath() string {
	if p := os.Getenv("MEDIOPS_STATE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".mediops.yaml"
	}
	return filepath.Join(dir, "mediops", "state.yaml")
}

// LoadState reads the state file. A missing file is an empty state.
func LoadState(path string) (*State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var s State
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the state file with owner-only permissions
func (s *State) Save(path string) error {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}
