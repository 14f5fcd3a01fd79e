// Package scoring ranks estates for venue placement: z-scores of price and
// location metrics against the batch, blended per venue profile.
package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TopWeights splits the composite score between price and location.
type TopWeights struct {
	Price    float64 `yaml:"price"`
	Location float64 `yaml:"location"`
}

// SubWeights splits the location score between its components.
type SubWeights struct {
	Transport      float64 `yaml:"transport"`
	Competition    float64 `yaml:"competition"`
	Infrastructure float64 `yaml:"infrastructure"`
	Demo           float64 `yaml:"demo"`
}

// Weights is one venue scoring profile.
type Weights struct {
	Top TopWeights `yaml:"top"`
	Sub SubWeights `yaml:"sub"`
}

// DefaultVenueType is used when a request does not name a profile.
const DefaultVenueType = "standard"

func defaultProfiles() map[string]Weights {
	return map[string]Weights{
		"fast_food": {
			Top: TopWeights{Price: 0.5, Location: 0.5},
			Sub: SubWeights{Transport: 0.5, Competition: 0.2, Infrastructure: 0.2, Demo: 0.1},
		},
		"premium": {
			Top: TopWeights{Price: 0.3, Location: 0.7},
			Sub: SubWeights{Transport: 0.2, Competition: 0.3, Infrastructure: 0.3, Demo: 0.2},
		},
		"casual": {
			Top: TopWeights{Price: 0.4, Location: 0.6},
			Sub: SubWeights{Transport: 0.3, Competition: 0.3, Infrastructure: 0.3, Demo: 0.1},
		},
		"standard": {
			Top: TopWeights{Price: 0.4, Location: 0.6},
			Sub: SubWeights{Transport: 0.4, Competition: 0.3, Infrastructure: 0.3, Demo: 0.0},
		},
	}
}

// LoadProfiles returns the built-in venue profiles, with entries from the
// optional YAML weights file overriding or extending them.
func LoadProfiles(path string) (map[string]Weights, error) {
	profiles := defaultProfiles()
	if path == "" {
		return profiles, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights file: %w", err)
	}

	overrides := make(map[string]Weights)
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse weights file %s: %w", path, err)
	}

	for name, weights := range overrides {
		profiles[name] = weights
	}
	return profiles, nil
}
