package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan describes a nominal rate-limit tier for a key type. Plans are
// presentation data only; nothing meters usage against them.
type Plan struct {
	Type            string `yaml:"type" json:"type"`
	Name            string `yaml:"name" json:"name"`
	MonthlyRequests int    `yaml:"monthly_requests" json:"monthly_requests"`
	Description     string `yaml:"description" json:"description"`
}

// DefaultPlans are used when no plans file is configured.
var DefaultPlans = []Plan{
	{Type: "dev", Name: "Development", MonthlyRequests: 1000, Description: "For testing and prototyping"},
	{Type: "live", Name: "Production", MonthlyRequests: 100000, Description: "For production workloads"},
}

// LoadPlans reads the tier definitions from a YAML file. An empty path
// returns the built-in defaults.
func LoadPlans(path string) ([]Plan, error) {
	if path == "" {
		return DefaultPlans, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans file: %w", err)
	}

	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse plans file: %w", err)
	}
	if len(doc.Plans) == 0 {
		return nil, fmt.Errorf("plans file %s defines no plans", path)
	}

	return doc.Plans, nil
}
