package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ems-mock/internal/ems"
)

type SiteConfig struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Capacity float64 `yaml:"capacity_kw"`
}

func DefaultSites() []SiteConfig {
	def := ems.DefaultSites()
	out := make([]SiteConfig, 0, len(def))
	for _, s := range def {
		out = append(out, SiteConfig{ID: s.ID, Name: s.Name, Capacity: s.Capacity})
	}
	return out
}

type sitesFileWrapper struct {
	Sites []SiteConfig `yaml:"sites"`
}

// LoadSites reads a roster file of the form "sites: [...]".
func LoadSites(path string) ([]SiteConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w sitesFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Sites, nil
}

func ValidateSites(sites []SiteConfig) error {
	if err := ems.ValidateSites(ToSites(sites)); err != nil {
		return fmt.Errorf("sites invalid: %w", err)
	}
	for i, s := range sites {
		if s.Capacity < 0 {
			return fmt.Errorf("sites invalid: site %d: capacity_kw must be >= 0", i)
		}
	}
	return nil
}

func ToSites(sites []SiteConfig) []ems.Site {
	out := make([]ems.Site, 0, len(sites))
	for _, s := range sites {
		out = append(out, ems.Site{ID: s.ID, Name: s.Name, Capacity: s.Capacity})
	}
	return out
}
