package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// importConfig holds ingest settings that are awkward as flags: the API
// token and the dataset locations. Flags still win over file values.
type importConfig struct {
	InfoneigeToken string `yaml:"infoneige_token"`
	InfoneigeURL   string `yaml:"infoneige_url"`
	GeobasePath    string `yaml:"geobase_path"`
	ParkingURL     string `yaml:"parking_url"`
	ParkingFile    string `yaml:"parking_file"`
}

func loadImportConfig(path string) (*importConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg importConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
