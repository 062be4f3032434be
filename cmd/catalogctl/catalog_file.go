package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cinepulse-recommendation-service/internal/models"
)

type catalogFile struct {
	Movies []models.Movie `yaml:"movies"`
}

func loadCatalogFile(path string) ([]models.Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) ([]models.Movie, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	if len(f.Movies) == 0 {
		return nil, fmt.Errorf("catalog file has no movies")
	}
	return f.Movies, nil
}
