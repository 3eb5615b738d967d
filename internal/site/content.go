// Package site renders the public marketing pages and the owner dashboard.
package site

import (
	"embed"
	"fmt"
	"os"

	"github.com/welldanyogia/elite-estate/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml templates/*.html static/*
var assets embed.FS

// LoadContent reads the site copy from path, or the built-in copy when path
// is empty.
func LoadContent(path string) (*models.SiteContent, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = assets.ReadFile("content.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read site content: %w", err)
	}
	return ParseContent(data)
}

// ParseContent decodes and checks YAML site copy
func ParseContent(data []byte) (*models.SiteContent, error) {
	var content models.SiteContent
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to parse site content: %w", err)
	}

	if content.Brand == "" {
		return nil, fmt.Errorf("site content: brand is required")
	}
	seen := make(map[string]bool, len(content.Properties))
	for i, p := range content.Properties {
		if p.Slug == "" {
			return nil, fmt.Errorf("site content: property %d has no slug", i)
		}
		if seen[p.Slug] {
			return nil, fmt.Errorf("site content: duplicate property slug %q", p.Slug)
		}
		seen[p.Slug] = true
	}
	for i, t := range content.Testimonials {
		if t.Rating < 0 || t.Rating > 5 {
			return nil, fmt.Errorf("site content: testimonial %d rating must be between 0 and 5", i)
		}
	}
	return &content, nil
}
