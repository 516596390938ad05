// Package catalog holds the static crop table used to derive harvest dates
// and growth stages, plus the offline recommendation list.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

//go:embed crops.yaml
var rawCatalog []byte

// CropInfo describes one crop in the table.
type CropInfo struct {
	Name     string         `yaml:"name"`
	Aliases  []string       `yaml:"aliases"`
	Duration int            `yaml:"duration"`
	Season   string         `yaml:"season"`
	Stages   map[string]int `yaml:"stages"`
}

// Catalog indexes crops by name and alias.
type Catalog struct {
	crops    []CropInfo
	index    map[string]int
	fallback []models.CropRecommendation
}

type document struct {
	Crops    []CropInfo                  `yaml:"crops"`
	Fallback []models.CropRecommendation `yaml:"fallbackRecommendations"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(rawCatalog)
		if err != nil {
			panic(fmt.Sprintf("embedded crop catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		crops:    doc.Crops,
		index:    make(map[string]int, len(doc.Crops)*2),
		fallback: doc.Fallback,
	}
	for i, crop := range doc.Crops {
		if crop.Duration <= 0 {
			return nil, fmt.Errorf("crop %q has no duration", crop.Name)
		}
		for stage := range crop.Stages {
			if !models.Stage(stage).Valid() {
				return nil, fmt.Errorf("crop %q has unknown stage %q", crop.Name, stage)
			}
		}
		c.index[normalize(crop.Name)] = i
		for _, alias := range crop.Aliases {
			c.index[normalize(alias)] = i
		}
	}
	return c, nil
}

// Lookup finds a crop by name or alias, ignoring case and spacing.
func (c *Catalog) Lookup(name string) (CropInfo, bool) {
	i, ok := c.index[normalize(name)]
	if !ok {
		return CropInfo{}, false
	}
	return c.crops[i], true
}

// DurationFor returns the growing period for name, or DefaultCropDuration.
func (c *Catalog) DurationFor(name string) (int, bool) {
	if info, ok := c.Lookup(name); ok {
		return info.Duration, true
	}
	return models.DefaultCropDuration, false
}

// StageFor suggests the growth stage a crop should be in after daysElapsed days.
// Crops outside the table progress proportionally over duration.
func (c *Catalog) StageFor(name string, daysElapsed, duration int) models.Stage {
	if daysElapsed < 0 {
		return models.StageSowing
	}

	info, ok := c.Lookup(name)
	if !ok || len(info.Stages) == 0 {
		if duration <= 0 {
			duration = models.DefaultCropDuration
		}
		step := len(models.Stages) - 1
		i := daysElapsed * step / duration
		if i > step {
			i = step
		}
		return models.Stages[i]
	}

	type boundary struct {
		stage models.Stage
		day   int
	}
	bounds := make([]boundary, 0, len(info.Stages))
	for stage, day := range info.Stages {
		bounds = append(bounds, boundary{stage: models.Stage(stage), day: day})
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i].day < bounds[j].day })

	current := models.StageSowing
	for _, b := range bounds {
		if daysElapsed >= b.day {
			current = b.stage
		}
	}
	return current
}

// Names lists the canonical crop names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.crops))
	for _, crop := range c.crops {
		names = append(names, crop.Name)
	}
	return names
}

// FallbackRecommendations returns a copy of the offline recommendation list.
func (c *Catalog) FallbackRecommendations() []models.CropRecommendation {
	out := make([]models.CropRecommendation, len(c.fallback))
	copy(out, c.fallback)
	return out
}

func normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
