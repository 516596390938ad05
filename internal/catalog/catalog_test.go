package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()
	assert.Len(t, c.Names(), 20)
	assert.Len(t, c.FallbackRecommendations(), 10)
}

func TestDurationFor(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		crop     string
		duration int
		found    bool
	}{
		{"canonical name", "wheat", 120, true},
		{"mixed case and spaces", "  Pigeon   Pea ", 150, true},
		{"alias", "Paddy", 120, true},
		{"unknown crop falls back", "dragonfruit", models.DefaultCropDuration, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duration, found := c.DurationFor(tt.crop)
			assert.Equal(t, tt.duration, duration)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestStageFor(t *testing.T) {
	c := Default()

	assert.Equal(t, models.StageSowing, c.StageFor("maize", -3, 95))
	assert.Equal(t, models.StageSowing, c.StageFor("maize", 2, 95))
	assert.Equal(t, models.StageGermination, c.StageFor("maize", 6, 95))
	assert.Equal(t, models.StageFlowering, c.StageFor("maize", 60, 95))
	assert.Equal(t, models.StageHarvest, c.StageFor("maize", 200, 95))

	// proportional progression outside the table
	assert.Equal(t, models.StageSowing, c.StageFor("quinoa", 0, 100))
	assert.Equal(t, models.StageVegetative, c.StageFor("quinoa", 50, 100))
	assert.Equal(t, models.StageHarvest, c.StageFor("quinoa", 150, 100))
}

func TestParseRejectsUnknownStage(t *testing.T) {
	_, err := Parse([]byte("crops:\n  - name: x\n    duration: 10\n    stages: {ripening: 3}\n"))
	require.Error(t, err)
}

func TestFallbackIsCopy(t *testing.T) {
	c := Default()
	list := c.FallbackRecommendations()
	list[0].Name = "changed"
	assert.NotEqual(t, "changed", c.FallbackRecommendations()[0].Name)
}
