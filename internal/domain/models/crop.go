package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Health score bounds.
const (
	MaxHealthScore = 100
	MinHealthScore = 0
)

// DefaultCropDuration is used when a crop is not in the catalog.
const DefaultCropDuration = 90

// Stage is a growth stage; the order of Stages is the progression.
type Stage string

const (
	StageSowing      Stage = "sowing"
	StageGermination Stage = "germination"
	StageVegetative  Stage = "vegetative"
	StageFlowering   Stage = "flowering"
	StageMaturity    Stage = "maturity"
	StageHarvest     Stage = "harvest"
)

// Stages lists every stage in growth order.
var Stages = []Stage{StageSowing, StageGermination, StageVegetative, StageFlowering, StageMaturity, StageHarvest}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, candidate := range Stages {
		if s == candidate {
			return true
		}
	}
	return false
}

// ClampHealth bounds a health score to [0, 100].
func ClampHealth(score int) int {
	if score < MinHealthScore {
		return MinHealthScore
	}
	if score > MaxHealthScore {
		return MaxHealthScore
	}
	return score
}

// Crop is a planting on a user's land.
type Crop struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID              string              `bson:"userId" json:"userId"`
	LandID              *primitive.ObjectID `bson:"landId,omitempty" json:"landId,omitempty"`
	PlotID              *primitive.ObjectID `bson:"plotId,omitempty" json:"plotId,omitempty"`
	Name                string              `bson:"name" json:"name"`
	Variety             string              `bson:"variety,omitempty" json:"variety,omitempty"`
	PlantingDate        time.Time           `bson:"plantingDate" json:"plantingDate"`
	Duration            int                 `bson:"duration" json:"duration"`
	ExpectedHarvestDate time.Time           `bson:"expectedHarvestDate" json:"expectedHarvestDate"`
	CurrentStage        Stage               `bson:"currentStage" json:"currentStage"`
	HealthScore         int                 `bson:"healthScore" json:"healthScore"`
	Area                float64             `bson:"area,omitempty" json:"area,omitempty"`
	IsActive            bool                `bson:"isActive" json:"isActive"`
	IsHarvested         bool                `bson:"isHarvested" json:"isHarvested"`
	HarvestedAt         *time.Time          `bson:"harvestedAt,omitempty" json:"harvestedAt,omitempty"`
	Yield               *Yield              `bson:"yield,omitempty" json:"yield,omitempty"`
	Notes               string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Version             int64               `bson:"version" json:"version"`
	CreatedAt           time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// HarvestDate derives the expected harvest day from planting date and duration.
func HarvestDate(planting time.Time, durationDays int) time.Time {
	return planting.AddDate(0, 0, durationDays)
}

// Yield records the harvested quantity.
type Yield struct {
	Quantity float64 `bson:"quantity" json:"quantity"`
	Unit     string  `bson:"unit" json:"unit"`
}

// CropDetails decorates a crop with values computed at read time.
type CropDetails struct {
	Crop
	DaysElapsed    int   `json:"daysElapsed"`
	DaysRemaining  int   `json:"daysRemaining"`
	Progress       int   `json:"progress"`
	SuggestedStage Stage `json:"suggestedStage"`
}

// CreateCropRequest registers a crop.
type CreateCropRequest struct {
	UserID       string  `json:"userId"`
	LandID       string  `json:"landId"`
	PlotID       string  `json:"plotId"`
	Name         string  `json:"name"`
	Variety      string  `json:"variety"`
	PlantingDate string  `json:"plantingDate"`
	Duration     int     `json:"duration"`
	Area         float64 `json:"area"`
	Notes        string  `json:"notes"`
}

// UpdateCropRequest carries a partial crop edit. Version, when set, must match
// the stored document.
type UpdateCropRequest struct {
	Name         *string  `json:"name"`
	Variety      *string  `json:"variety"`
	PlantingDate *string  `json:"plantingDate"`
	Duration     *int     `json:"duration"`
	Area         *float64 `json:"area"`
	Notes        *string  `json:"notes"`
	Version      *int64   `json:"version"`
}

// HarvestCropRequest marks a crop harvested.
type HarvestCropRequest struct {
	HarvestedAt string `json:"harvestedAt"`
	Yield       *Yield `json:"yield"`
}

// UpdateStageRequest moves a crop to another stage.
type UpdateStageRequest struct {
	Stage Stage `json:"stage"`
}
