package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Severity of a detected disease.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// ResolveHealthBonus is restored to a crop when a disease is resolved.
const ResolveHealthBonus = 20

// Penalty returns the health points a new disease of this severity costs.
// Unknown severities cost nothing.
func (s Severity) Penalty() int {
	switch s {
	case SeverityMild:
		return 10
	case SeverityModerate:
		return 20
	case SeveritySevere:
		return 30
	case SeverityCritical:
		return 40
	}
	return 0
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s.Penalty() > 0
}

// DiseaseStatus tracks treatment progress.
type DiseaseStatus string

const (
	StatusDetected DiseaseStatus = "detected"
	StatusTreating DiseaseStatus = "treating"
	StatusResolved DiseaseStatus = "resolved"
)

// Valid reports whether s is a known status.
func (s DiseaseStatus) Valid() bool {
	switch s {
	case StatusDetected, StatusTreating, StatusResolved:
		return true
	}
	return false
}

// CanTransition reports whether a disease may move from s to next. Resolved is terminal.
func (s DiseaseStatus) CanTransition(next DiseaseStatus) bool {
	if !next.Valid() || s == StatusResolved {
		return false
	}
	return s != next
}

// Disease is a detection record on a crop.
type Disease struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CropID     primitive.ObjectID `bson:"cropId" json:"cropId"`
	UserID     string             `bson:"userId" json:"userId"`
	Name       string             `bson:"name" json:"name"`
	Severity   Severity           `bson:"severity" json:"severity"`
	Confidence float64            `bson:"confidence" json:"confidence"`
	Symptoms   string             `bson:"symptoms,omitempty" json:"symptoms,omitempty"`
	Treatment  string             `bson:"treatment,omitempty" json:"treatment,omitempty"`
	Pesticide  string             `bson:"pesticide,omitempty" json:"pesticide,omitempty"`
	ImageURL   string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Status     DiseaseStatus      `bson:"status" json:"status"`
	DetectedAt time.Time          `bson:"detectedAt" json:"detectedAt"`
	ResolvedAt *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateDiseaseRequest logs a disease against a crop.
type CreateDiseaseRequest struct {
	CropID     string   `json:"cropId"`
	UserID     string   `json:"userId"`
	Name       string   `json:"name"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
	Symptoms   string   `json:"symptoms"`
	Treatment  string   `json:"treatment"`
	Pesticide  string   `json:"pesticide"`
	ImageURL   string   `json:"imageUrl"`
}

// UpdateDiseaseRequest edits descriptive fields; status has its own endpoint.
type UpdateDiseaseRequest struct {
	Name       *string   `json:"name"`
	Severity   *Severity `json:"severity"`
	Confidence *float64  `json:"confidence"`
	Symptoms   *string   `json:"symptoms"`
	Treatment  *string   `json:"treatment"`
	Pesticide  *string   `json:"pesticide"`
}

// UpdateDiseaseStatusRequest moves a disease through its lifecycle.
type UpdateDiseaseStatusRequest struct {
	Status DiseaseStatus `json:"status"`
}

// DetectionResult is the reshaped classifier answer returned to the client.
type DetectionResult struct {
	IsHealthy bool              `json:"isHealthy"`
	Diseases  []DetectedDisease `json:"diseases"`
	Logged    *Disease          `json:"logged,omitempty"`
}

// DetectedDisease is one classifier finding.
type DetectedDisease struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	Severity   Severity `json:"severity"`
	Symptoms   string   `json:"symptoms,omitempty"`
	Treatment  string   `json:"treatment,omitempty"`
	Pesticide  string   `json:"pesticide,omitempty"`
}
