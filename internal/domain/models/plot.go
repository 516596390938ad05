package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plot is a percentage slice of a land, optionally hosting one crop.
type Plot struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LandID     primitive.ObjectID  `bson:"landId" json:"landId"`
	UserID     string              `bson:"userId" json:"userId"`
	Name       string              `bson:"name" json:"name"`
	CropID     *primitive.ObjectID `bson:"cropId,omitempty" json:"cropId,omitempty"`
	CropName   string              `bson:"cropName,omitempty" json:"cropName,omitempty"`
	Percentage float64             `bson:"percentage" json:"percentage"`
	Area       float64             `bson:"area" json:"area"`
	AreaUnit   string              `bson:"areaUnit" json:"areaUnit"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// PlotSplit is one requested slice in a division request.
type PlotSplit struct {
	Name       string  `json:"name"`
	CropName   string  `json:"cropName"`
	CropID     string  `json:"cropId"`
	Percentage float64 `json:"percentage"`
}

// DividePlotsRequest replaces every plot of a land with a new set.
type DividePlotsRequest struct {
	LandID string      `json:"landId"`
	Plots  []PlotSplit `json:"plots"`
}

// UpdatePlotRequest edits a single plot.
type UpdatePlotRequest struct {
	Name       *string  `json:"name"`
	CropID     *string  `json:"cropId"`
	CropName   *string  `json:"cropName"`
	Percentage *float64 `json:"percentage"`
}
