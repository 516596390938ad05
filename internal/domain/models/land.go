package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Supported land size units.
const (
	UnitAcre    = "acre"
	UnitHectare = "hectare"
	UnitBigha   = "bigha"
)

// ValidLandUnit reports whether unit is accepted for land sizes.
func ValidLandUnit(unit string) bool {
	switch unit {
	case UnitAcre, UnitHectare, UnitBigha:
		return true
	}
	return false
}

// LandSize is an area measurement.
type LandSize struct {
	Value float64 `bson:"value" json:"value"`
	Unit  string  `bson:"unit" json:"unit"`
}

// Land is a parcel owned by one user. Deleting a land only clears IsActive.
type Land struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"userId" json:"userId"`
	Name        string             `bson:"name" json:"name"`
	Size        LandSize           `bson:"size" json:"size"`
	Location    Location           `bson:"location" json:"location"`
	SoilType    string             `bson:"soilType,omitempty" json:"soilType,omitempty"`
	WaterSource string             `bson:"waterSource,omitempty" json:"waterSource,omitempty"`
	FarmingType FarmingType        `bson:"farmingType" json:"farmingType"`
	TotalPlots  int                `bson:"totalPlots" json:"totalPlots"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateLandRequest registers a new land.
type CreateLandRequest struct {
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Size        LandSize    `json:"size"`
	Location    Location    `json:"location"`
	SoilType    string      `json:"soilType"`
	WaterSource string      `json:"waterSource"`
	FarmingType FarmingType `json:"farmingType"`
}

// UpdateLandRequest carries a partial land edit.
type UpdateLandRequest struct {
	Name        *string      `json:"name"`
	Size        *LandSize    `json:"size"`
	Location    *Location    `json:"location"`
	SoilType    *string      `json:"soilType"`
	WaterSource *string      `json:"waterSource"`
	FarmingType *FarmingType `json:"farmingType"`
}
