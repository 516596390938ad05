package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MarketPrice is a mandi quote for one crop on one day, in rupees per quintal.
type MarketPrice struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CropName   string             `bson:"cropName" json:"cropName"`
	Market     string             `bson:"market" json:"market"`
	State      string             `bson:"state" json:"state"`
	District   string             `bson:"district,omitempty" json:"district,omitempty"`
	Location   Location           `bson:"location" json:"location"`
	MinPrice   float64            `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64            `bson:"maxPrice" json:"maxPrice"`
	ModalPrice float64            `bson:"modalPrice" json:"modalPrice"`
	Unit       string             `bson:"unit" json:"unit"`
	Date       time.Time          `bson:"date" json:"date"`
	Synthetic  bool               `bson:"-" json:"synthetic"`
}

// BestMarket ranks a market for selling a crop.
type BestMarket struct {
	MarketPrice
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}
