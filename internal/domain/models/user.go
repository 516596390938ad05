package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role enumerates the account kinds the mobile client supports.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleVendor Role = "vendor"
	RoleAgent  Role = "agent"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleVendor, RoleAgent:
		return true
	}
	return false
}

// FarmingType controls how many crops a land may host.
type FarmingType string

const (
	FarmingNormal  FarmingType = "normal"
	FarmingOrganic FarmingType = "organic"
	FarmingTerrace FarmingType = "terrace"
)

// Valid reports whether f is a known farming type.
func (f FarmingType) Valid() bool {
	switch f {
	case FarmingNormal, FarmingOrganic, FarmingTerrace:
		return true
	}
	return false
}

// MaxPlots returns the number of crops a single land can be divided into.
func (f FarmingType) MaxPlots() int {
	switch f {
	case FarmingOrganic:
		return 4
	case FarmingTerrace:
		return 3
	default:
		return 5
	}
}

// Location is a postal address with optional coordinates.
type Location struct {
	Address string  `bson:"address,omitempty" json:"address,omitempty"`
	City    string  `bson:"city,omitempty" json:"city,omitempty"`
	State   string  `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string  `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Lat     float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng     float64 `bson:"lng,omitempty" json:"lng,omitempty"`
}

// User is an account keyed by the external auth UID.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirebaseUID string             `bson:"firebaseUid" json:"firebaseUid"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role        Role               `bson:"role" json:"role"`
	FarmingType FarmingType        `bson:"farmingType,omitempty" json:"farmingType,omitempty"`
	Location    Location           `bson:"location" json:"location"`
	Language    string             `bson:"language,omitempty" json:"language,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	FirebaseUID string      `json:"firebaseUid"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Role        Role        `json:"role"`
	FarmingType FarmingType `json:"farmingType"`
	Location    Location    `json:"location"`
	Language    string      `json:"language"`
}

// UpdateUserRequest carries a partial profile edit.
type UpdateUserRequest struct {
	Name        *string      `json:"name"`
	Email       *string      `json:"email"`
	Phone       *string      `json:"phone"`
	Role        *Role        `json:"role"`
	FarmingType *FarmingType `json:"farmingType"`
	Location    *Location    `json:"location"`
	Language    *string      `json:"language"`
}
