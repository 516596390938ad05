package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID converts a hex document id, reporting the field name on failure.
func ParseID(hex, field string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NilObjectID, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s is not a valid id", ErrInvalidInput, field)
	}
	return id, nil
}

// ParseOptionalID is ParseID that maps an empty string to nil.
func ParseOptionalID(hex, field string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := ParseID(hex, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
