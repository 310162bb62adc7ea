package store

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/database"
)

// ParseID converts a hex id from a URL or body into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, database.ErrInvalidID
	}
	return id, nil
}
