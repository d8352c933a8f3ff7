package utils

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"optysys-backend/pkg/apperrors"
)

// ValidateObjectIDFields checks that every given id is a well-formed hex
// object id. The stores call this before touching the database.
func ValidateObjectIDFields(ids ...string) error {
	for _, id := range ids {
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			return apperrors.ErrInvalidID
		}
	}
	return nil
}

// ParseObjectID converts a hex id into an ObjectID, mapping parse failures
// into the application error set.
func ParseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrInvalidID
	}
	return oid, nil
}
