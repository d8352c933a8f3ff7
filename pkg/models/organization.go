package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization represents a named group owning members, admins and opportunities
type Organization struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name          string               `json:"name" bson:"name"`
	Description   string               `json:"description,omitempty" bson:"description"`
	CreatedBy     primitive.ObjectID   `json:"created_by" bson:"created_by"`
	Admins        []primitive.ObjectID `json:"admins" bson:"admins"`
	Members       []primitive.ObjectID `json:"members" bson:"members"`
	Opportunities []primitive.ObjectID `json:"opportunities" bson:"opportunities"`
	Private       bool                 `json:"private" bson:"private"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}

// OrganizationCreateRequest represents the request payload for creating an organization
type OrganizationCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Private     bool   `json:"private"`
}

// NewOrganization builds the document inserted by the store. The creator is
// the sole admin and member at creation time.
func NewOrganization(createdBy primitive.ObjectID, req *OrganizationCreateRequest) *Organization {
	now := time.Now().UTC()
	return &Organization{
		Name:          req.Name,
		Description:   req.Description,
		CreatedBy:     createdBy,
		Admins:        []primitive.ObjectID{createdBy},
		Members:       []primitive.ObjectID{createdBy},
		Opportunities: []primitive.ObjectID{},
		Private:       req.Private,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
