package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Opportunity represents a record created within an organization, visible
// to the recommendation pipeline.
type Opportunity struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	CreatedBy      primitive.ObjectID `json:"created_by" bson:"created_by"`
	Title          string             `json:"title" bson:"title"`
	Description    string             `json:"description,omitempty" bson:"description"`
	Link           string             `json:"link,omitempty" bson:"link"`
	Skills         []string           `json:"skills,omitempty" bson:"skills"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// OpportunityCreateRequest represents the request payload for creating an opportunity
type OpportunityCreateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

// NewOpportunity builds the document inserted by the store.
func NewOpportunity(orgID, createdBy primitive.ObjectID, req *OpportunityCreateRequest) *Opportunity {
	return &Opportunity{
		OrganizationID: orgID,
		CreatedBy:      createdBy,
		Title:          req.Title,
		Description:    req.Description,
		Link:           req.Link,
		Skills:         req.Skills,
		CreatedAt:      time.Now().UTC(),
	}
}
