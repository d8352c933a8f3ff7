package database

import (
	"context"

	"optysys-backend/pkg/models"
)

// OrganizationStore owns the transactional multi-collection writes for
// organizations, their membership and nested opportunities.
type OrganizationStore interface {
	CreateOrganization(ctx context.Context, ownerID string, req *models.OrganizationCreateRequest) (*models.Organization, error)
	CreateOpportunity(ctx context.Context, orgID, creatorID string, req *models.OpportunityCreateRequest) (*models.Opportunity, error)
	// IsAuthorizedUser returns nil iff userID is an admin of the organization.
	IsAuthorizedUser(ctx context.Context, orgID, userID string) error
	AddMember(ctx context.Context, orgID, userID string) error
	DeleteOrganization(ctx context.Context, orgID, requesterID string) error

	GetOrganization(ctx context.Context, orgID string) (*models.Organization, error)
	ListUserOrganizations(ctx context.Context, userID string) ([]models.Organization, error)
	ListMembers(ctx context.Context, orgID string) ([]models.User, error)
}

// UserStore is the user collaborator consumed by the authorization gate
// and the auth handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ActivateUser(ctx context.Context, email, code string) error
	// IsAuthorizedUser returns nil iff the user exists and is activated.
	IsAuthorizedUser(ctx context.Context, userID string) error
}
