package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"optysys-backend/pkg/apperrors"
	"optysys-backend/pkg/models"
	"optysys-backend/pkg/utils"
)

// OpportunityRecommender receives committed opportunities for asynchronous
// fan-out. Implementations must not block the caller.
type OpportunityRecommender interface {
	RecommendOpportunities(orgID string, opportunity *models.Opportunity)
}

// Organizations implements OrganizationStore on MongoDB. Every mutation
// runs inside a session-scoped transaction; driver errors are translated
// into the application error set.
type Organizations struct {
	mongo       *Mongo
	recommender OpportunityRecommender
	log         *zap.Logger
}

// NewOrganizations creates the organization store. recommender may be nil,
// in which case no recommendation tasks are scheduled.
func NewOrganizations(m *Mongo, recommender OpportunityRecommender, log *zap.Logger) *Organizations {
	return &Organizations{
		mongo:       m,
		recommender: recommender,
		log:         log,
	}
}

// CreateOrganization inserts a new organization with the owner as its sole
// admin and member, and records the organization on the owner's user
// document. Both writes commit atomically or not at all.
func (s *Organizations) CreateOrganization(ctx context.Context, ownerID string, req *models.OrganizationCreateRequest) (*models.Organization, error) {
	owner, err := utils.ParseObjectID(ownerID)
	if err != nil {
		return nil, err
	}

	org := models.NewOrganization(owner, req)

	err = s.mongo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := s.mongo.Collection(CollectionOrganizations).InsertOne(sc, org)
		if err != nil {
			return err
		}
		org.ID = result.InsertedID.(primitive.ObjectID)

		res, err := s.mongo.Collection(CollectionUsers).UpdateOne(sc,
			bson.M{"_id": owner},
			bson.M{"$push": bson.M{"organizations": org.ID}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 {
			return apperrors.ErrUpdateFailed
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return org, nil
}

// CreateOpportunity inserts an opportunity and records its id on the owning
// organization within the same transaction. After the commit it hands the
// opportunity to the recommender without waiting for it.
func (s *Organizations) CreateOpportunity(ctx context.Context, orgID, creatorID string, req *models.OpportunityCreateRequest) (*models.Opportunity, error) {
	org, err := utils.ParseObjectID(orgID)
	if err != nil {
		return nil, err
	}
	creator, err := utils.ParseObjectID(creatorID)
	if err != nil {
		return nil, err
	}

	opportunity := models.NewOpportunity(org, creator, req)

	err = s.mongo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		result, err := s.mongo.Collection(CollectionOpportunities).InsertOne(sc, opportunity)
		if err != nil {
			return err
		}
		opportunity.ID = result.InsertedID.(primitive.ObjectID)

		res, err := s.mongo.Collection(CollectionOrganizations).UpdateOne(sc,
			bson.M{"_id": org},
			bson.M{"$push": bson.M{"opportunities": opportunity.ID}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 {
			return apperrors.ErrUpdateFailed
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Fire-and-forget: the request never waits for the recommendation task
	// and its failures stay out of band.
	if s.recommender != nil {
		s.log.Debug("scheduling recommendation task",
			zap.String("organization", orgID),
			zap.String("opportunity", opportunity.ID.Hex()),
		)
		go s.recommender.RecommendOpportunities(orgID, opportunity)
	}

	return opportunity, nil
}

// IsAuthorizedUser returns nil iff userID is an admin of the organization.
// A missing organization reports not-found, a non-admin user forbidden, so
// callers can tell the two apart.
func (s *Organizations) IsAuthorizedUser(ctx context.Context, orgID, userID string) error {
	org, err := utils.ParseObjectID(orgID)
	if err != nil {
		return err
	}
	user, err := utils.ParseObjectID(userID)
	if err != nil {
		return err
	}

	var organization models.Organization
	err = s.mongo.Collection(CollectionOrganizations).FindOne(ctx,
		bson.M{"_id": org},
		options.FindOne().SetProjection(bson.M{"admins": 1}),
	).Decode(&organization)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.ErrOrganizationNotFound
		}
		return apperrors.FromMongoError(err)
	}

	if !containsID(organization.Admins, user) {
		return apperrors.ErrNotAdmin
	}

	return nil
}

// AddMember appends the user to the organization's members and the
// organization to the user's organizations, atomically. Checks run in
// order: organization exists, user not already a member, organization not
// private.
func (s *Organizations) AddMember(ctx context.Context, orgID, userID string) error {
	org, err := utils.ParseObjectID(orgID)
	if err != nil {
		return err
	}
	user, err := utils.ParseObjectID(userID)
	if err != nil {
		return err
	}

	return s.mongo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var organization models.Organization
		err := s.mongo.Collection(CollectionOrganizations).FindOne(sc,
			bson.M{"_id": org},
			options.FindOne().SetProjection(bson.M{"members": 1, "admins": 1, "private": 1}),
		).Decode(&organization)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperrors.ErrOrganizationNotFound
			}
			return err
		}

		if containsID(organization.Members, user) {
			return apperrors.ErrAlreadyMember
		}

		if organization.Private {
			return apperrors.ErrPrivateOrganization
		}

		res, err := s.mongo.Collection(CollectionOrganizations).UpdateOne(sc,
			bson.M{"_id": org},
			bson.M{"$push": bson.M{"members": user}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 {
			return apperrors.ErrUpdateFailed
		}

		res, err = s.mongo.Collection(CollectionUsers).UpdateOne(sc,
			bson.M{"_id": user},
			bson.M{"$push": bson.M{"organizations": org}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 {
			return apperrors.ErrUpdateFailed
		}

		return nil
	})
}

// DeleteOrganization removes the organization and its id from every former
// member's organizations set. Only the creator may delete; admin membership
// is not enough. The membership cleanup runs before the delete so a cleanup
// failure aborts the whole transaction instead of leaving the store
// inconsistent.
func (s *Organizations) DeleteOrganization(ctx context.Context, orgID, requesterID string) error {
	org, err := utils.ParseObjectID(orgID)
	if err != nil {
		return err
	}
	requester, err := utils.ParseObjectID(requesterID)
	if err != nil {
		return err
	}

	return s.mongo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var organization models.Organization
		err := s.mongo.Collection(CollectionOrganizations).FindOne(sc,
			bson.M{"_id": org},
			options.FindOne().SetProjection(bson.M{"created_by": 1, "members": 1}),
		).Decode(&organization)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperrors.ErrOrganizationNotFound
			}
			return err
		}

		if organization.CreatedBy != requester {
			return apperrors.ErrNotCreator
		}

		res, err := s.mongo.Collection(CollectionUsers).UpdateMany(sc,
			bson.M{"_id": bson.M{"$in": organization.Members}},
			bson.M{"$pull": bson.M{"organizations": org}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 && len(organization.Members) > 0 {
			return apperrors.ErrUpdateFailed
		}

		del, err := s.mongo.Collection(CollectionOrganizations).DeleteOne(sc, bson.M{"_id": org})
		if err != nil {
			return err
		}
		if del.DeletedCount == 0 {
			return apperrors.ErrUpdateFailed
		}

		return nil
	})
}

// GetOrganization loads a single organization by id
func (s *Organizations) GetOrganization(ctx context.Context, orgID string) (*models.Organization, error) {
	org, err := utils.ParseObjectID(orgID)
	if err != nil {
		return nil, err
	}

	var organization models.Organization
	err = s.mongo.Collection(CollectionOrganizations).FindOne(ctx, bson.M{"_id": org}).Decode(&organization)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, apperrors.FromMongoError(err)
	}

	return &organization, nil
}

// ListUserOrganizations returns every organization the user is a member of
func (s *Organizations) ListUserOrganizations(ctx context.Context, userID string) ([]models.Organization, error) {
	user, err := utils.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.mongo.Collection(CollectionOrganizations).Find(ctx, bson.M{"members": user})
	if err != nil {
		return nil, apperrors.FromMongoError(err)
	}
	defer cursor.Close(ctx)

	organizations := []models.Organization{}
	if err := cursor.All(ctx, &organizations); err != nil {
		return nil, apperrors.FromMongoError(err)
	}

	return organizations, nil
}

// ListMembers returns the users that belong to the organization
func (s *Organizations) ListMembers(ctx context.Context, orgID string) ([]models.User, error) {
	org, err := utils.ParseObjectID(orgID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.mongo.Collection(CollectionUsers).Find(ctx, bson.M{"organizations": org})
	if err != nil {
		return nil, apperrors.FromMongoError(err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperrors.FromMongoError(err)
	}

	return users, nil
}

// containsID reports whether ids contains id
func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
