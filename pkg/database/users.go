package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"optysys-backend/pkg/apperrors"
	"optysys-backend/pkg/models"
	"optysys-backend/pkg/utils"
)

// Users implements UserStore on MongoDB.
type Users struct {
	mongo *Mongo
}

// NewUsers creates the user store
func NewUsers(m *Mongo) *Users {
	return &Users{mongo: m}
}

// CreateUser inserts a new user. A duplicate email maps to a conflict.
func (s *Users) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Organizations == nil {
		user.Organizations = []primitive.ObjectID{}
	}

	result, err := s.mongo.Collection(CollectionUsers).InsertOne(ctx, user)
	if err != nil {
		return apperrors.FromMongoError(err)
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	return nil
}

// GetUserByEmail loads a user by email
func (s *Users) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.mongo.Collection(CollectionUsers).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.FromMongoError(err)
	}

	return &user, nil
}

// GetUserByID loads a user by id
func (s *Users) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := utils.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.mongo.Collection(CollectionUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.FromMongoError(err)
	}

	return &user, nil
}

// ActivateUser marks the account activated when the verification code
// matches. A wrong email/code pair maps to invalid credentials.
func (s *Users) ActivateUser(ctx context.Context, email, code string) error {
	res, err := s.mongo.Collection(CollectionUsers).UpdateOne(ctx,
		bson.M{"email": email, "verification_code": code},
		bson.M{
			"$set":   bson.M{"activated": true, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"verification_code": ""},
		},
	)
	if err != nil {
		return apperrors.FromMongoError(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrInvalidCredentials
	}

	return nil
}

// ListByOrganization returns the users that belong to the organization
func (s *Users) ListByOrganization(ctx context.Context, orgID string) ([]models.User, error) {
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

// IsAuthorizedUser returns nil iff the user exists and has activated their
// account.
func (s *Users) IsAuthorizedUser(ctx context.Context, userID string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.Activated {
		return apperrors.ErrNotActivated
	}

	return nil
}
