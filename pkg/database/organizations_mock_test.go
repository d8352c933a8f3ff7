package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"optysys-backend/pkg/apperrors"
	"optysys-backend/pkg/models"
)

type captureRecommender struct {
	calls chan string
}

func (c *captureRecommender) RecommendOpportunities(orgID string, _ *models.Opportunity) {
	c.calls <- orgID
}

func newMockStore(mt *mtest.T, recommender OpportunityRecommender) *Organizations {
	m := &Mongo{client: mt.Client, db: mt.DB}
	return NewOrganizations(m, recommender, zap.NewNop())
}

func orgNamespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + CollectionOrganizations
}

func updateResponse(modified int32) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: modified},
		bson.E{Key: "nModified", Value: modified},
	)
}

func TestAddMemberStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	orgID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	existing := primitive.NewObjectID()

	mt.Run("missing organization reports not found", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		err := store.AddMember(context.Background(), orgID.Hex(), userID.Hex())
		assert.ErrorIs(mt, err, apperrors.ErrOrganizationNotFound)
	})

	mt.Run("existing member wins over private check", func(mt *mtest.T) {
		// The user is already a member AND the organization is private; the
		// membership check runs first.
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orgID},
				{Key: "members", Value: bson.A{userID}},
				{Key: "admins", Value: bson.A{}},
				{Key: "private", Value: true},
			}),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		err := store.AddMember(context.Background(), orgID.Hex(), userID.Hex())
		assert.ErrorIs(mt, err, apperrors.ErrAlreadyMember)
	})

	mt.Run("private organization rejects new members", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orgID},
				{Key: "members", Value: bson.A{existing}},
				{Key: "admins", Value: bson.A{}},
				{Key: "private", Value: true},
			}),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		err := store.AddMember(context.Background(), orgID.Hex(), userID.Hex())
		assert.ErrorIs(mt, err, apperrors.ErrPrivateOrganization)
	})

	mt.Run("success updates both sides", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orgID},
				{Key: "members", Value: bson.A{existing}},
				{Key: "admins", Value: bson.A{}},
				{Key: "private", Value: false},
			}),
			updateResponse(1),
			updateResponse(1),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		assert.NoError(mt, store.AddMember(context.Background(), orgID.Hex(), userID.Hex()))
	})

	mt.Run("user side noop aborts", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orgID},
				{Key: "members", Value: bson.A{existing}},
				{Key: "admins", Value: bson.A{}},
				{Key: "private", Value: false},
			}),
			updateResponse(1),
			updateResponse(0),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		err := store.AddMember(context.Background(), orgID.Hex(), userID.Hex())
		assert.ErrorIs(mt, err, apperrors.ErrUpdateFailed)
	})
}

func TestDeleteOrganizationStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	orgID := primitive.NewObjectID()
	creator := primitive.NewObjectID()
	member := primitive.NewObjectID()

	mt.Run("only the creator may delete", func(mt *mtest.T) {
		// The requester is an arbitrary non-creator; admin membership would
		// not help either since only created_by is checked.
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orgID},
				{Key: "created_by", Value: creator},
				{Key: "members", Value: bson.A{creator, member}},
			}),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		err := store.DeleteOrganization(context.Background(), orgID.Hex(), member.Hex())
		assert.ErrorIs(mt, err, apperrors.ErrNotCreator)

		for _, evt := range mt.GetAllStartedEvents() {
			assert.NotEqual(mt, "delete", evt.CommandName)
		}
	})

	mt.Run("cleanup failure aborts before the delete", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orgID},
				{Key: "created_by", Value: creator},
				{Key: "members", Value: bson.A{creator, member}},
			}),
			updateResponse(0),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		err := store.DeleteOrganization(context.Background(), orgID.Hex(), creator.Hex())
		assert.ErrorIs(mt, err, apperrors.ErrUpdateFailed)

		// The membership cleanup runs first; its failure means the delete
		// command is never issued.
		for _, evt := range mt.GetAllStartedEvents() {
			assert.NotEqual(mt, "delete", evt.CommandName)
		}
	})

	mt.Run("success removes memberships then the organization", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orgID},
				{Key: "created_by", Value: creator},
				{Key: "members", Value: bson.A{creator, member}},
			}),
			updateResponse(2),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		assert.NoError(mt, store.DeleteOrganization(context.Background(), orgID.Hex(), creator.Hex()))
	})

	mt.Run("zero cleanup is fine for an empty organization", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orgID},
				{Key: "created_by", Value: creator},
				{Key: "members", Value: bson.A{}},
			}),
			updateResponse(0),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		assert.NoError(mt, store.DeleteOrganization(context.Background(), orgID.Hex(), creator.Hex()))
	})
}

func TestIsAuthorizedUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	orgID := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	mt.Run("admin passes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: orgID},
			{Key: "admins", Value: bson.A{admin}},
		}))

		store := newMockStore(mt, nil)
		assert.NoError(mt, store.IsAuthorizedUser(context.Background(), orgID.Hex(), admin.Hex()))
	})

	mt.Run("non-admin is forbidden", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: orgID},
			{Key: "admins", Value: bson.A{admin}},
		}))

		store := newMockStore(mt, nil)
		err := store.IsAuthorizedUser(context.Background(), orgID.Hex(), outsider.Hex())
		assert.ErrorIs(mt, err, apperrors.ErrNotAdmin)
	})

	mt.Run("missing organization is not found, not forbidden", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, orgNamespace(mt), mtest.FirstBatch))

		store := newMockStore(mt, nil)
		err := store.IsAuthorizedUser(context.Background(), orgID.Hex(), admin.Hex())
		assert.ErrorIs(mt, err, apperrors.ErrOrganizationNotFound)
		assert.NotErrorIs(mt, err, apperrors.ErrNotAdmin)
	})
}

func TestCreateOrganizationStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	owner := primitive.NewObjectID()
	req := &models.OrganizationCreateRequest{Name: "acme", Description: "widgets"}

	mt.Run("duplicate name maps to conflict", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "duplicate key error",
			}),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		_, err := store.CreateOrganization(context.Background(), owner.Hex(), req)
		assert.ErrorIs(mt, err, apperrors.ErrDuplicateName)
	})

	mt.Run("owner record noop aborts the insert", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			updateResponse(0),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		_, err := store.CreateOrganization(context.Background(), owner.Hex(), req)
		assert.ErrorIs(mt, err, apperrors.ErrUpdateFailed)
	})

	mt.Run("success returns the owner-seeded document", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			updateResponse(1),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, nil)
		org, err := store.CreateOrganization(context.Background(), owner.Hex(), req)
		require.NoError(mt, err)
		assert.False(mt, org.ID.IsZero())
		assert.Equal(mt, owner, org.CreatedBy)
		assert.Equal(mt, []primitive.ObjectID{owner}, org.Admins)
		assert.Equal(mt, []primitive.ObjectID{owner}, org.Members)
	})
}

func TestCreateOpportunityStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	orgID := primitive.NewObjectID()
	creator := primitive.NewObjectID()
	req := &models.OpportunityCreateRequest{Title: "backend role", Skills: []string{"go"}}

	mt.Run("organization side noop aborts", func(mt *mtest.T) {
		recommender := &captureRecommender{calls: make(chan string, 1)}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			updateResponse(0),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, recommender)
		_, err := store.CreateOpportunity(context.Background(), orgID.Hex(), creator.Hex(), req)
		assert.ErrorIs(mt, err, apperrors.ErrUpdateFailed)
		assert.Empty(mt, recommender.calls)
	})

	mt.Run("success schedules the recommendation task", func(mt *mtest.T) {
		recommender := &captureRecommender{calls: make(chan string, 1)}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			updateResponse(1),
			mtest.CreateSuccessResponse(),
		)

		store := newMockStore(mt, recommender)
		opp, err := store.CreateOpportunity(context.Background(), orgID.Hex(), creator.Hex(), req)
		require.NoError(mt, err)
		assert.False(mt, opp.ID.IsZero())
		assert.Equal(mt, orgID, opp.OrganizationID)
		assert.Equal(mt, creator, opp.CreatedBy)

		select {
		case got := <-recommender.calls:
			assert.Equal(mt, orgID.Hex(), got)
		case <-time.After(2 * time.Second):
			mt.Fatal("recommendation task was not scheduled")
		}
	})
}
