package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"optysys-backend/pkg/apperrors"
)

func TestUsersRejectMalformedIDs(t *testing.T) {
	users := NewUsers(nil)
	ctx := context.Background()

	_, err := users.GetUserByID(ctx, "bogus")
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)

	_, err = users.ListByOrganization(ctx, "not-hex")
	assert.ErrorIs(t, err, apperrors.ErrInvalidID)

	assert.ErrorIs(t, users.IsAuthorizedUser(ctx, ""), apperrors.ErrInvalidID)
}
