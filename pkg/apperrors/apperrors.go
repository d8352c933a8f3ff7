// Package apperrors defines the closed set of application errors surfaced
// by the stores and middleware, and the translation from driver errors.
package apperrors

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrUnavailable covers connectivity failures talking to the store.
	ErrUnavailable = errors.New("service unavailable")

	// ErrDuplicateName signals a unique-field collision (organization name,
	// user email).
	ErrDuplicateName = errors.New("a record with this name already exists")

	// ErrAlreadyMember signals that the user is already a member of the
	// organization.
	ErrAlreadyMember = errors.New("user is already a member of the organization")

	// ErrNotAdmin signals that the user is not an admin of the organization.
	ErrNotAdmin = errors.New("user is not an admin of the organization")

	// ErrNotCreator signals that only the creator may perform the operation.
	ErrNotCreator = errors.New("only the creator may perform this operation")

	// ErrPrivateOrganization signals that the organization does not accept
	// open membership.
	ErrPrivateOrganization = errors.New("organization is private")

	// ErrOrganizationNotFound signals a missing organization.
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrUserNotFound signals a missing user.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotActivated signals that the user account has not been activated.
	ErrNotActivated = errors.New("user account is not activated")

	// ErrInvalidID signals a malformed object id.
	ErrInvalidID = errors.New("invalid id")

	// ErrUpdateFailed signals a write that modified no records where at
	// least one was expected.
	ErrUpdateFailed = errors.New("unable to apply update")

	// ErrInvalidCredentials signals a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// FromMongoError translates a mongo driver error into the closed error set.
// Errors that are already part of the set pass through unchanged.
func FromMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case isAppError(err):
		return err
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateName
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrOrganizationNotFound
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return ErrUnavailable
	default:
		return err
	}
}

// StatusCode maps an application error to its HTTP status class.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrDuplicateName), errors.Is(err, ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, ErrNotAdmin), errors.Is(err, ErrNotCreator),
		errors.Is(err, ErrPrivateOrganization), errors.Is(err, ErrNotActivated):
		return http.StatusForbidden
	case errors.Is(err, ErrOrganizationNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrUpdateFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code maps an application error to a stable machine-readable error code.
func Code(err error) string {
	switch StatusCode(err) {
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

func isAppError(err error) bool {
	for _, e := range []error{
		ErrUnavailable, ErrDuplicateName, ErrAlreadyMember, ErrNotAdmin,
		ErrNotCreator, ErrPrivateOrganization, ErrOrganizationNotFound,
		ErrUserNotFound, ErrNotActivated, ErrInvalidID, ErrUpdateFailed,
		ErrInvalidCredentials,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
