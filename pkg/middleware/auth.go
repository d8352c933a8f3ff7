package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"optysys-backend/pkg/utils"
)

// errLogin is the internal sentinel for every authentication failure
var errLogin = errors.New(loginMessage)

// ContextKey is the key type for values stored in the request context
type ContextKey string

const (
	// UserContextKey holds the authenticated user id
	UserContextKey ContextKey = "user"
)

// loginMessage is the single rejection message for every authentication
// failure. Decode internals are never surfaced to the caller.
const loginMessage = "Please login to access this resource."

// endpoint is an exact (path, method) pair in an allow-list
type endpoint struct {
	Path   string
	Method string
}

var publicEndpoints = []endpoint{
	{Path: "/", Method: http.MethodGet},
	{Path: "/health", Method: http.MethodGet},
	{Path: "/auth/register", Method: http.MethodPost},
	{Path: "/auth/verify", Method: http.MethodPost},
	{Path: "/auth/login", Method: http.MethodPost},
}

var unauthorizedEndpoints = []endpoint{
	{Path: "/", Method: http.MethodGet},
	{Path: "/health", Method: http.MethodGet},
	{Path: "/auth/register", Method: http.MethodPost},
	{Path: "/auth/verify", Method: http.MethodPost},
	{Path: "/auth/login", Method: http.MethodPost},
	{Path: "/users", Method: http.MethodPost},
}

var webSocketEndpoints = []string{
	"/ws",
}

// IsPublicEndpoint reports whether the (path, method) pair requires no token
func IsPublicEndpoint(path, method string) bool {
	for _, e := range publicEndpoints {
		if e.Path == path && e.Method == method {
			return true
		}
	}
	return false
}

// IsUnauthorizedEndpoint reports whether the (path, method) pair requires a
// token but no resource-level authorization
func IsUnauthorizedEndpoint(path, method string) bool {
	for _, e := range unauthorizedEndpoints {
		if e.Path == path && e.Method == method {
			return true
		}
	}
	return false
}

// IsWebSocketEndpoint reports whether the path is a websocket endpoint.
// Websocket paths are classified by path alone.
func IsWebSocketEndpoint(path string) bool {
	for _, p := range webSocketEndpoints {
		if p == path {
			return true
		}
	}
	return false
}

// UserAuthorizer is the user collaborator consulted for activation checks
type UserAuthorizer interface {
	IsAuthorizedUser(ctx context.Context, userID string) error
}

// OrganizationAuthorizer is the organization collaborator consulted for
// admin checks
type OrganizationAuthorizer interface {
	IsAuthorizedUser(ctx context.Context, orgID, userID string) error
}

// AuthMiddleware is the authorization gate: it extracts the bearer token,
// decodes it to a user id, applies the resource-level checks the route
// classifier demands, and attaches the user id to the request context.
func AuthMiddleware(jwtService *utils.JWTService, users UserAuthorizer, orgs OrganizationAuthorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path, method := r.URL.Path, r.Method

			if IsPublicEndpoint(path, method) {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := authenticate(jwtService, r)
			if err != nil {
				utils.WriteUnauthorizedResponse(w, loginMessage)
				return
			}
			setLogUser(r.Context(), userID)

			if !IsUnauthorizedEndpoint(path, method) {
				if err := checkAuthorization(r.Context(), users, orgs, userID, path, method); err != nil {
					utils.WriteForbiddenResponse(w, "User is not authorized to access this resource.")
					return
				}
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate extracts and decodes the bearer token. Any failure collapses
// into a single error so token-format details never leak.
func authenticate(jwtService *utils.JWTService, r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errLogin
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", errLogin
	}

	claims, err := jwtService.ValidateToken(tokenString)
	if err != nil {
		return "", errLogin
	}

	if claims.UserID == "" {
		return "", errLogin
	}
	if err := utils.ValidateObjectIDFields(claims.UserID); err != nil {
		return "", errLogin
	}

	return claims.UserID, nil
}

// checkAuthorization applies the resource-level checks:
//   - POST /organizations and GET /ws require an activated account
//   - POST /organizations/{id}/opportunities requires admin of {id}
//
// Everything else passes with a valid token.
func checkAuthorization(ctx context.Context, users UserAuthorizer, orgs OrganizationAuthorizer, userID, path, method string) error {
	if (method == http.MethodPost && path == "/organizations") ||
		(method == http.MethodGet && IsWebSocketEndpoint(path)) {
		if err := users.IsAuthorizedUser(ctx, userID); err != nil {
			return err
		}
	}

	if method == http.MethodPost &&
		strings.HasPrefix(path, "/organizations") && strings.HasSuffix(path, "/opportunities") {
		parts := strings.Split(path, "/")
		if len(parts) < 3 {
			return errLogin
		}
		if err := orgs.IsAuthorizedUser(ctx, parts[2], userID); err != nil {
			return err
		}
	}

	return nil
}

// GetUserFromContext returns the authenticated user id, if any
func GetUserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserContextKey).(string)
	return userID, ok && userID != ""
}

// RequireUser returns the authenticated user id or an error
func RequireUser(ctx context.Context) (string, error) {
	userID, ok := GetUserFromContext(ctx)
	if !ok {
		return "", errLogin
	}
	return userID, nil
}
