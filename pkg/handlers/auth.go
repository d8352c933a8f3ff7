package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"optysys-backend/pkg/apperrors"
	"optysys-backend/pkg/config"
	"optysys-backend/pkg/database"
	"optysys-backend/pkg/models"
	"optysys-backend/pkg/utils"
)

// AuthHandler serves registration, verification and login
type AuthHandler struct {
	config *config.Config
	users  database.UserStore
	jwt    *utils.JWTService
	log    *zap.Logger
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(cfg *config.Config, users database.UserStore, jwt *utils.JWTService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{config: cfg, users: users, jwt: jwt, log: log}
}

// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserRegisterRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || strings.TrimSpace(req.Name) == "" {
		utils.WriteBadRequestResponse(w, "Name and email required")
		return
	}
	if len(req.Password) < 8 {
		utils.WriteBadRequestResponse(w, "Password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to process password")
		return
	}

	code, err := utils.GenerateVerificationCode(24)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to generate verification code")
		return
	}

	user := &models.User{
		Name:             req.Name,
		Email:            req.Email,
		Password:         string(hash),
		VerificationCode: code,
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		utils.WriteAppErrorResponse(w, err)
		return
	}

	// The verification code is delivered out of band; it is logged here so
	// deployments without a mail service can still complete activation.
	h.log.Info("verification code issued", zap.String("email", user.Email))

	data := map[string]interface{}{"user": user}
	if h.config.Debug {
		data["verification_code"] = code
	}

	utils.WriteCreatedResponse(w, data)
}

// POST /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.UserVerifyRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Code == "" {
		utils.WriteBadRequestResponse(w, "Email and code required")
		return
	}

	if err := h.users.ActivateUser(r.Context(), req.Email, req.Code); err != nil {
		utils.WriteAppErrorResponse(w, err)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"detail": "Account activated successfully.",
	})
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.UserLoginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		utils.WriteBadRequestResponse(w, "Email and password required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// A missing user responds like a wrong password
		utils.WriteAppErrorResponse(w, apperrors.ErrInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.WriteAppErrorResponse(w, apperrors.ErrInvalidCredentials)
		return
	}

	token, expiresAt, err := h.jwt.GenerateAccessToken(user.ID.Hex(), user.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to generate token")
		return
	}

	utils.WriteSuccessResponse(w, models.UserLoginResponse{
		User:        *user,
		AccessToken: token,
		ExpiresIn:   expiresAt,
	})
}
