package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"optysys-backend/pkg/config"
	"optysys-backend/pkg/database"
	"optysys-backend/pkg/handlers"
	custommw "optysys-backend/pkg/middleware"
	"optysys-backend/pkg/services"
	"optysys-backend/pkg/utils"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// NewRouter assembles the middleware stack and all routes
func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	db *database.Mongo,
	orgs database.OrganizationStore,
	users database.UserStore,
	jwtService *utils.JWTService,
	hub *services.Hub,
) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, log, jwtService, users, orgs)
	setupRoutes(router, cfg, log, db, orgs, users, jwtService, hub)

	return router
}

// setupMiddleware installs the global middleware stack. The authorization
// gate runs last so every route below it sees an authenticated user id
// (or has been classified public).
func setupMiddleware(router *chi.Mux, cfg *config.Config, log *zap.Logger,
	jwtService *utils.JWTService, users database.UserStore, orgs database.OrganizationStore) {

	// Heartbeat must sit in front of the authorization gate so /ping
	// answers without a token.
	if cfg.IsDevelopment() {
		router.Use(chimiddleware.Heartbeat("/ping"))
	}

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(custommw.Normalize())
	router.Use(custommw.Logger(log))
	router.Use(custommw.Recovery(log))
	router.Use(custommw.CORS(cfg))
	router.Use(chimiddleware.Timeout(30 * time.Second))
	router.Use(chimiddleware.Compress(5))
	router.Use(custommw.MaxBodySize(maxBodyBytes))
	router.Use(custommw.ContentTypeJSON)
	router.Use(custommw.AuthMiddleware(jwtService, users, orgs))
}

// setupRoutes wires every endpoint to its handler
func setupRoutes(router *chi.Mux, cfg *config.Config, log *zap.Logger,
	db *database.Mongo, orgs database.OrganizationStore, users database.UserStore,
	jwtService *utils.JWTService, hub *services.Hub) {

	authHandler := handlers.NewAuthHandler(cfg, users, jwtService, log)
	orgsHandler := handlers.NewOrgsHandler(cfg, orgs)
	wsHandler := handlers.NewWSHandler(hub, log)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccessResponse(w, map[string]interface{}{
			"name":   "OptySys API",
			"status": "ok",
		})
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			utils.WriteAppErrorResponse(w, err)
			return
		}
		utils.WriteSuccessResponse(w, map[string]interface{}{"status": "healthy"})
	})

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/verify", authHandler.Verify)
		r.Post("/login", authHandler.Login)
	})

	router.Route("/organizations", func(r chi.Router) {
		r.Get("/", orgsHandler.ListMyOrganizations)
		r.Post("/", orgsHandler.CreateOrganization)

		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", orgsHandler.DeleteOrganization)
			r.Post("/members", orgsHandler.AddMember)
			r.Get("/members", orgsHandler.ListMembers)
			r.Post("/opportunities", orgsHandler.CreateOpportunity)
		})
	})

	router.Get("/ws", wsHandler.Serve)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path))
	})
}
