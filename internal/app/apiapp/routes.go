package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rajsir217-oss/profiledata-gateway/internal/config"
	authsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/auth"
	criteriasvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/criteria"
	listsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/lists"
	piisvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/pii"
	profilesvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/profiles"
	savedsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/savedsearch"
	searchsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/search"
	sessionsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/sessionstate"
	"github.com/rajsir217-oss/profiledata-gateway/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	SearchService      *searchsvc.Service
	SessionService     *sessionsvc.Service
	SavedSearchService *savedsvc.Service
	PIIService         *piisvc.Service
	ListService        *listsvc.Service
	ProfileService     *profilesvc.Service
	CriteriaBuilder    *criteriasvc.Builder
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	searchHandler := handlers.NewSearchHandler(deps.SearchService, deps.SessionService)
	savedSearchHandler := handlers.NewSavedSearchHandler(deps.SavedSearchService)
	piiHandler := handlers.NewPIIHandler(deps.PIIService)
	listsHandler := handlers.NewListsHandler(deps.ListService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService, deps.PIIService, deps.CriteriaBuilder)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminMW := RequireRole(authsvc.RoleAdmin)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/search", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", searchHandler.Start)
		r.Get("/page", searchHandler.Page)
		r.Post("/more", searchHandler.More)
		r.Get("/results", searchHandler.Results)
		r.Post("/view", searchHandler.View)
		r.Post("/scroll", searchHandler.Scroll)
		r.Post("/restore", searchHandler.Restore)
		r.Delete("/", searchHandler.Clear)
	})

	r.Route("/saved-searches", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", savedSearchHandler.List)
		r.Post("/", savedSearchHandler.Create)
		r.Get("/default", savedSearchHandler.Default)
		r.Put("/{id}", savedSearchHandler.Update)
		r.Delete("/{id}", savedSearchHandler.Delete)
	})

	r.Route("/pii", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/requests", piiHandler.Request)
		r.Get("/requests/outgoing", piiHandler.Outgoing)
		r.Get("/requests/pending", piiHandler.Pending)
		r.Post("/requests/{id}/respond", piiHandler.Respond)
		r.Post("/grants", piiHandler.Grant)
		r.Post("/grants/revoke", piiHandler.Revoke)
		r.Get("/check", piiHandler.Check)
		r.Get("/received", piiHandler.Received)
	})

	r.Route("/lists/{kind}", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", listsHandler.List)
		r.Post("/", listsHandler.Add)
		r.Delete("/{username}", listsHandler.Remove)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/me", profileHandler.GetOwn)
		r.Get("/me/default-criteria", profileHandler.DefaultCriteria)
		r.Get("/{username}", profileHandler.Get)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, adminMW)
		r.Get("/profiles/{username}", profileHandler.GetUnmasked)
	})
}
