package rest

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/store-management/internal/auth"
	"github.com/frahmantamala/store-management/internal/store"
	"github.com/frahmantamala/store-management/internal/transport/middleware"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/frahmantamala/store-management/pkg/metrics"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Health *HealthHandler
	Auth   *auth.Handler
	Users  *user.Handler
	Stores *store.Handler
	RBAC   *auth.RBACAuthorization
}

type RouterOptions struct {
	AllowedOrigins string
	RequestTimeout time.Duration
	// MetricsPath mounts the prometheus handler when not empty.
	MetricsPath string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions, logger *slog.Logger) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))
	if opts.RequestTimeout > 0 {
		router.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	}

	if opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Use(h.RBAC.RequireAdmin)
				ur.Get("/", h.Users.ListUsers)
				ur.Post("/", h.Users.CreateUser)
				ur.Get("/{id}", h.Users.GetUser)
				ur.Put("/{id}", h.Users.EditUser)
				ur.Delete("/{id}", h.Users.DeleteUser)
				ur.Post("/{id}/verify", h.Users.VerifyUser)
			})

			pr.Route("/stores", func(sr chi.Router) {
				sr.With(h.RBAC.RequireAdmin).Get("/", h.Stores.ListStores)
				sr.With(h.RBAC.RequireAdmin).Post("/", h.Stores.CreateStore)

				sr.Route("/{name}", func(nr chi.Router) {
					nr.Get("/", h.Stores.GetStore)
					nr.With(h.RBAC.RequireAdmin).Delete("/", h.Stores.DeleteStore)

					nr.Get("/employees", h.Stores.ListEmployees)
					nr.Post("/employees", h.Stores.AddEmployee)
					nr.Delete("/employees/{email}", h.Stores.RemoveEmployee)

					nr.Get("/inventory", h.Stores.GetInventory)
					nr.Post("/inventory/items", h.Stores.CreateItem)
					nr.Patch("/inventory/items/{item}", h.Stores.UpdateItem)
					nr.Delete("/inventory/items/{item}", h.Stores.DeleteItem)

					nr.Group(func(ar chi.Router) {
						ar.Use(h.RBAC.RequireAdmin)
						ar.Get("/permissions", h.Stores.ListPermissions)
						ar.Post("/permissions", h.Stores.GrantPermission)
						ar.Delete("/permissions/{email}", h.Stores.RevokePermission)
					})
				})
			})
		})
	})
}
