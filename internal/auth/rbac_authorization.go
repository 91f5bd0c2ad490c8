package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/transport"
)

type RBACAuthorization struct {
	*transport.BaseHandler
	checker *PermissionChecker
}

func NewRBACAuthorization(checker *PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		checker:     checker,
	}
}

// RequireAdmin lets only ADMIN actors through.
func (ra *RBACAuthorization) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := internal.ActorFromContext(r.Context())
		if !ok {
			ra.Logger.Warn("authorization check failed: actor not found in context")
			ra.WriteAppError(w, internal.ErrInvalidToken)
			return
		}

		if !ra.checker.CanManageUsers(actor) {
			ra.Logger.WarnContext(r.Context(), "access denied: admin role required",
				"user_id", actor.UserID,
				"role", actor.Role)
			ra.WriteAppError(w, internal.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
