package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/transport"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/frahmantamala/store-management/pkg/logger"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (user.Response, error)
	Login(ctx context.Context, dto LoginDTO) (LoginResponse, error)
	IssueToken(session *Session) (AuthTokens, error)
	Authenticate(ctx context.Context, token string) (*Session, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusCreated, resp.Success, resp.Message)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	if !resp.Success {
		h.WriteAppError(w, internal.RejectionError(resp.Message))
		return
	}

	tokens, err := h.Service.IssueToken(resp.Session)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, LoginResult{
		Message: resp.Message,
		User:    resp.Session.User.ToResponse(),
		Tokens:  tokens,
	})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}
	h.WriteJSON(w, http.StatusOK, session.User.ToResponse())
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		session, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				h.WriteAppError(w, internal.ErrTokenExpired)
			case errors.Is(err, ErrInvalidToken):
				h.WriteAppError(w, internal.ErrInvalidToken)
			case errors.Is(err, ErrUserNotVerified):
				h.WriteAppError(w, internal.RejectionError(MsgUserNotVerified))
			default:
				h.WriteFailure(w, err)
			}
			return
		}

		actor := session.Actor()
		ctx := internal.ContextWithActor(r.Context(), actor)
		ctx = context.WithValue(ctx, sessionKey, session)
		ctx = logger.With(ctx, "user_id", actor.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ctxKey string

const sessionKey ctxKey = "session"

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
