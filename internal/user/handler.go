package user

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateUser(ctx context.Context, dto CreateUserDTO) (Response, error)
	EditUser(ctx context.Context, u *User, dto EditUserDTO) (Response, error)
	DeleteUser(ctx context.Context, u *User) (Response, error)
	VerifyUser(ctx context.Context, u *User) (Response, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetAllUsers(ctx context.Context) ([]*User, error)
	SearchUsers(ctx context.Context, text string) ([]*User, error)
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

// ListUsers handles GET /users?q=
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var (
		users []*User
		err   error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		users, err = h.Service.SearchUsers(r.Context(), q)
	} else {
		users, err = h.Service.GetAllUsers(r.Context())
	}
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponses(users))
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	resp, err := h.Service.CreateUser(r.Context(), dto)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusCreated, resp.Success, resp.Message)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, u.ToResponse())
}

// EditUser handles PUT /users/{id}
func (h *Handler) EditUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	var dto EditUserDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	resp, err := h.Service.EditUser(r.Context(), u, dto)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusOK, resp.Success, resp.Message)
}

// DeleteUser handles DELETE /users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	if actor, found := internal.ActorFromContext(r.Context()); found && actor.UserID == u.ID {
		h.WriteAppError(w, internal.NewForbiddenError("cannot delete the signed-in user", internal.ErrCodeForbidden))
		return
	}
	resp, err := h.Service.DeleteUser(r.Context(), u)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusOK, resp.Success, resp.Message)
}

// VerifyUser handles POST /users/{id}/verify
func (h *Handler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	resp, err := h.Service.VerifyUser(r.Context(), u)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusOK, resp.Success, resp.Message)
}

func (h *Handler) loadUser(w http.ResponseWriter, r *http.Request) (*User, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteAppError(w, internal.NewValidationFieldError("id", "invalid user id", internal.ErrCodeInvalidRequest))
		return nil, false
	}
	u, err := h.Service.GetUserByID(r.Context(), id)
	if err != nil {
		h.WriteFailure(w, err)
		return nil, false
	}
	if u == nil {
		h.WriteAppError(w, internal.NewNotFoundError(MsgUserNotFound, internal.ErrCodeUserNotFound))
		return nil, false
	}
	return u, true
}
