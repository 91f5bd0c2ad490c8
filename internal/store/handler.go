package store

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/store-management/internal"
	"github.com/frahmantamala/store-management/internal/inventory"
	"github.com/frahmantamala/store-management/internal/transport"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateStore(ctx context.Context, name string) (Response, error)
	DeleteStore(ctx context.Context, st *Store) (Response, error)
	GetStore(ctx context.Context, name string) (*Store, error)
	GetAllStores(ctx context.Context) ([]*Store, error)
	SearchStores(ctx context.Context, text string) ([]*Store, error)
	GetEmployees(ctx context.Context, st *Store) ([]*user.User, error)
	AddEmployee(ctx context.Context, st *Store, email string) (Response, error)
	RemoveEmployee(ctx context.Context, st *Store, u *user.User) (Response, error)
	GetInventory(ctx context.Context, st *Store) (*inventory.Inventory, error)
	CreateInventoryItem(ctx context.Context, st *Store, name string, price, quantity int64) (Response, error)
	UpdateInventoryItem(ctx context.Context, st *Store, item *inventory.Item, quantity int64) (Response, error)
	RemoveInventoryItem(ctx context.Context, st *Store, item *inventory.Item) (Response, error)
	GetEmployeesPermissions(ctx context.Context, st *Store) ([]*user.User, error)
	AddPermission(ctx context.Context, st *Store, u *user.User) (Response, error)
	RemovePermission(ctx context.Context, st *Store, u *user.User) (Response, error)
}

// Authorizer answers per-store access questions for the signed-in actor.
type Authorizer interface {
	CanManageStore(ctx context.Context, actor internal.Actor, st *Store) (bool, error)
	CanViewStore(ctx context.Context, actor internal.Actor, st *Store) (bool, error)
}

type Handler struct {
	*transport.BaseHandler
	Service    ServiceAPI
	Users      UserFinder
	Authorizer Authorizer
}

func NewHandler(svc ServiceAPI, users UserFinder, authorizer Authorizer, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Users:       users,
		Authorizer:  authorizer,
	}
}

// ListStores handles GET /stores?q=
func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	var (
		stores []*Store
		err    error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		stores, err = h.Service.SearchStores(r.Context(), q)
	} else {
		stores, err = h.Service.GetAllStores(r.Context())
	}
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToResponses(stores))
}

// CreateStore handles POST /stores
func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var dto CreateStoreDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	resp, err := h.Service.CreateStore(r.Context(), dto.Name)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusCreated, resp.Success, resp.Message)
}

// GetStore handles GET /stores/{name}
func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	st, ok := h.authorize(w, r, false)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, st.ToResponse())
}

// DeleteStore handles DELETE /stores/{name}
func (h *Handler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStore(w, r)
	if !ok {
		return
	}
	resp, err := h.Service.DeleteStore(r.Context(), st)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusOK, resp.Success, resp.Message)
}

// ListEmployees handles GET /stores/{name}/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	st, ok := h.authorize(w, r, false)
	if !ok {
		return
	}
	employees, err := h.Service.GetEmployees(r.Context(), st)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user.ToResponses(employees))
}

// AddEmployee handles POST /stores/{name}/employees
func (h *Handler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	st, ok := h.authorize(w, r, true)
	if !ok {
		return
	}
	var dto EmployeeDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	resp, err := h.Service.AddEmployee(r.Context(), st, dto.Email)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusCreated, resp.Success, resp.Message)
}

// RemoveEmployee handles DELETE /stores/{name}/employees/{email}
func (h *Handler) RemoveEmployee(w http.ResponseWriter, r *http.Request) {
	st, ok := h.authorize(w, r, true)
	if !ok {
		return
	}
	resp, err := h.Service.RemoveEmployee(r.Context(), st, &user.User{Email: chi.URLParam(r, "email")})
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusOK, resp.Success, resp.Message)
}

// GetInventory handles GET /stores/{name}/inventory
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	st, ok := h.authorize(w, r, false)
	if !ok {
		return
	}
	inv, err := h.Service.GetInventory(r.Context(), st)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	if inv == nil {
		h.WriteAppError(w, internal.NewNotFoundError(MsgInventoryNotFound, internal.ErrCodeNotFound))
		return
	}
	h.WriteJSON(w, http.StatusOK, inv.ToResponse())
}

// CreateItem handles POST /stores/{name}/inventory/items
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	st, ok := h.authorize(w, r, true)
	if !ok {
		return
	}
	var dto CreateItemDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	resp, err := h.Service.CreateInventoryItem(r.Context(), st, dto.Name, dto.Price, dto.Quantity)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusCreated, resp.Success, resp.Message)
}

// UpdateItem handles PATCH /stores/{name}/inventory/items/{item}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	st, ok := h.authorize(w, r, true)
	if !ok {
		return
	}
	var dto UpdateItemDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	item := &inventory.Item{Name: chi.URLParam(r, "item")}
	resp, err := h.Service.UpdateInventoryItem(r.Context(), st, item, dto.Quantity)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusOK, resp.Success, resp.Message)
}

// DeleteItem handles DELETE /stores/{name}/inventory/items/{item}
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	st, ok := h.authorize(w, r, true)
	if !ok {
		return
	}
	item := &inventory.Item{Name: chi.URLParam(r, "item")}
	resp, err := h.Service.RemoveInventoryItem(r.Context(), st, item)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusOK, resp.Success, resp.Message)
}

// ListPermissions handles GET /stores/{name}/permissions
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStore(w, r)
	if !ok {
		return
	}
	holders, err := h.Service.GetEmployeesPermissions(r.Context(), st)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user.ToResponses(holders))
}

// GrantPermission handles POST /stores/{name}/permissions
func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStore(w, r)
	if !ok {
		return
	}
	var dto PermissionDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	resp, err := h.Service.AddPermission(r.Context(), st, &user.User{ID: dto.UserID})
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusCreated, resp.Success, resp.Message)
}

// RevokePermission handles DELETE /stores/{name}/permissions/{email}
func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadStore(w, r)
	if !ok {
		return
	}
	u, err := h.Users.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	if u == nil {
		h.WriteAppError(w, internal.RejectionError(MsgUserNotFound))
		return
	}
	resp, err := h.Service.RemovePermission(r.Context(), st, u)
	if err != nil {
		h.WriteFailure(w, err)
		return
	}
	h.WriteOutcome(w, http.StatusOK, resp.Success, resp.Message)
}

func (h *Handler) loadStore(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	st, err := h.Service.GetStore(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.WriteFailure(w, err)
		return nil, false
	}
	if st == nil {
		h.WriteAppError(w, internal.RejectionError(MsgStoreNotFound))
		return nil, false
	}
	return st, true
}

// authorize loads the store named in the path and checks that the actor may
// view it, or manage it when manage is set.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, manage bool) (*Store, bool) {
	actor, found := internal.ActorFromContext(r.Context())
	if !found {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return nil, false
	}
	st, ok := h.loadStore(w, r)
	if !ok {
		return nil, false
	}

	check := h.Authorizer.CanViewStore
	if manage {
		check = h.Authorizer.CanManageStore
	}
	allowed, err := check(r.Context(), actor, st)
	if err != nil {
		h.WriteFailure(w, err)
		return nil, false
	}
	if !allowed {
		h.Logger.WarnContext(r.Context(), "access denied to store", "user_id", actor.UserID, "store", st.Name, "manage", manage)
		h.WriteAppError(w, internal.ErrForbidden)
		return nil, false
	}
	return st, true
}
