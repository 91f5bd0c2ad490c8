package store

import (
	"github.com/frahmantamala/store-management/internal/inventory"
	"github.com/frahmantamala/store-management/internal/user"
)

const (
	MsgStoreNameEmpty      = "Store name is empty"
	MsgStoreExists         = "Store already exists"
	MsgStoreCreated        = "Store created"
	MsgStoreNotFound       = "Store not found"
	MsgStoreDeleted        = "Store deleted"
	MsgUserNotFound        = "User not found"
	MsgUserAlreadyAdded    = "User already added"
	MsgUserAdded           = "User added"
	MsgUserOrStoreNotFound = "User or store not found"
	MsgUserRemoved         = "User removed"
	MsgPermissionGranted   = "Permission already granted"
	MsgInventoryNotFound   = "Inventory not found"
	MsgItemNameEmpty       = "Item name is empty"
	MsgInvalidPrice        = "Invalid price"
	MsgInvalidQuantity     = "Invalid quantity"
	MsgItemExists          = "Inventory item already exists"
	MsgItemCreated         = "Inventory item created"
	MsgItemNotFound        = "Inventory item not found"
	MsgItemUpdated         = "Inventory item updated"
	MsgItemDeleted         = "Inventory item deleted"
)

// Response is the outcome of a store operation. Expected rejections come
// back here with Success false; only storage failures are returned as errors.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(message string) Response {
	return Response{Success: true, Message: message}
}

func fail(message string) Response {
	return Response{Success: false, Message: message}
}

type CreateStoreDTO struct {
	Name string `json:"name"`
}

type EmployeeDTO struct {
	Email string `json:"email"`
}

type PermissionDTO struct {
	UserID int64 `json:"user_id"`
}

type CreateItemDTO struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type UpdateItemDTO struct {
	Quantity int64 `json:"quantity"`
}

type StoreResponse struct {
	ID        int64                        `json:"id"`
	Name      string                       `json:"name"`
	Employees []user.UserResponse          `json:"employees"`
	Inventory *inventory.InventoryResponse `json:"inventory,omitempty"`
}

type StoresResponse struct {
	Stores []StoreResponse `json:"stores"`
}

func ToResponses(stores []*Store) StoresResponse {
	out := make([]StoreResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, s.ToResponse())
	}
	return StoresResponse{Stores: out}
}
