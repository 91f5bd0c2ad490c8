package inventory

import (
	"context"

	inventoryDatamodel "github.com/frahmantamala/store-management/internal/core/datamodel/inventory"
)

type Item struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

func NewItem(name string, price, quantity int64) *Item {
	return &Item{Name: name, Price: price, Quantity: quantity}
}

// Inventory belongs to exactly one store for the store's whole lifetime.
type Inventory struct {
	ID      int64   `json:"id"`
	StoreID int64   `json:"store_id"`
	Items   []*Item `json:"items"`
}

func New(storeID int64, items ...*Item) *Inventory {
	return &Inventory{StoreID: storeID, Items: items}
}

// FindItem looks an item up by its exact name.
func (inv *Inventory) FindItem(name string) *Item {
	if inv == nil {
		return nil
	}
	for _, item := range inv.Items {
		if item.Name == name {
			return item
		}
	}
	return nil
}

func (inv *Inventory) ToResponse() InventoryResponse {
	items := make([]ItemResponse, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, ItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return InventoryResponse{ID: inv.ID, StoreID: inv.StoreID, Items: items}
}

type InventoryResponse struct {
	ID      int64          `json:"id"`
	StoreID int64          `json:"store_id"`
	Items   []ItemResponse `json:"items"`
}

type ItemResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type RepositoryAPI interface {
	Create(ctx context.Context, inv *Inventory) (*Inventory, error)
	GetByStoreID(ctx context.Context, storeID int64) (*Inventory, error)
	Update(ctx context.Context, inv *Inventory) error
	Delete(ctx context.Context, inv *Inventory) error
	AddItem(ctx context.Context, inv *Inventory, item *Item) error
	UpdateItem(ctx context.Context, inv *Inventory, item *Item) error
	DeleteItem(ctx context.Context, inv *Inventory, item *Item) error
}

func ItemToDataModel(inventoryID int64, item *Item) *inventoryDatamodel.InventoryItem {
	return &inventoryDatamodel.InventoryItem{
		ID:          item.ID,
		InventoryID: inventoryID,
		Name:        item.Name,
		Price:       item.Price,
		Quantity:    item.Quantity,
	}
}

func FromDataModel(inv *inventoryDatamodel.Inventory, items []inventoryDatamodel.InventoryItem) *Inventory {
	out := &Inventory{ID: inv.ID, StoreID: inv.StoreID, Items: make([]*Item, 0, len(items))}
	for _, row := range items {
		out.Items = append(out.Items, &Item{
			ID:       row.ID,
			Name:     row.Name,
			Price:    row.Price,
			Quantity: row.Quantity,
		})
	}
	return out
}
