package postgres

import (
	"context"
	"errors"
	"fmt"

	inventoryDatamodel "github.com/frahmantamala/store-management/internal/core/datamodel/inventory"
	"github.com/frahmantamala/store-management/internal/database"
	"github.com/frahmantamala/store-management/internal/inventory"
	"gorm.io/gorm"
)

type InventoryRepository struct {
	db   *gorm.DB
	exec database.Runner
}

func NewInventoryRepository(db *gorm.DB, exec database.Runner) *InventoryRepository {
	return &InventoryRepository{db: db, exec: exec}
}

func (r *InventoryRepository) EnsureSchema(ctx context.Context) error {
	return r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).AutoMigrate(&inventoryDatamodel.Inventory{}, &inventoryDatamodel.InventoryItem{})
	})
}

// Create stores the inventory row and its initial items in one transaction
// and returns what was stored.
func (r *InventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) (*inventory.Inventory, error) {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			row := &inventoryDatamodel.Inventory{StoreID: inv.StoreID}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			for _, item := range inv.Items {
				itemRow := inventory.ItemToDataModel(row.ID, item)
				itemRow.ID = 0
				if err := tx.Create(itemRow).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("insert inventory for store %d: %w", inv.StoreID, err)
	}
	return r.GetByStoreID(ctx, inv.StoreID)
}

func (r *InventoryRepository) GetByStoreID(ctx context.Context, storeID int64) (*inventory.Inventory, error) {
	db := r.db.WithContext(ctx)

	var row inventoryDatamodel.Inventory
	if err := db.Where("store_id = ?", storeID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("select inventory for store %d: %w", storeID, err)
	}

	var items []inventoryDatamodel.InventoryItem
	if err := db.Where("inventory_id = ?", row.ID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("select items of inventory %d: %w", row.ID, err)
	}
	return inventory.FromDataModel(&row, items), nil
}

// Update writes every item row of inv.
func (r *InventoryRepository) Update(ctx context.Context, inv *inventory.Inventory) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, item := range inv.Items {
				if err := updateItem(tx, inv.ID, item); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("update inventory %d: %w", inv.ID, err)
	}
	return nil
}

// Delete removes the items first, then the inventory row.
func (r *InventoryRepository) Delete(ctx context.Context, inv *inventory.Inventory) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("inventory_id = ?", inv.ID).Delete(&inventoryDatamodel.InventoryItem{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", inv.ID).Delete(&inventoryDatamodel.Inventory{}).Error
		})
	})
	if err != nil {
		return fmt.Errorf("delete inventory %d: %w", inv.ID, err)
	}
	return nil
}

// AddItem inserts item into inv and sets item.ID on success.
func (r *InventoryRepository) AddItem(ctx context.Context, inv *inventory.Inventory, item *inventory.Item) error {
	row := inventory.ItemToDataModel(inv.ID, item)
	row.ID = 0
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(row).Error
	})
	if err != nil {
		return fmt.Errorf("insert item %q into inventory %d: %w", item.Name, inv.ID, err)
	}
	item.ID = row.ID
	return nil
}

func (r *InventoryRepository) UpdateItem(ctx context.Context, inv *inventory.Inventory, item *inventory.Item) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return updateItem(r.db.WithContext(ctx), inv.ID, item)
	})
	if err != nil {
		return fmt.Errorf("update item %d of inventory %d: %w", item.ID, inv.ID, err)
	}
	return nil
}

func (r *InventoryRepository) DeleteItem(ctx context.Context, inv *inventory.Inventory, item *inventory.Item) error {
	err := r.exec.Do(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("inventory_id = ? AND id = ?", inv.ID, item.ID).
			Delete(&inventoryDatamodel.InventoryItem{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete item %d of inventory %d: %w", item.ID, inv.ID, err)
	}
	return nil
}

func updateItem(db *gorm.DB, inventoryID int64, item *inventory.Item) error {
	return db.Model(&inventoryDatamodel.InventoryItem{}).
		Where("inventory_id = ? AND id = ?", inventoryID, item.ID).
		Updates(map[string]any{
			"name":     item.Name,
			"price":    item.Price,
			"quantity": item.Quantity,
		}).Error
}
