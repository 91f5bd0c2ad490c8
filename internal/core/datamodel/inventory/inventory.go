package inventory

type Inventory struct {
	ID      int64 `gorm:"primaryKey"`
	StoreID int64 `gorm:"column:store_id;not null;uniqueIndex"`
}

func (Inventory) TableName() string {
	return "inventory"
}

type InventoryItem struct {
	ID          int64  `gorm:"primaryKey"`
	InventoryID int64  `gorm:"column:inventory_id;not null;uniqueIndex:idx_inventory_items_name"`
	Name        string `gorm:"column:name;type:varchar(255);not null;uniqueIndex:idx_inventory_items_name"`
	Price       int64  `gorm:"column:price;not null"`
	Quantity    int64  `gorm:"column:quantity;not null"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
