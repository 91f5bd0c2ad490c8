package store

type Store struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;type:varchar(255);uniqueIndex;not null"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreEmployee is one employment relation row.
type StoreEmployee struct {
	ID         int64 `gorm:"primaryKey"`
	StoreID    int64 `gorm:"column:store_id;not null;uniqueIndex:idx_stores_employee_pair"`
	EmployeeID int64 `gorm:"column:employee_id;not null;uniqueIndex:idx_stores_employee_pair;index"`
}

func (StoreEmployee) TableName() string {
	return "stores_employee"
}

// UserPermission grants a user management rights on a store. It is
// independent of employment.
type UserPermission struct {
	ID      int64 `gorm:"primaryKey"`
	StoreID int64 `gorm:"column:store_id;not null;uniqueIndex:idx_users_permission_pair"`
	UserID  int64 `gorm:"column:user_id;not null;uniqueIndex:idx_users_permission_pair;index"`
}

func (UserPermission) TableName() string {
	return "users_permission"
}
