package user

type User struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	Role         string `gorm:"column:role;type:varchar(16);not null"`
	IsVerified   bool   `gorm:"column:is_verified;not null"`
}

func (User) TableName() string {
	return "users"
}
