package users

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string `gorm:"type:char(36);primaryKey"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string `gorm:"type:varchar(255);not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Role         string `gorm:"type:varchar(16);not null;default:'customer'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
