// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Roles
const (
	RoleCustomer       = "CUSTOMER"
	RoleProductManager = "PRODUCT_MANAGER"
	RoleAdmin          = "ADMIN"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAddressNotFound = errors.New("address not found")
)

// User represents the user entity
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string         `gorm:"not null;size:255" json:"-"`
	Role      string         `gorm:"not null;size:30;default:'CUSTOMER'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"addresses,omitempty"`
}

// Address is a saved delivery address
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Street     string    `gorm:"size:255;not null" json:"street"`
	City       string    `gorm:"size:100;not null" json:"city"`
	State      string    `gorm:"size:100;not null" json:"state"`
	PostalCode string    `gorm:"size:20;not null" json:"postal_code"`
	Phone      string    `gorm:"size:20" json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return nil
}

// IsStaff reports whether the user may manage orders
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleProductManager
}

// FormatShippingAddress flattens an address into the single line stored on orders
func FormatShippingAddress(a Address) string {
	return a.Street + ", " + a.City + ", " + a.State + " - " + a.PostalCode
}
