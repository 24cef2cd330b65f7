// internal/domain/product/entity.go
package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// Product represents a catalog item with its on-hand stock
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null;size:255;index" json:"name"`
	Category  string          `gorm:"not null;size:100;index" json:"category"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Unit      string          `gorm:"size:50" json:"unit"`
	Image     string          `gorm:"size:500" json:"image"`
	Stock     int             `gorm:"not null;default:100;check:stock >= 0" json:"stock"`
	Verified  bool            `gorm:"default:false" json:"verified"`
	BrandID   *uint           `gorm:"index" json:"brand_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Brand *Brand `gorm:"foreignKey:BrandID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"brand,omitempty"`
}

// Brand groups products sold under one label
type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Logo      string    `gorm:"size:500" json:"logo"`
	Category  string    `gorm:"size:100" json:"category"`
	Verified  bool      `gorm:"default:false" json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// TableName overrides the table name
func (Brand) TableName() string {
	return "brands"
}

// InStock reports whether qty units can be sold from current stock
func (p *Product) InStock(qty int) bool {
	return qty > 0 && p.Stock >= qty
}
