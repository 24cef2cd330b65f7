// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"log"

	"github.com/freshbasket/storefront/internal/domain/cart"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/freshbasket/storefront/internal/domain/user"
	"github.com/freshbasket/storefront/internal/pkg/auth"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db        *gorm.DB
	passwords *auth.PasswordManager
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, passwords *auth.PasswordManager) *Migration {
	return &Migration{
		db:        db,
		passwords: passwords,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Dependency order
	models := []interface{}{
		&user.User{},
		&user.Address{},

		&product.Brand{},
		&product.Product{},

		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates indexes the struct tags cannot express
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_category_name ON products(category, name)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_created ON cart_items(user_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_date ON orders(user_id, order_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_date ON orders(status, order_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_unreconciled ON orders(created_at) WHERE cart_cleared = false OR ranking_recorded = false",
		"CREATE INDEX IF NOT EXISTS idx_order_status_histories_order_created ON order_status_histories(order_id, created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts development users, addresses and products
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedUser("admin@freshbasket.dev", "Admin User", "admin12345", user.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	customer := "shopper@freshbasket.dev"
	if err := m.seedUser(customer, "Test Shopper", "shopper12345", user.RoleCustomer); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}

	if err := m.seedAddress(customer); err != nil {
		return fmt.Errorf("failed to seed address: %w", err)
	}

	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedUser(email, name, password, role string) error {
	var existing user.User
	err := m.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Printf("⏭️ User already exists: %s", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := m.passwords.HashPassword(password)
	if err != nil {
		return err
	}

	u := user.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}
	if err := m.db.Create(&u).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %s user: %s (password: %s)", role, email, password)
	return nil
}

func (m *Migration) seedAddress(email string) error {
	var u user.User
	if err := m.db.Where("email = ?", email).First(&u).Error; err != nil {
		return err
	}

	var count int64
	if err := m.db.Model(&user.Address{}).Where("user_id = ?", u.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️ Test address already exists")
		return nil
	}

	address := user.Address{
		UserID:     u.ID,
		Street:     "221 Baker Street",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Phone:      "9876543210",
	}
	if err := m.db.Create(&address).Error; err != nil {
		return err
	}

	log.Printf("✅ Created test address with ID: %d", address.ID)
	return nil
}

func (m *Migration) seedProducts() error {
	log.Println("🛍️ Seeding products...")

	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("⏭️ Products already exist")
		return nil
	}

	brand := product.Brand{Name: "Green Valley Farms", Category: "Produce", Verified: true}
	if err := m.db.Create(&brand).Error; err != nil {
		return err
	}

	products := []product.Product{
		{Name: "Alphonso Mangoes", Category: "Fruits", Price: decimal.RequireFromString("349.00"), Unit: "1 dozen", Stock: 40, Verified: true, BrandID: &brand.ID},
		{Name: "Bananas", Category: "Fruits", Price: decimal.RequireFromString("49.00"), Unit: "6 pcs", Stock: 120, Verified: true, BrandID: &brand.ID},
		{Name: "Tomatoes", Category: "Vegetables", Price: decimal.RequireFromString("32.50"), Unit: "1 kg", Stock: 80, BrandID: &brand.ID},
		{Name: "Spinach", Category: "Vegetables", Price: decimal.RequireFromString("25.00"), Unit: "250 g", Stock: 60},
		{Name: "Toned Milk", Category: "Dairy", Price: decimal.RequireFromString("28.00"), Unit: "500 ml", Stock: 200},
		{Name: "Paneer", Category: "Dairy", Price: decimal.RequireFromString("95.00"), Unit: "200 g", Stock: 50},
		{Name: "Brown Bread", Category: "Bakery", Price: decimal.RequireFromString("55.00"), Unit: "400 g", Stock: 70},
		{Name: "Basmati Rice", Category: "Staples", Price: decimal.RequireFromString("199.00"), Unit: "1 kg", Stock: 100, Verified: true},
	}

	if err := m.db.Create(&products).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d products", len(products))
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"order_status_histories",
		"order_items",
		"orders",
		"cart_items",
		"products",
		"brands",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo logs the row count of every table
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Printf("📈 Total records across all tables: %d", totalRecords)
	return nil
}
