// Package dbtest builds sqlite-backed databases and fixtures for service tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/db/models"
	"github.com/nithishdpnpjnthech-cmyk/pet-co/pkg/enums"
)

// Open returns a client over a private in-memory database with the full
// schema migrated. The pool is pinned to one connection so transactions
// and plain reads never contend for sqlite locks.
func Open(t testing.TB) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:petco_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db.Wrap(conn)
}

// MustUser inserts an active customer with the given email.
func MustUser(t testing.TB, conn *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		Name:         "Test Customer",
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// MustAdmin inserts an admin account.
func MustAdmin(t testing.TB, conn *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		Name:         "Admin",
		PasswordHash: "hash",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return user
}

// MustAddress inserts an address owned by userID.
func MustAddress(t testing.TB, conn *gorm.DB, userID uuid.UUID) *models.Address {
	t.Helper()
	addr := &models.Address{
		UserID:      userID,
		Name:        "Asha",
		Phone:       "9876543210",
		Street:      "12 MG Road",
		City:        "Bengaluru",
		State:       "Karnataka",
		Pincode:     "560001",
		AddressType: enums.AddressTypeHome,
	}
	if err := conn.Create(addr).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}
	return addr
}

// ProductOption mutates a fixture product before insert.
type ProductOption func(*models.Product)

func WithVariants(variants ...models.Variant) ProductOption {
	return func(p *models.Product) {
		p.Metadata.Variants = variants
		p.SyncStock()
	}
}

func WithCategory(category string) ProductOption {
	return func(p *models.Product) { p.Category = category }
}

// MustProduct inserts an active, in-stock product.
func MustProduct(t testing.TB, conn *gorm.DB, name string, price string, stock int, opts ...ProductOption) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		Category:      "Dog Food",
		Type:          enums.ProductTypeDog,
		StockQuantity: stock,
		InStock:       stock > 0,
		IsActive:      true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := conn.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// MustOrder inserts an order in the given status with one unit of each product.
func MustOrder(t testing.TB, conn *gorm.DB, userID uuid.UUID, status enums.OrderStatus, products ...*models.Product) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:         userID,
		DeliveryOption: enums.DeliveryStandard,
		PaymentMethod:  enums.PaymentMethodCOD,
		Status:         status,
		PaymentStatus:  enums.PaymentStatusUnpaid,
		ShippingFee:    decimal.NewFromInt(50),
	}
	subtotal := decimal.Zero
	for _, p := range products {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    1,
			Price:       p.Price,
		})
		subtotal = subtotal.Add(p.Price)
	}
	order.Subtotal = subtotal
	order.Total = subtotal.Add(order.ShippingFee)
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}
