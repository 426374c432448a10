package store

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"restaurant-orders-api/models"
)

const testCartTTL = time.Hour

// newTestDB opens a private in-memory database per test. A single
// connection keeps every query on the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Subcategory{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderLine{},
		&models.OrderStatusHistory{},
		&models.Reservation{},
		&models.ReservationStatusHistory{},
		&models.AdminUser{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedCatalog inserts one category with two priced products:
// A at S/10.00 and B at S/15.00.
func seedCatalog(t *testing.T, db *gorm.DB) (models.Product, models.Product) {
	t.Helper()
	cat := models.Category{Name: "Platos de Fondo"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	a := models.Product{Name: "Lomo Saltado", PriceCents: 1000, CategoryID: cat.ID, IsAvailable: true}
	b := models.Product{Name: "Aji de Gallina", PriceCents: 1500, CategoryID: cat.ID, IsAvailable: true}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed product A: %v", err)
	}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("seed product B: %v", err)
	}
	return a, b
}

func newCartStore(db *gorm.DB) *CartStore {
	return &CartStore{DB: db, TaxRateBP: 1800, MaxQty: 20, TTL: testCartTTL}
}

func newOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{DB: db, Cache: &Cache{}, TaxRateBP: 1800}
}

func newReservationStore(db *gorm.DB) *ReservationStore {
	return &ReservationStore{
		DB:            db,
		OpenHourSlots: []string{"12:00", "13:00", "14:00", "19:00", "20:00", "21:00"},
		MaxPartySize:  12,
	}
}
