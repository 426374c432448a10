package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"restaurant-orders-api/models"
)

// Config holds all runtime settings. Values come from the environment with
// defaults so the service boots with nothing but a SQLite file.
type Config struct {
	HTTPAddr     string
	DatabasePath string
	RedisAddr    string // empty disables the Redis fast path
	JWTSecret    []byte
	TokenTTL     time.Duration

	// TaxRateBP is the IGV rate in basis points (1800 = 18%).
	TaxRateBP int64
	// MaxQtyPerLine caps the quantity of a single cart line.
	MaxQtyPerLine int
	// CartTTL is how long an untouched session cart survives.
	CartTTL time.Duration

	// OpenHourSlots are the reservable time slots (24h HH:MM).
	OpenHourSlots []string
	MaxPartySize  int
}

func Load() Config {
	return Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DatabasePath:  getEnv("DATABASE_PATH", "restaurant.db"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		JWTSecret:     []byte(getEnv("JWT_SECRET", "restaurant_orders_secret_2026")),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 12*time.Hour),
		TaxRateBP:     getEnvInt64("TAX_RATE_BP", 1800),
		MaxQtyPerLine: int(getEnvInt64("MAX_QTY_PER_LINE", 20)),
		CartTTL:       getEnvDuration("CART_TTL", 7*24*time.Hour),
		OpenHourSlots: splitCSV(getEnv("OPEN_HOUR_SLOTS", "12:00,13:00,14:00,19:00,20:00,21:00")),
		MaxPartySize:  int(getEnvInt64("MAX_PARTY_SIZE", 12)),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// OpenDB connects to SQLite and migrates every model.
func OpenDB(path string, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
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
		return nil, err
	}
	log.WithField("path", path).Info("database connected and migrated")
	return db, nil
}
