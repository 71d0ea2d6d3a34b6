package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cardeals/internal/listing"
)

const (
	StatusActive  = "active"
	StatusRemoved = "removed"
)

// User is a Telegram chat subscribed to new listing notifications.
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TelegramID int64     `json:"telegram_id" gorm:"uniqueIndex;not null"`
	Username   string    `json:"username" gorm:"size:50"`
	FirstName  string    `json:"first_name" gorm:"size:100"`
	CreatedAt  time.Time `json:"created_at"`

	Searches []SavedSearch `json:"searches" gorm:"foreignKey:UserID"`
}

// SavedSearch is a search the scrape service runs on every tick.
type SavedSearch struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      *uint     `json:"user_id,omitempty" gorm:"index"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Brand       string    `json:"brand" gorm:"size:50;not null"`
	Model       string    `json:"model" gorm:"size:50"`
	YearStart   int       `json:"year_start" gorm:"default:0"`
	PriceMax    int       `json:"price_max" gorm:"default:0"`
	KmMax       int       `json:"km_max" gorm:"default:0"`
	EngineType  string    `json:"engine_type" gorm:"size:20"`
	GearboxType string    `json:"gearbox_type" gorm:"size:20"`
	MaxPages    int       `json:"max_pages" gorm:"default:10"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s SavedSearch) Params() listing.SearchParams {
	return listing.SearchParams{
		Brand:       s.Brand,
		Model:       s.Model,
		YearStart:   s.YearStart,
		PriceMax:    s.PriceMax,
		KmMax:       s.KmMax,
		EngineType:  s.EngineType,
		GearboxType: s.GearboxType,
	}
}

// Car is the stored snapshot of one listing. Data holds the record payload;
// the remaining columns are owned by the store.
type Car struct {
	ID          string     `json:"id" gorm:"primaryKey;size:64"`
	Link        string     `json:"link" gorm:"not null"`
	SearchURL   string     `json:"search_url" gorm:"index"`
	Data        string     `json:"data" gorm:"type:text;not null"`
	Status      string     `json:"status" gorm:"size:16;not null;default:active;index"`
	LastSeen    time.Time  `json:"last_seen"`
	RemovedDate *time.Time `json:"removed_date"`
	// Resolved dates come with minute or day precision, so the value is
	// kept as the canonical string.
	CreatedDate *string `json:"created_date" gorm:"size:32"`
}

// HashLink is the store identity of a listing URL.
func HashLink(link string) string {
	sum := sha256.Sum256([]byte(link))
	return hex.EncodeToString(sum[:])
}

type DB struct {
	*gorm.DB
}

func Connect(dsn string) (*DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Migrate() error {
	if err := db.AutoMigrate(&User{}, &SavedSearch{}, &Car{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
