package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cardeals/internal/listing"
	"cardeals/internal/utils"
)

// CarUpsert is one write of a listing snapshot.
type CarUpsert struct {
	Link      string
	SearchURL string
	Data      []byte
	Status    string
	// CreatedDate overwrites the stored value when set.
	CreatedDate string
	SeenAt      time.Time
}

// UpsertCar inserts or refreshes a listing. An existing row keeps its
// created_date unless the write supplies one; a new row without one records
// the time it was first seen.
func (db *DB) UpsertCar(u CarUpsert) error {
	if u.Status == "" {
		u.Status = StatusActive
	}
	created := u.CreatedDate
	if created == "" {
		created = utils.FormatTimestamp(u.SeenAt)
	}

	car := Car{
		ID:          HashLink(u.Link),
		Link:        u.Link,
		SearchURL:   u.SearchURL,
		Data:        string(u.Data),
		Status:      u.Status,
		LastSeen:    u.SeenAt,
		CreatedDate: &created,
	}

	updates := map[string]interface{}{
		"data":       gorm.Expr("excluded.data"),
		"status":     gorm.Expr("excluded.status"),
		"last_seen":  gorm.Expr("excluded.last_seen"),
		"search_url": gorm.Expr("excluded.search_url"),
	}
	if u.Status == StatusActive {
		updates["removed_date"] = nil
	}
	if u.CreatedDate != "" {
		updates["created_date"] = gorm.Expr("excluded.created_date")
	} else {
		updates["created_date"] = gorm.Expr("COALESCE(cars.created_date, excluded.created_date)")
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&car).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", u.Link, err)
	}
	return nil
}

// MarkRemoved flips a listing to removed without touching its payload.
func (db *DB) MarkRemoved(link string, at time.Time) error {
	return db.Model(&Car{}).
		Where("id = ?", HashLink(link)).
		Updates(map[string]interface{}{
			"status":       StatusRemoved,
			"last_seen":    at,
			"removed_date": at,
		}).Error
}

type SyncStats struct {
	Upserted int
	Removed  int
	// New holds the records the store had never seen.
	New []listing.Record
}

// SyncCrawl stores the records of one crawl and marks removed the active
// rows of the same search that the crawl did not see.
func (db *DB) SyncCrawl(searchURL string, records []listing.Record, at time.Time) (SyncStats, error) {
	var stats SyncStats

	err := db.Transaction(func(tx *gorm.DB) error {
		store := &DB{tx}

		known, err := store.KnownLinks("")
		if err != nil {
			return err
		}

		seen := make(map[string]bool, len(records))
		for _, r := range records {
			if r.ListingURL == "" {
				continue
			}
			payload, err := r.Payload()
			if err != nil {
				return fmt.Errorf("encode %s: %w", r.ListingURL, err)
			}
			err = store.UpsertCar(CarUpsert{
				Link:        r.ListingURL,
				SearchURL:   searchURL,
				Data:        payload,
				Status:      StatusActive,
				CreatedDate: r.CreatedDate,
				SeenAt:      at,
			})
			if err != nil {
				return err
			}
			seen[r.ListingURL] = true
			stats.Upserted++
			if !known[r.ListingURL] {
				stats.New = append(stats.New, r)
			}
		}

		var active []string
		err = tx.Model(&Car{}).
			Where("search_url = ? AND status = ?", searchURL, StatusActive).
			Pluck("link", &active).Error
		if err != nil {
			return fmt.Errorf("list active links: %w", err)
		}
		for _, link := range active {
			if seen[link] {
				continue
			}
			if err := store.MarkRemoved(link, at); err != nil {
				return fmt.Errorf("mark removed %s: %w", link, err)
			}
			stats.Removed++
		}
		return nil
	})

	return stats, err
}

// KnownLinks returns the stored links of a search, or of every search when
// searchURL is empty.
func (db *DB) KnownLinks(searchURL string) (map[string]bool, error) {
	q := db.Model(&Car{})
	if searchURL != "" {
		q = q.Where("search_url = ?", searchURL)
	}

	var links []string
	if err := q.Pluck("link", &links).Error; err != nil {
		return nil, fmt.Errorf("known links: %w", err)
	}

	known := make(map[string]bool, len(links))
	for _, link := range links {
		known[link] = true
	}
	return known, nil
}

func (db *DB) GetAllCars() ([]Car, error) {
	var cars []Car
	err := db.Order("last_seen desc, link").Find(&cars).Error
	return cars, err
}

func (db *DB) GetCar(link string) (*Car, error) {
	var car Car
	err := db.Where("id = ?", HashLink(link)).Limit(1).Find(&car).Error
	if err != nil || car.ID == "" {
		return nil, err
	}
	return &car, nil
}

func (db *DB) ClearCars() error {
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Car{}).Error
}
