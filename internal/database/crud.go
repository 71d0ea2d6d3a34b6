package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cardeals/internal/listing"
)

func (db *DB) CreateOrUpdateUser(telegramID int64, username, firstName string) (*User, error) {
	user := &User{}

	result := db.Where("telegram_id = ?", telegramID).First(user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		user = &User{
			TelegramID: telegramID,
			Username:   username,
			FirstName:  firstName,
		}
		err := db.Create(user).Error
		return user, err
	}
	if result.Error != nil {
		return nil, result.Error
	}

	user.Username = username
	user.FirstName = firstName
	err := db.Save(user).Error
	return user, err
}

func (db *DB) GetUserByTelegramID(telegramID int64) (*User, error) {
	var user User
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return &user, err
}

func (db *DB) GetUserByID(id uint) (*User, error) {
	var user User
	err := db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// GetSubscribers returns every chat that has talked to the bot.
func (db *DB) GetSubscribers() ([]*User, error) {
	var users []*User
	err := db.Order("created_at").Find(&users).Error
	return users, err
}

func (db *DB) CreateSearch(userID *uint, name string, params listing.SearchParams, maxPages int) (*SavedSearch, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Brand == "" {
		return nil, errors.New("saved search needs a brand")
	}
	if name == "" {
		name = params.Brand
		if params.Model != "" {
			name += " " + params.Model
		}
	}

	search := &SavedSearch{
		UserID:      userID,
		Name:        name,
		Brand:       params.Brand,
		Model:       params.Model,
		YearStart:   params.YearStart,
		PriceMax:    params.PriceMax,
		KmMax:       params.KmMax,
		EngineType:  params.EngineType,
		GearboxType: params.GearboxType,
		MaxPages:    maxPages,
		IsActive:    true,
	}

	if err := db.Create(search).Error; err != nil {
		return nil, fmt.Errorf("create search %q: %w", name, err)
	}
	return search, nil
}

func (db *DB) ListSearches() ([]*SavedSearch, error) {
	var searches []*SavedSearch
	err := db.Order("created_at desc").Find(&searches).Error
	return searches, err
}

func (db *DB) GetUserSearches(userID uint) ([]*SavedSearch, error) {
	var searches []*SavedSearch
	err := db.Where("user_id = ?", userID).Order("created_at desc").Find(&searches).Error
	return searches, err
}

func (db *DB) GetSearchByID(searchID uint) (*SavedSearch, error) {
	var search SavedSearch
	err := db.First(&search, searchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &search, err
}

func (db *DB) DeleteSearch(searchID uint) error {
	return db.Delete(&SavedSearch{}, searchID).Error
}

func (db *DB) ToggleSearch(searchID uint) error {
	return db.Model(&SavedSearch{}).
		Where("id = ?", searchID).
		Update("is_active", gorm.Expr("NOT is_active")).Error
}

func (db *DB) GetActiveSearches() ([]*SavedSearch, error) {
	var searches []*SavedSearch
	err := db.Where("is_active = ?", true).Order("id").Find(&searches).Error
	return searches, err
}
