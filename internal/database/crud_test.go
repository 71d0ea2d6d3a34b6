package database

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardeals/internal/listing"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=password dbname=cardeals port=5432 sslmode=disable"
	}
	db, err := Connect(dsn)
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}
	require.NoError(t, db.Migrate())
	return db
}

func TestCreateOrUpdateUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Where("telegram_id = ?", 2306944320).Delete(&User{})

	user, err := db.CreateOrUpdateUser(2306944320, "test", "Test User")
	require.NoError(t, err)
	assert.Equal(t, int64(2306944320), user.TelegramID)

	user2, err := db.CreateOrUpdateUser(2306944320, "updated", "Updated User")
	require.NoError(t, err)
	assert.Equal(t, "Updated User", user2.FirstName)
	assert.Equal(t, user.ID, user2.ID, "user id changed after update")
}

func TestGetUserByTelegramID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Where("telegram_id = ?", 777777).Delete(&User{})

	created, err := db.CreateOrUpdateUser(777777, "test2", "Test2 User")
	require.NoError(t, err)

	found, err := db.GetUserByTelegramID(777777)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	notFound, err := db.GetUserByTelegramID(92104231235)
	require.NoError(t, err)
	assert.Nil(t, notFound)
}

func TestSavedSearchLifecycle(t *testing.T) {
	db := setupTestDB(t)

	params := listing.SearchParams{Brand: "Mercedes", Model: "GLC", YearStart: 2019, PriceMax: 70000, EngineType: "diesel"}
	search, err := db.CreateSearch(nil, "", params, 5)
	require.NoError(t, err)
	defer db.DeleteSearch(search.ID)

	assert.NotZero(t, search.ID)
	assert.Equal(t, "Mercedes GLC", search.Name)
	assert.True(t, search.IsActive)
	assert.Equal(t, params, search.Params())

	active, err := db.GetActiveSearches()
	require.NoError(t, err)
	assert.Contains(t, ids(active), search.ID)

	require.NoError(t, db.ToggleSearch(search.ID))
	toggled, err := db.GetSearchByID(search.ID)
	require.NoError(t, err)
	require.NotNil(t, toggled)
	assert.False(t, toggled.IsActive)

	active, err = db.GetActiveSearches()
	require.NoError(t, err)
	assert.NotContains(t, ids(active), search.ID)

	require.NoError(t, db.DeleteSearch(search.ID))
	gone, err := db.GetSearchByID(search.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCreateSearchRejectsInvalidParams(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.CreateSearch(nil, "bad", listing.SearchParams{Brand: "BMW", EngineType: "steam"}, 1)
	assert.Error(t, err)

	_, err = db.CreateSearch(nil, "no brand", listing.SearchParams{Model: "X5"}, 1)
	assert.Error(t, err)
}

func ids(searches []*SavedSearch) []uint {
	out := make([]uint, 0, len(searches))
	for _, s := range searches {
		out = append(out, s.ID)
	}
	return out
}

func TestHashLink(t *testing.T) {
	a := HashLink("https://www.mobile.bg/obiava-1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashLink("https://www.mobile.bg/obiava-1"))
	assert.NotEqual(t, a, HashLink("https://www.mobile.bg/obiava-2"))
}

func TestSavedSearchParamsZeroValues(t *testing.T) {
	s := SavedSearch{Brand: "BMW", MaxPages: 3, CreatedAt: time.Now()}
	assert.Equal(t, listing.SearchParams{Brand: "BMW"}, s.Params())
}
