package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrice(t *testing.T) {
	testCases := []struct {
		text     string
		expected int
	}{
		{"51 500 лв.", 51500},
		{"61900 BGN", 61900},
		{"Цена: 45 000 лв.", 45000},
		{"25000 лв", 25000},
		{"EUR 30000", 30000},
		{"€ 25000", 25000},
		{"89 900 лв.", 89900},
	}

	for _, test := range testCases {
		price := ExtractPrice(test.text)
		require.NotNil(t, price, test.text)
		assert.Equal(t, test.expected, *price, test.text)
	}

	assert.Nil(t, ExtractPrice("no digits"))
	assert.Nil(t, ExtractPrice("По договаряне"))
}

func TestExtractPricePatternOrder(t *testing.T) {
	price := ExtractPrice("€ 12000 / 23 470 лв.")
	require.NotNil(t, price)
	assert.Equal(t, 23470, *price)
}

func TestExtractKilometers(t *testing.T) {
	testCases := []struct {
		text     string
		expected int
	}{
		{"(163 828 км)", 163828},
		{"99 933 km", 99933},
		{"Пробег: 120000 км", 120000},
		{"50000 км", 50000},
		{"2020 г., (39 000 км)", 39000},
	}

	for _, test := range testCases {
		km := ExtractKilometers(test.text)
		require.NotNil(t, km, test.text)
		assert.Equal(t, test.expected, *km, test.text)
	}

	assert.Nil(t, ExtractKilometers("нов автомобил"))
}

func TestParseTitle(t *testing.T) {
	testCases := []struct {
		title string
		brand string
		model string
		year  *int
	}{
		{"Mercedes GLC 220 d 2020", "Mercedes", "GLC 220 d", intPtr(2020)},
		{"BMW X5 xDrive30d", "BMW", "X5 xDrive30d", nil},
		{"Audi A4 Avant 2.0 TDI 2019", "Audi", "A4 Avant 2.0 TDI", intPtr(2019)},
		{"Ford Focus 1.6 TDCI 2018", "Ford", "Focus 1.6 TDCI", intPtr(2018)},
		{"Mercedes-Benz GLC 300 4MATIC-2021", "Mercedes-Benz", "GLC 300 4MATIC", intPtr(2021)},
		{"Audi A6 (2017)", "Audi", "A6", intPtr(2017)},
		{"Peugeot 3008 1.6", "Peugeot", "3008 1.6", nil},
		{"Toyota 2015", "Toyota", UnknownModel, intPtr(2015)},
		{"Toyota", "Toyota", UnknownModel, nil},
	}

	for _, test := range testCases {
		brand, model, year := ParseTitle(test.title)
		assert.Equal(t, test.brand, brand, test.title)
		assert.Equal(t, test.model, model, test.title)
		assert.Equal(t, test.year, year, test.title)
	}
}

func TestParseTitleEmpty(t *testing.T) {
	brand, model, year := ParseTitle("   ")
	assert.Equal(t, UnknownModel, brand)
	assert.Equal(t, UnknownModel, model)
	assert.Nil(t, year)
}

func TestParseTitleIgnoresImplausibleYears(t *testing.T) {
	_, model, year := ParseTitle("Lada 1500 1975")
	assert.Nil(t, year)
	assert.Equal(t, "1500 1975", model)
}

func TestExtractLocation(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{"обл. Бургас 18:36 часа на 26.07", "обл. Бургас"},
		{"София-град", "София-Град"},
		{"Пловдив", "Пловдив"},
		{"гр. Варна", "Варна"},
		{"с. Горна баня, 12:05", "с. Горна баня,"},
		{"  Някъде  ", "Някъде"},
		{"", ""},
	}

	for _, test := range testCases {
		assert.Equal(t, test.expected, ExtractLocation(test.text), test.text)
	}
}

func TestParseAttributesFirstMatchWins(t *testing.T) {
	attrs := ParseAttributes([]string{
		"януари 2020",
		"163 828 км",
		"Черен",
		"Бял",
		"Дизелов",
		"Бензинов",
		"194 к.с.",
		"1998 куб.см",
		"Автоматична",
		"Ръчна",
		"4/5 врати",
		"5 места",
		"2021",
	})

	require.NotNil(t, attrs.Year)
	assert.Equal(t, 2020, *attrs.Year)
	require.NotNil(t, attrs.Kilometers)
	assert.Equal(t, 163828, *attrs.Kilometers)
	assert.Equal(t, "Черен", attrs.Color)
	assert.Equal(t, "Дизелов", attrs.EngineType)
	assert.Equal(t, "194", attrs.EnginePower)
	assert.Equal(t, "1998", attrs.EngineDisplacement)
	assert.Equal(t, "Автоматична", attrs.GearboxType)
	require.NotNil(t, attrs.Doors)
	assert.Equal(t, 45, *attrs.Doors)
	require.NotNil(t, attrs.Seats)
	assert.Equal(t, 5, *attrs.Seats)
}

func TestParseAttributesIndependentFields(t *testing.T) {
	attrs := ParseAttributes([]string{"", "не е известно", "сив"})

	assert.Nil(t, attrs.Year)
	assert.Nil(t, attrs.Kilometers)
	assert.Equal(t, "сив", attrs.Color)
	assert.Empty(t, attrs.EngineType)
}

func TestCountIndicators(t *testing.T) {
	assert.Equal(t, 3, CountIndicators("BMW X5, 45 000 лв., 120 000 км"))
	assert.Equal(t, 0, CountIndicators("Условия за ползване"))
}

func intPtr(v int) *int {
	return &v
}
