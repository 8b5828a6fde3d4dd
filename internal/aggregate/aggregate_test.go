package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fuelwatch-cli/internal/model"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"$2.89", 2.89, true},
		{"2.89", 2.89, true},
		{" $3.45 ", 3.45, true},
		{"$1,234.50", 1234.50, true},
		{"NAN", 0, false},
		{"", 0, false},
		{"$", 0, false},
		{"Timeout", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, ok := ParsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, v, 0.0001)
			}
		})
	}
}

func TestLowestByFuelType(t *testing.T) {
	results := []model.ClubResult{
		{
			Club:    model.Club{Name: "Avondale"},
			Address: "Avondale, AZ",
			Prices: []model.PricePair{
				{FuelType: "Regular", Price: "$2.89"},
				{FuelType: "Premium", Price: "$3.45"},
			},
		},
		{
			Club:    model.Club{Name: "Gilbert"},
			Address: "Gilbert, AZ",
			Prices: []model.PricePair{
				{FuelType: "Regular", Price: "$2.79"},
				{FuelType: "Diesel", Price: "$3.72"},
			},
		},
	}

	lowest := LowestByFuelType(results)
	require.Len(t, lowest, 3)
	assert.Equal(t, Lowest{Price: 2.79, Club: "Gilbert", Address: "Gilbert, AZ"}, lowest["Regular"])
	assert.Equal(t, Lowest{Price: 3.45, Club: "Avondale", Address: "Avondale, AZ"}, lowest["Premium"])
	assert.Equal(t, Lowest{Price: 3.72, Club: "Gilbert", Address: "Gilbert, AZ"}, lowest["Diesel"])
}

func TestLowestByFuelType_TieKeepsFirst(t *testing.T) {
	results := []model.ClubResult{
		{Club: model.Club{Name: "First"}, Prices: []model.PricePair{{FuelType: "Regular", Price: "$2.89"}}},
		{Club: model.Club{Name: "Second"}, Prices: []model.PricePair{{FuelType: "Regular", Price: "$2.89"}}},
	}

	lowest := LowestByFuelType(results)
	assert.Equal(t, "First", lowest["Regular"].Club)
}

func TestLowestByFuelType_SkipsSentinelsAndGarbage(t *testing.T) {
	results := []model.ClubResult{
		{Club: model.Club{Name: "Avondale"}, Prices: []model.PricePair{
			{FuelType: model.NoPricesFound, Price: model.NoValue},
			{FuelType: model.FetchError, Price: "Timeout"},
			{FuelType: "Regular", Price: "not-a-price"},
		}},
	}

	assert.Empty(t, LowestByFuelType(results))
}

func TestTrendStats(t *testing.T) {
	// Newest first, the way the store returns history.
	records := []model.PriceRecord{
		{FuelType: "Regular", Price: "$2.95", ScrapedDate: "2026-08-31"},
		{FuelType: "Regular", Price: "$2.89", ScrapedDate: "2026-08-30"},
		{FuelType: "Regular", Price: "$3.05", ScrapedDate: "2026-08-29"},
		{FuelType: "Premium", Price: "$3.45", ScrapedDate: "2026-08-31"},
	}

	trends := TrendStats(records)
	require.Len(t, trends, 2)

	reg := trends["Regular"]
	assert.InDelta(t, 2.95, reg.Current, 0.0001, "newest row is current")
	assert.InDelta(t, 2.89, reg.Lowest, 0.0001)
	assert.InDelta(t, 3.05, reg.Highest, 0.0001)
	assert.InDelta(t, (2.95+2.89+3.05)/3, reg.Average, 0.0001)
	assert.Equal(t, 3, reg.DataPoints)

	assert.Equal(t, 1, trends["Premium"].DataPoints)
}

func TestTrendStats_SkipsSentinels(t *testing.T) {
	records := []model.PriceRecord{
		{FuelType: model.NoPricesAvailable, Price: model.NoValue},
		{FuelType: model.UnknownFuelType, Price: "$2.99"},
		{FuelType: "Regular", Price: "$2.89"},
	}

	trends := TrendStats(records)
	require.Len(t, trends, 1, "placeholder and unlabeled rows carry no trend signal")
	assert.Equal(t, 1, trends["Regular"].DataPoints)
}

func TestFlatten(t *testing.T) {
	results := []model.ClubResult{
		{
			Club:    model.Club{Name: "Avondale", URL: "club-url"},
			Address: "addr",
			FuelURL: "fuel-url",
			Prices: []model.PricePair{
				{FuelType: "Regular", Price: "$2.89"},
				{FuelType: "Premium", Price: "$3.45"},
			},
		},
		{
			Club:    model.Club{Name: "Gilbert", URL: "club-url-2"},
			Address: "addr-2",
			FuelURL: "No Fuel Center",
		},
	}

	rows := Flatten(results)
	require.Len(t, rows, 3)
	assert.Equal(t, "Avondale", rows[0].ClubName)
	assert.Equal(t, "Regular", rows[0].FuelType)
	assert.Equal(t, "Premium", rows[1].FuelType)

	// Empty club still produces a placeholder row.
	assert.Equal(t, "Gilbert", rows[2].ClubName)
	assert.Equal(t, "N/A", rows[2].FuelType)
	assert.Equal(t, "N/A", rows[2].Price)
}
