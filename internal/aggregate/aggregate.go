// Package aggregate computes cross-club summaries: the lowest price per
// fuel type across a batch of results, and trend statistics over the
// stored history. Sentinel rows and unparseable prices are skipped, never
// errors.
package aggregate

import (
	"strconv"
	"strings"

	"github.com/sells-group/fuelwatch-cli/internal/model"
)

// Lowest is the minimum observed price for a fuel type and where it was
// seen.
type Lowest struct {
	Price   float64 `json:"price"`
	Club    string  `json:"club"`
	Address string  `json:"address"`
}

// Trend holds per-fuel-type statistics over a history window.
type Trend struct {
	Current    float64 `json:"current"`
	Lowest     float64 `json:"lowest"`
	Highest    float64 `json:"highest"`
	Average    float64 `json:"average"`
	DataPoints int     `json:"data_points"`
}

// ParsePrice converts a scraped price string to a number, tolerating a
// currency prefix and thousands separators. The second return is false for
// anything that is not price-shaped.
func ParsePrice(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// LowestByFuelType scans all non-sentinel rows across the batch and keeps
// the numeric minimum per fuel type with its source club. Ties keep the
// first minimum encountered, stable by input order.
func LowestByFuelType(results []model.ClubResult) map[string]Lowest {
	lowest := make(map[string]Lowest)
	for _, r := range results {
		for _, p := range r.Prices {
			if model.IsSentinel(p.FuelType) {
				continue
			}
			value, ok := ParsePrice(p.Price)
			if !ok {
				continue
			}
			current, seen := lowest[p.FuelType]
			if !seen || value < current.Price {
				lowest[p.FuelType] = Lowest{
					Price:   value,
					Club:    r.Club.Name,
					Address: r.Address,
				}
			}
		}
	}
	return lowest
}

// TrendStats computes per-fuel-type statistics over a newest-first history
// window. Current is the newest parseable value for each fuel type.
func TrendStats(records []model.PriceRecord) map[string]Trend {
	type acc struct {
		current float64
		lowest  float64
		highest float64
		sum     float64
		count   int
	}

	accs := make(map[string]*acc)
	for _, rec := range records {
		if model.IsSentinel(rec.FuelType) {
			continue
		}
		value, ok := ParsePrice(rec.Price)
		if !ok {
			continue
		}
		a, seen := accs[rec.FuelType]
		if !seen {
			a = &acc{current: value, lowest: value, highest: value}
			accs[rec.FuelType] = a
		}
		if value < a.lowest {
			a.lowest = value
		}
		if value > a.highest {
			a.highest = value
		}
		a.sum += value
		a.count++
	}

	trends := make(map[string]Trend, len(accs))
	for fuelType, a := range accs {
		trends[fuelType] = Trend{
			Current:    a.current,
			Lowest:     a.lowest,
			Highest:    a.highest,
			Average:    a.sum / float64(a.count),
			DataPoints: a.count,
		}
	}
	return trends
}

// Flatten expands per-club results into one row per price for export and
// reporting. A club with no rows still yields a single placeholder row.
func Flatten(results []model.ClubResult) []model.FlatRow {
	var rows []model.FlatRow
	for _, r := range results {
		if len(r.Prices) == 0 {
			rows = append(rows, model.FlatRow{
				ClubName: r.Club.Name,
				Address:  r.Address,
				ClubURL:  r.Club.URL,
				FuelURL:  r.FuelURL,
				FuelType: "N/A",
				Price:    "N/A",
			})
			continue
		}
		for _, p := range r.Prices {
			rows = append(rows, model.FlatRow{
				ClubName: r.Club.Name,
				Address:  r.Address,
				ClubURL:  r.Club.URL,
				FuelURL:  r.FuelURL,
				FuelType: p.FuelType,
				Price:    p.Price,
			})
		}
	}
	return rows
}
