// Package report renders results for the console and writes the flattened
// export files.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sells-group/fuelwatch-cli/internal/aggregate"
	"github.com/sells-group/fuelwatch-cli/internal/model"
	"github.com/sells-group/fuelwatch-cli/internal/store"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// Rows renders the flattened per-club price rows.
func Rows(w io.Writer, rows []model.FlatRow) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Club Name", "Address", "Fuel Type", "Price", "Fuel Center URL"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.ClubName, r.Address, r.FuelType, r.Price, r.FuelURL})
	}
	t.Render()
}

// Lowest renders the lowest price per fuel type, sorted by fuel type for
// stable output.
func Lowest(w io.Writer, lowest map[string]aggregate.Lowest) {
	fuelTypes := make([]string, 0, len(lowest))
	for ft := range lowest {
		fuelTypes = append(fuelTypes, ft)
	}
	sort.Strings(fuelTypes)

	t := newTable(w)
	t.AppendHeader(table.Row{"Fuel Type", "Lowest Price", "Club", "Address"})
	for _, ft := range fuelTypes {
		l := lowest[ft]
		t.AppendRow(table.Row{ft, fmt.Sprintf("$%.3f", l.Price), l.Club, l.Address})
	}
	t.Render()
}

// Trends renders per-fuel-type trend statistics.
func Trends(w io.Writer, trends map[string]aggregate.Trend) {
	fuelTypes := make([]string, 0, len(trends))
	for ft := range trends {
		fuelTypes = append(fuelTypes, ft)
	}
	sort.Strings(fuelTypes)

	t := newTable(w)
	t.AppendHeader(table.Row{"Fuel Type", "Current", "Lowest", "Highest", "Average", "Data Points"})
	for _, ft := range fuelTypes {
		tr := trends[ft]
		t.AppendRow(table.Row{
			ft,
			fmt.Sprintf("$%.3f", tr.Current),
			fmt.Sprintf("$%.3f", tr.Lowest),
			fmt.Sprintf("$%.3f", tr.Highest),
			fmt.Sprintf("$%.3f", tr.Average),
			tr.DataPoints,
		})
	}
	t.Render()
}

// History renders stored price records, newest first as supplied.
func History(w io.Writer, records []model.PriceRecord) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Club Name", "Fuel Type", "Price", "Date", "Time", "Source"})
	for _, r := range records {
		t.AppendRow(table.Row{r.ClubName, r.FuelType, r.Price, r.ScrapedDate, r.ScrapedTime, r.Source})
	}
	t.Render()
}

// Stats renders one day's scraping statistics.
func Stats(w io.Writer, date string, stats store.DailyStats, totalClubs int) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Date", "Attempts", "Successful", "Failed", "Clubs Attempted"})
	t.AppendRow(table.Row{
		date,
		stats.TotalAttempts,
		stats.Successful,
		stats.Failed,
		fmt.Sprintf("%d/%d", stats.ClubsAttempted, totalClubs),
	})
	t.Render()
}
