package report

import (
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/fuelwatch-cli/internal/model"
)

// WriteCSV writes the flattened rows to a CSV file at path.
func WriteCSV(path string, rows []model.FlatRow) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "report: marshal csv")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}

// WriteHistoryCSV writes stored price records to a CSV file at path.
func WriteHistoryCSV(path string, records []model.PriceRecord) error {
	type historyRow struct {
		ClubName    string `csv:"Club Name"`
		FuelType    string `csv:"Fuel Type"`
		Price       string `csv:"Price"`
		ScrapedDate string `csv:"Date"`
		ScrapedTime string `csv:"Time"`
		Source      string `csv:"Source"`
	}
	out := make([]historyRow, 0, len(records))
	for _, r := range records {
		out = append(out, historyRow(r))
	}

	data, err := csvutil.Marshal(out)
	if err != nil {
		return eris.Wrap(err, "report: marshal history csv")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}

// WriteXLSX writes the flattened rows to an XLSX workbook at path.
func WriteXLSX(path string, rows []model.FlatRow) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Prices")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Club Name", "Address", "Club URL", "Fuel Center URL", "Fuel Type", "Price"} {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.ClubName)
		row.AddCell().SetString(r.Address)
		row.AddCell().SetString(r.ClubURL)
		row.AddCell().SetString(r.FuelURL)
		row.AddCell().SetString(r.FuelType)
		row.AddCell().SetString(r.Price)
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}
