package model

// Club is a configured Sam's Club location. The club set is loaded once at
// startup and never mutated during a run; adding a club means loading a new
// registry, not editing shared state.
type Club struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`

	// FuelURL is the fuel-center page when known ahead of time. Usually
	// empty; the scraper discovers it from the club page.
	FuelURL string `yaml:"fuel_url,omitempty" json:"fuel_url,omitempty"`

	// KnownAddress is the fallback truth when address extraction fails.
	KnownAddress string `yaml:"known_address,omitempty" json:"known_address,omitempty"`
}

// ClubProfile is the latest known profile for a club, upserted whenever
// fresh data is obtained. Rows are never deleted.
type ClubProfile struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	ClubURL     string `json:"club_url"`
	FuelURL     string `json:"fuel_url"`
	CreatedDate string `json:"created_date"`
	LastUpdated string `json:"last_updated"`
}

// PricePair is one (fuel type, price) extraction result. Price is kept as
// text exactly as scraped; parsing happens at aggregation time.
type PricePair struct {
	FuelType string `json:"fuel_type"`
	Price    string `json:"price"`
}

// PriceRecord is one immutable observation in the append-only history.
// Corrections are new rows, never edits.
type PriceRecord struct {
	ClubName    string `json:"club_name"`
	FuelType    string `json:"fuel_type"`
	Price       string `json:"price"`
	ScrapedDate string `json:"scraped_date"`
	ScrapedTime string `json:"scraped_time"`
	Source      string `json:"source"` // "scraped" or "manual"
}

// Price record provenance values.
const (
	SourceScraped = "scraped"
	SourceManual  = "manual"
)

// ScrapeAttempt is one logged fetch attempt for a club. Its existence for a
// (club, date) pair is what suppresses re-scraping that day.
type ScrapeAttempt struct {
	ClubName     string `json:"club_name"`
	ScrapedDate  string `json:"scraped_date"`
	ScrapedTime  string `json:"scraped_time"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
	PricesFound  int    `json:"prices_found"`
}

// ClubResult is the orchestrator's reconciled outcome for one club.
type ClubResult struct {
	Club      Club        `json:"club"`
	Address   string      `json:"address"`
	FuelURL   string      `json:"fuel_url"`
	Prices    []PricePair `json:"prices"`
	FromCache bool        `json:"from_cache"`
	Success   bool        `json:"success"`
}

// FlatRow is one row of the flattened export consumed by the report and
// CSV/XLSX writers.
type FlatRow struct {
	ClubName string `csv:"Club Name" json:"club_name"`
	Address  string `csv:"Address" json:"address"`
	ClubURL  string `csv:"Club URL" json:"club_url"`
	FuelURL  string `csv:"Fuel Center URL" json:"fuel_url"`
	FuelType string `csv:"Fuel Type" json:"fuel_type"`
	Price    string `csv:"Price" json:"price"`
}
