package domain

// AreaCode identifies a forecast area in the weather catalog.
type AreaCode string

// CatalogEntry is one city row of the weather area catalog.
type CatalogEntry struct {
	AreaCode        AreaCode
	CityTitle       string
	PrefectureTitle string
}

// Catalog is the parsed area catalog, in document order.
type Catalog struct {
	Entries []CatalogEntry
}

// Forecast is the subset of a forecast payload the bot renders.
type Forecast struct {
	Title    string          `json:"title"`
	Headline string          `json:"headline"`
	Entries  []ForecastEntry `json:"entries"`
}

// ForecastEntry is a single day of a forecast.
type ForecastEntry struct {
	Date    string `json:"date"`
	Summary string `json:"summary"`
}
