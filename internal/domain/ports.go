package domain

import "context"

// ReverseGeocoder resolves a coordinate to its prefecture and city.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, c Coordinate) (Place, error)
}

// AddressSearcher returns candidate locations for free text, in upstream order.
type AddressSearcher interface {
	Search(ctx context.Context, query string) ([]GeoCandidate, error)
}

// AreaResolver maps a prefecture and city to a forecast area code.
type AreaResolver interface {
	ResolveAreaCode(ctx context.Context, prefecture, city string) (AreaCode, error)
}

// ForecastFetcher retrieves the forecast for an area.
type ForecastFetcher interface {
	FetchForecast(ctx context.Context, code AreaCode) (Forecast, error)
}
