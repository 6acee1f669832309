package domain

import "fmt"

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Validate reports ErrInvalidInput when either component is out of range.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidInput, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidInput, c.Lon)
	}
	return nil
}

// Place is the administrative location a coordinate falls in.
type Place struct {
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
}

// GeoCandidate is one address match returned by the text search service.
type GeoCandidate struct {
	Title      string     `json:"title"`
	Coordinate Coordinate `json:"coordinate"`
}
