package domain

import (
	"fmt"
	"strings"
)

const (
	// hokkaido is the prefecture name the reverse geocoder reports for Hokkaido.
	hokkaido = "北海道"
	// hokkaidoRegionMark appears in every catalog sub-region title for Hokkaido
	// ("道北", "道央", ...).
	hokkaidoRegionMark = "道"
)

// MatchesPrefecture reports whether a catalog prefecture title belongs to
// prefecture. Hokkaido matches any title containing "道"; everything else
// requires an exact title.
func MatchesPrefecture(prefecture, catalogTitle string) bool {
	if prefecture == hokkaido {
		return strings.Contains(catalogTitle, hokkaidoRegionMark)
	}
	return catalogTitle == prefecture
}

// AreaMatch describes how SelectAreaCode chose an area.
type AreaMatch string

const (
	AreaMatchExact    AreaMatch = "exact"
	AreaMatchPartial  AreaMatch = "partial"
	AreaMatchFallback AreaMatch = "fallback"
)

// SelectAreaCode picks the forecast area for (prefecture, city) from the
// catalog.
//
// The first city of the matched prefecture is recorded as a fallback. The first
// city whose title equals city replaces it and ends the scan. Without an exact
// match, the first catalog title contained in city is used ("札幌" for
// "札幌市中央区") before falling back.
// The containment step keeps the legacy bot's `title in city` lookup for
// compatibility and does not add a new rule.
//
// ErrNotFound is returned only when the prefecture has no cities at all.
func SelectAreaCode(catalog Catalog, prefecture, city string) (AreaCode, error) {
	code, _, err := MatchAreaCode(catalog, prefecture, city)
	return code, err
}

// MatchAreaCode is SelectAreaCode that also reports which rule applied.
func MatchAreaCode(catalog Catalog, prefecture, city string) (AreaCode, AreaMatch, error) {
	var fallback, partial AreaCode
	for _, e := range catalog.Entries {
		if !MatchesPrefecture(prefecture, e.PrefectureTitle) {
			continue
		}
		if fallback == "" {
			fallback = e.AreaCode
		}
		if e.CityTitle == city {
			return e.AreaCode, AreaMatchExact, nil
		}
		if partial == "" && e.CityTitle != "" && strings.Contains(city, e.CityTitle) {
			partial = e.AreaCode
		}
	}
	if partial != "" {
		return partial, AreaMatchPartial, nil
	}
	if fallback == "" {
		return "", "", fmt.Errorf("%w: no forecast areas for prefecture %q", ErrNotFound, prefecture)
	}
	return fallback, AreaMatchFallback, nil
}
