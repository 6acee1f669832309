// Package domain models location-to-forecast resolution for Japanese weather
// forecasts.
//
// # Data Sources
//
// Four upstream services are consumed, all over plain HTTPS GET:
//
//	GSI reverse geocoder   coordinate  -> municipality code ("muniCd")
//	GSI address search     free text   -> GeoJSON features (title + [lon, lat])
//	weather area catalog   (none)      -> primary_area.xml (pref/city/area id)
//	weather forecast API   area id     -> title, headline, daily forecasts
//
// The forecast API and its catalog are livedoor-weather compatible
// (https://weather.tsukumijima.net). The geocoders are operated by the
// Geospatial Information Authority of Japan (https://www.gsi.go.jp).
//
// # Municipality Codes
//
// The reverse geocoder returns five-digit, zero-padded codes ("01100" for
// Sapporo). The static directory is keyed by the integer value without
// padding ("1100"). [NormalizeMunicipalityCode] converts between the two by
// parsing the code as an integer and formatting it back.
//
// Directory rows keep the upstream dataset layout:
//
//	"<pref code>,<pref name>,<city code>,<city name>"  e.g. "13,東京都,13101,千代田区"
//
// # Area Catalog Conventions
//
// The catalog groups cities under prefecture titles that are the official
// prefecture names ("東京都", "大阪府"), with one exception: Hokkaido is split
// into sub-regions ("道北", "道東", "道南", "道央"). A prefecture of "北海道"
// therefore matches every catalog prefecture whose title contains "道".
//
// Catalog city titles are region names ("東京", "札幌") rather than municipality
// names ("千代田区", "札幌市中央区"). City selection prefers an exact title
// match, then a catalog title contained in the municipality name, and finally
// falls back to the first city listed for the prefecture.
//
// # Outcomes
//
// Every resolution ends in exactly one [Outcome]. Only four message shapes
// reach users: a formatted forecast, "no match", "too many results" and a
// generic "forecast unavailable". Stage-level detail travels in [StageError]
// for logging and metrics.
package domain
