package weather

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/couchcryptid/forecast-bot/internal/domain"
)

// CatalogSource provides the weather area catalog.
type CatalogSource interface {
	Catalog(ctx context.Context) (domain.Catalog, error)
}

// Catalog fetches and parses primary_area.xml. Every call hits the network;
// wrap the client in a CachedCatalog to share results between requests.
func (c *Client) Catalog(ctx context.Context) (domain.Catalog, error) {
	data, err := c.get(ctx, serviceCatalog, c.catalogURL)
	if err != nil {
		return domain.Catalog{}, err
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(serviceCatalog, "error").Inc()
		return domain.Catalog{}, err
	}
	if len(catalog.Entries) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues(serviceCatalog, "empty").Inc()
		return domain.Catalog{}, fmt.Errorf("%w: area catalog has no cities", domain.ErrUpstream)
	}
	c.metrics.UpstreamRequests.WithLabelValues(serviceCatalog, "success").Inc()
	return catalog, nil
}

// ParseCatalog decodes a primary_area.xml document into catalog entries in
// document order.
func ParseCatalog(data []byte) (domain.Catalog, error) {
	var doc areaDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return domain.Catalog{}, fmt.Errorf("%w: decode area catalog: %w", domain.ErrUpstream, err)
	}

	var entries []domain.CatalogEntry
	for _, pref := range doc.Prefs {
		for _, city := range pref.Cities {
			if city.ID == "" {
				continue
			}
			entries = append(entries, domain.CatalogEntry{
				AreaCode:        domain.AreaCode(city.ID),
				CityTitle:       city.Title,
				PrefectureTitle: pref.Title,
			})
		}
	}
	return domain.Catalog{Entries: entries}, nil
}

// primary_area.xml document types. The source element is namespaced
// (ldWeather:source); encoding/xml matches it by local name.

type areaDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Prefs   []areaPref `xml:"channel>source>pref"`
}

type areaPref struct {
	Title  string     `xml:"title,attr"`
	Cities []areaCity `xml:"city"`
}

type areaCity struct {
	Title  string `xml:"title,attr"`
	ID     string `xml:"id,attr"`
	Source string `xml:"source,attr"`
}
