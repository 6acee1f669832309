// Command validate checks the municipality dataset against the weather area
// catalog. Every municipality must resolve to a forecast area; municipalities
// that only resolve through the first-city fallback are reported as warnings.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -muni data/municipalities.yaml \
//	  -catalog-file testdata/primary_area.xml
//
// Without -muni the embedded dataset is checked. Without -catalog-file the
// catalog is fetched from -catalog-url.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/forecast-bot/internal/adapter/muni"
	"github.com/couchcryptid/forecast-bot/internal/adapter/weather"
	"github.com/couchcryptid/forecast-bot/internal/domain"
	"github.com/couchcryptid/forecast-bot/internal/observability"
)

const defaultCatalogURL = "https://weather.tsukumijima.net/primary_area.xml"

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	muniPath := flag.String("muni", "", "municipality dataset YAML (default: embedded dataset)")
	catalogFile := flag.String("catalog-file", "", "local copy of the area catalog XML")
	catalogURL := flag.String("catalog-url", defaultCatalogURL, "area catalog URL, used without -catalog-file")
	timeout := flag.Duration("timeout", 10*time.Second, "catalog fetch timeout")
	verbose := flag.Bool("v", false, "list fallback warnings")
	flag.Parse()

	if code := run(*muniPath, *catalogFile, *catalogURL, *timeout, *verbose); code != 0 {
		os.Exit(code)
	}
}

func run(muniPath, catalogFile, catalogURL string, timeout time.Duration, verbose bool) int {
	fmt.Println("=== Municipality / Area Catalog Validation ===")
	fmt.Println()

	directory, err := muni.Load(muniPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load municipality dataset: %v\n", err)
		return 1
	}

	catalog, err := loadCatalog(catalogFile, catalogURL, timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load area catalog: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCatalog(catalog),
		validateCoverage(directory, catalog),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		if len(p.warnings) > 0 {
			status += fmt.Sprintf(" \033[33m(%d warnings)\033[0m", len(p.warnings))
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d municipalities, %d catalog cities\n", directory.Len(), len(catalog.Entries))

	for _, p := range phases {
		if !p.passed() {
			fmt.Printf("\n--- %s ---\n", p.name)
			for i, e := range p.errors {
				fmt.Printf("  [%d] %s\n", i+1, e)
			}
		}
		if verbose && len(p.warnings) > 0 {
			fmt.Printf("\n--- %s (warnings) ---\n", p.name)
			for i, w := range p.warnings {
				fmt.Printf("  [%d] %s\n", i+1, w)
			}
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadCatalog(file, url string, timeout time.Duration) (domain.Catalog, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return domain.Catalog{}, err
		}
		return weather.ParseCatalog(data)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := weather.NewClient(url, "", timeout, observability.NewMetricsForTesting(), logger)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.Catalog(ctx)
}

// validateCatalog checks that area codes are unique and every entry is complete.
func validateCatalog(catalog domain.Catalog) *phase {
	p := &phase{name: "Catalog integrity"}
	seen := make(map[domain.AreaCode]string, len(catalog.Entries))
	for _, e := range catalog.Entries {
		if e.AreaCode == "" || e.CityTitle == "" || e.PrefectureTitle == "" {
			p.errorf("incomplete entry %+v", e)
			continue
		}
		if prev, dup := seen[e.AreaCode]; dup {
			p.errorf("area code %s used by %s and %s", e.AreaCode, prev, e.CityTitle)
		}
		seen[e.AreaCode] = e.CityTitle
	}
	return p
}

// validateCoverage resolves every municipality the way the pipeline does.
func validateCoverage(directory *domain.MunicipalityDirectory, catalog domain.Catalog) *phase {
	p := &phase{name: "Municipality coverage"}
	for _, r := range directory.Records() {
		code, match, err := domain.MatchAreaCode(catalog, r.Prefecture, r.City)
		if err != nil {
			p.errorf("%s %s%s: %v", r.Code, r.Prefecture, r.City, err)
			continue
		}
		if match == domain.AreaMatchFallback {
			p.warnf("%s %s%s falls back to area %s", r.Code, r.Prefecture, r.City, code)
		}
	}
	return p
}
