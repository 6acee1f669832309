package muni

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/couchcryptid/forecast-bot/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed municipalities.yaml
var embeddedDataset []byte

// FullDatasetMinRecords is the smallest record count expected from the full
// GSI municipality table. Smaller directories leave most coordinates unresolved.
const FullDatasetMinRecords = 1700

// Load builds the municipality directory from the YAML dataset at path, or
// from the embedded dataset when path is empty.
func Load(path string) (*domain.MunicipalityDirectory, error) {
	data := embeddedDataset
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read municipality dataset: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a YAML mapping of municipality code to dataset row.
func Parse(data []byte) (*domain.MunicipalityDirectory, error) {
	var rows map[string]string
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse municipality dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("municipality dataset is empty")
	}

	codes := make([]string, 0, len(rows))
	for code := range rows {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	records := make([]domain.MunicipalityRecord, 0, len(rows))
	for _, code := range codes {
		r, err := domain.ParseMunicipalityRow(code, rows[code])
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return domain.NewMunicipalityDirectory(records)
}

// WarnIfPartial logs a warning when the directory is too small to be the full
// municipality table, which is the case for the embedded dataset. It reports
// whether the warning was emitted.
func WarnIfPartial(logger *slog.Logger, path string, dir *domain.MunicipalityDirectory) bool {
	if dir.Len() >= FullDatasetMinRecords {
		return false
	}
	source := path
	if source == "" {
		source = "embedded"
	}
	logger.Warn("municipality directory is a partial subset, most coordinates will not resolve; set MUNI_DIRECTORY_PATH to the full GSI table",
		"source", source, "records", dir.Len(), "expected_min", FullDatasetMinRecords)
	return true
}
