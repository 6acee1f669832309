package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MunicipalityRecord maps a normalized municipality code to its names.
type MunicipalityRecord struct {
	Code       string
	Prefecture string
	City       string
}

// MunicipalityDirectory is a read-only index of municipality records. It is
// built once at start-up and shared by reference across requests.
type MunicipalityDirectory struct {
	byCode map[string]MunicipalityRecord
}

// NewMunicipalityDirectory indexes records by normalized code. Duplicate codes
// are rejected.
func NewMunicipalityDirectory(records []MunicipalityRecord) (*MunicipalityDirectory, error) {
	byCode := make(map[string]MunicipalityRecord, len(records))
	for _, r := range records {
		code, err := NormalizeMunicipalityCode(r.Code)
		if err != nil {
			return nil, err
		}
		if _, dup := byCode[code]; dup {
			return nil, fmt.Errorf("duplicate municipality code %q", code)
		}
		r.Code = code
		byCode[code] = r
	}
	return &MunicipalityDirectory{byCode: byCode}, nil
}

// Lookup returns the record for code, which may carry leading zeros.
func (d *MunicipalityDirectory) Lookup(code string) (MunicipalityRecord, bool) {
	normalized, err := NormalizeMunicipalityCode(code)
	if err != nil {
		return MunicipalityRecord{}, false
	}
	r, ok := d.byCode[normalized]
	return r, ok
}

// Len returns the number of records.
func (d *MunicipalityDirectory) Len() int { return len(d.byCode) }

// Records returns every record ordered by numeric code.
func (d *MunicipalityDirectory) Records() []MunicipalityRecord {
	out := make([]MunicipalityRecord, 0, len(d.byCode))
	for _, r := range d.byCode {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].Code)
		b, _ := strconv.Atoi(out[j].Code)
		return a < b
	})
	return out
}

// NormalizeMunicipalityCode strips zero padding: "01100" -> "1100".
func NormalizeMunicipalityCode(code string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil || n < 0 {
		return "", fmt.Errorf("%w: municipality code %q", ErrInvalidInput, code)
	}
	return strconv.Itoa(n), nil
}

// ParseMunicipalityRow parses a dataset row of the form
// "<pref code>,<pref name>,<city code>,<city name>".
func ParseMunicipalityRow(code, row string) (MunicipalityRecord, error) {
	fields := strings.Split(row, ",")
	if len(fields) != 4 {
		return MunicipalityRecord{}, fmt.Errorf("municipality %s: expected 4 fields, got %d", code, len(fields))
	}
	pref := strings.TrimSpace(fields[1])
	city := strings.TrimSpace(fields[3])
	if pref == "" {
		return MunicipalityRecord{}, fmt.Errorf("municipality %s: empty prefecture", code)
	}
	return MunicipalityRecord{Code: code, Prefecture: pref, City: city}, nil
}
