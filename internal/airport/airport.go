// Package airport bridges the airport and city domains. It loads the airport
// reference list and resolves IATA codes to city names, and it loads the
// traveler's home airport definition.
package airport

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const moduleName = "airport"

// Reference list entry layout: index 1 is the city name, index 3 the IATA code.
const (
	cityIndex = 1
	iataIndex = 3
)

// Lookup resolves IATA airport codes to city names.
type Lookup struct {
	cityByIATA map[string]string
}

// NewLookup builds a Lookup from the airport reference list at path.
// The file is a JSON array of string arrays in pyairports layout.
func NewLookup(path string) (*Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to read airport list '"+path+"'", err, false, false)
	}

	var entries [][]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to parse airport list '"+path+"'", err, false, false)
	}

	cityByIATA := make(map[string]string, len(entries))
	for _, entry := range entries {
		if len(entry) <= iataIndex {
			continue
		}
		iata := strings.ToUpper(strings.TrimSpace(entry[iataIndex]))
		if iata == "" {
			continue
		}
		cityByIATA[iata] = entry[cityIndex]
	}

	logger.Infof("Loaded %d airport entries from '%s'", len(cityByIATA), path)
	return &Lookup{cityByIATA: cityByIATA}, nil
}

// CityForAirport returns the city name for an IATA code. Codes are matched
// case-insensitively. The second return value is false for unknown codes.
func (l *Lookup) CityForAirport(iata string) (string, bool) {
	city, ok := l.cityByIATA[strings.ToUpper(strings.TrimSpace(iata))]
	return city, ok
}

// Size returns the number of known airports.
func (l *Lookup) Size() int {
	return len(l.cityByIATA)
}

// Home identifies the traveler's home location.
type Home struct {
	Airport string `json:"airport"`
}

// LoadHome reads the home airport definition from a JSON file.
func LoadHome(path string) (*Home, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to read home definition '"+path+"'", err, false, false)
	}
	var home Home
	if err := json.Unmarshal(data, &home); err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to parse home definition '"+path+"'", err, false, false)
	}
	if home.Airport == "" {
		return nil, exception.NewBatchError(moduleName, "home definition '"+path+"' does not name an airport", nil, false, false)
	}
	return &home, nil
}
