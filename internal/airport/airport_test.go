package airport_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/vacationspots/internal/airport"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewLookupResolvesCities(t *testing.T) {
	path := writeFile(t, "airport_list.json", `[
		["Seattle-Tacoma International Airport", "Seattle", "United States", "SEA"],
		["San Diego International Airport", "San Diego", "United States", "SAN"],
		["No Code Airfield", "Nowhere", "United States", ""]
	]`)

	lookup, err := airport.NewLookup(path)
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.Size())

	city, ok := lookup.CityForAirport("SAN")
	require.True(t, ok)
	assert.Equal(t, "San Diego", city)

	// Codes match case-insensitively.
	city, ok = lookup.CityForAirport(" sea ")
	require.True(t, ok)
	assert.Equal(t, "Seattle", city)

	_, ok = lookup.CityForAirport("XXX")
	assert.False(t, ok)
}

func TestNewLookupSkipsShortEntries(t *testing.T) {
	path := writeFile(t, "airport_list.json", `[
		["Seattle-Tacoma International Airport", "Seattle"],
		["San Diego International Airport", "San Diego", "United States", "SAN"]
	]`)

	lookup, err := airport.NewLookup(path)
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.Size())
}

func TestNewLookupRejectsMalformedFile(t *testing.T) {
	path := writeFile(t, "airport_list.json", `{"not": "a list"}`)

	_, err := airport.NewLookup(path)
	assert.Error(t, err)
}

func TestLoadHome(t *testing.T) {
	path := writeFile(t, "home.json", `{"airport": "SEA"}`)

	home, err := airport.LoadHome(path)
	require.NoError(t, err)
	assert.Equal(t, "SEA", home.Airport)
}

func TestLoadHomeRequiresAirport(t *testing.T) {
	path := writeFile(t, "home.json", `{}`)

	_, err := airport.LoadHome(path)
	assert.Error(t, err)
}
