package airports

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lisbon = struct{ lat, long float64 }{38.7813, -9.13592}

func sampleTable(t *testing.T) *Table {
	t.Helper()
	data := []byte(`[
		["LIS", 38.7813, -9.1359],
		["OPO", 41.2481, -8.6814],
		["MAD", 40.4719, -3.5626],
		["LHR", 51.4700, -0.4543],
		["JFK", 40.6413, -73.7781]
	]`)
	table, err := Parse(data, 0)
	require.NoError(t, err)
	return table
}

func TestDistance(t *testing.T) {
	// Lisbon to Madrid is roughly 500 km.
	d := Distance(38.7813, -9.1359, 40.4719, -3.5626)
	assert.InDelta(t, 512, d, 10)

	assert.InDelta(t, 0, Distance(10, 10, 10, 10), 1e-9)

	// One degree of the equator is a/180*pi on WGS84, not the mean sphere.
	assert.InDelta(t, 111.319491, Distance(0, 0, 0, 1), 1e-6)
	// Equator to pole along a meridian.
	assert.InDelta(t, 10001.965729, Distance(0, 0, 90, 0), 1e-6)
	// Antipodal equatorial points are joined over a pole.
	assert.InDelta(t, 20003.931459, Distance(0, 0, 0, 180), 1e-5)
}

func TestFilterBandEdgeUsesEllipsoid(t *testing.T) {
	// 1500.197 km along the equator; a 6371 km sphere would put it at
	// 1498.5 km, inside the short-haul band.
	table, err := Parse([]byte(`[["EQX", 0, 13.4765]]`), 0)
	require.NoError(t, err)

	assert.Empty(t, table.Filter(0, 0, 1500, 0))
	assert.Equal(t, []string{"EQX"}, table.Filter(0, 0, 4000, 1500))
}

func TestFilterBands(t *testing.T) {
	table := sampleTable(t)

	tests := []struct {
		name     string
		min, max float64
		want     []string
	}{
		{"origin radius", 0, 100, []string{"LIS"}},
		{"short haul", 0, 1500, []string{"LIS", "OPO", "MAD"}},
		{"medium haul", 1500, 4000, []string{"LHR"}},
		{"long haul", 4000, 15000, []string{"JFK"}},
		{"empty band", 100, 200, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Filter(lisbon.lat, lisbon.long, tt.max, tt.min)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodesJoined(t *testing.T) {
	table := sampleTable(t)
	assert.Equal(t, "LIS,OPO,MAD", table.Codes(lisbon.lat, lisbon.long, 1500, 0))
	assert.Equal(t, "", table.Codes(lisbon.lat, lisbon.long, 200, 100))
}

func TestFilterCap(t *testing.T) {
	list := make([]Airport, 0, 20)
	for i := 0; i < 20; i++ {
		list = append(list, Airport{Code: fmt.Sprintf("A%02d", i), Lat: 10, Long: 10})
	}
	table := NewTable(list, 7)

	got := table.Filter(10, 10, 50, 0)
	require.Len(t, got, 7)
	assert.Equal(t, "A00", got[0])
	assert.Equal(t, "A06", got[6])
}

func TestParseMappingsAndYAML(t *testing.T) {
	data := []byte(`
- code: LIS
  lat: 38.7813
  long: -9.1359
- [OPO, 41.2481, -8.6814]
`)
	table, err := Parse(data, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"LIS", "OPO"}, table.Filter(lisbon.lat, lisbon.long, 1000, 0))
}

func TestParseRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"short row", `[["LIS", 38.7]]`},
		{"no code", `[["", 38.7, -9.1]]`},
		{"bad latitude", `[["XXX", 123.0, 0]]`},
		{"not numeric", `[["LIS", "north", -9.1]]`},
		{"scalar entry", `["LIS"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), 0)
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airports.json")
	require.NoError(t, os.WriteFile(path, []byte(`[["LIS", 38.7813, -9.1359]]`), 0o644))

	table, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), 0)
	assert.Error(t, err)
}

func TestBundledTableLoads(t *testing.T) {
	table, err := Load(filepath.Join("..", "..", "data", "airports.json"), 0)
	require.NoError(t, err)
	assert.Greater(t, table.Len(), 40)
	assert.Contains(t, table.Filter(lisbon.lat, lisbon.long, 100, 0), "LIS")
}
