// Package airports selects airport codes inside a distance band around a
// location from a static, read-only table.
package airports

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/geodesic"
	"gopkg.in/yaml.v3"
)

// DefaultMaxCodes keeps the joined code list short enough for the flight
// search query string.
const DefaultMaxCodes = 600

type Airport struct {
	Code string  `yaml:"code"`
	Lat  float64 `yaml:"lat"`
	Long float64 `yaml:"long"`
}

// UnmarshalYAML accepts either a [code, lat, long] row or a mapping.
func (a *Airport) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		if len(node.Content) != 3 {
			return fmt.Errorf("line %d: airport row needs 3 values, got %d", node.Line, len(node.Content))
		}
		if err := node.Content[0].Decode(&a.Code); err != nil {
			return fmt.Errorf("line %d: code: %w", node.Line, err)
		}
		if err := node.Content[1].Decode(&a.Lat); err != nil {
			return fmt.Errorf("line %d: latitude: %w", node.Line, err)
		}
		if err := node.Content[2].Decode(&a.Long); err != nil {
			return fmt.Errorf("line %d: longitude: %w", node.Line, err)
		}
		return nil
	case yaml.MappingNode:
		type plain Airport
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*a = Airport(p)
		return nil
	default:
		return fmt.Errorf("line %d: unexpected airport entry", node.Line)
	}
}

type Table struct {
	airports []Airport
	maxCodes int
}

// NewTable copies airports into a table. maxCodes <= 0 uses DefaultMaxCodes.
func NewTable(airports []Airport, maxCodes int) *Table {
	if maxCodes <= 0 {
		maxCodes = DefaultMaxCodes
	}
	list := make([]Airport, len(airports))
	copy(list, airports)
	return &Table{airports: list, maxCodes: maxCodes}
}

// Parse reads a JSON or YAML list of airports.
func Parse(data []byte, maxCodes int) (*Table, error) {
	var list []Airport
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing airport table: %w", err)
	}
	for i, a := range list {
		if strings.TrimSpace(a.Code) == "" {
			return nil, fmt.Errorf("airport %d has no code", i)
		}
		if a.Lat < -90 || a.Lat > 90 || a.Long < -180 || a.Long > 180 {
			return nil, fmt.Errorf("airport %s has invalid coordinates (%v, %v)", a.Code, a.Lat, a.Long)
		}
	}
	return NewTable(list, maxCodes), nil
}

func Load(path string, maxCodes int) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading airport table: %w", err)
	}
	return Parse(data, maxCodes)
}

func (t *Table) Len() int {
	return len(t.airports)
}

// Filter returns, in table order, the codes of airports whose distance from
// (lat, long) lies within [minKm, maxKm], stopping at the table's code cap.
func (t *Table) Filter(lat, long, maxKm, minKm float64) []string {
	codes := make([]string, 0)
	for _, a := range t.airports {
		if len(codes) >= t.maxCodes {
			break
		}
		d := Distance(lat, long, a.Lat, a.Long)
		if d >= minKm && d <= maxKm {
			codes = append(codes, a.Code)
		}
	}
	return codes
}

// Codes is Filter joined with commas, the form the flight search expects.
func (t *Table) Codes(lat, long, maxKm, minKm float64) string {
	return strings.Join(t.Filter(lat, long, maxKm, minKm), ",")
}

// Distance is the geodesic distance in kilometres on the WGS84 ellipsoid.
func Distance(lat1, long1, lat2, long2 float64) float64 {
	var metres float64
	geodesic.WGS84.Inverse(lat1, long1, lat2, long2, &metres, nil, nil)
	return metres / 1000
}
