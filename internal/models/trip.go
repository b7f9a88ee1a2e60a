package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Direction int

const (
	Outbound Direction = 0
	Return   Direction = 1
)

func (d Direction) String() string {
	if d == Return {
		return "return"
	}
	return "outbound"
}

// UnknownEmissions marks a leg the emissions provider has no data for.
const UnknownEmissions int64 = 0

// Leg is one flight segment of an option.
type Leg struct {
	FlyFrom           string    `json:"flyFrom"`
	CityFrom          string    `json:"cityFrom"`
	FlyTo             string    `json:"flyTo"`
	CityTo            string    `json:"cityTo"`
	LocalDeparture    string    `json:"local_departure"`
	Departure         time.Time `json:"-"`
	Airline           string    `json:"airline"`
	FlightNo          string    `json:"flight_no"`
	OperatingCarrier  string    `json:"operating_carrier"`
	OperatingFlightNo string    `json:"operating_flight_no"`
	Direction         Direction `json:"return"`
	FlightEmissions   int64     `json:"flight_emissions,omitempty"`
}

// Carrier returns the operating carrier when present, else the marketing
// airline.
func (l Leg) Carrier() string {
	if l.OperatingCarrier != "" {
		return l.OperatingCarrier
	}
	return l.Airline
}

// FlightNumber returns the operating flight number when present, else the
// marketing one.
func (l Leg) FlightNumber() (int, error) {
	raw := l.OperatingFlightNo
	if raw == "" {
		raw = l.FlightNo
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("flight number %q of %s-%s: %w", raw, l.FlyFrom, l.FlyTo, err)
	}
	return n, nil
}

// Option is one candidate round trip to a destination.
type Option struct {
	FlyFrom        string  `json:"flyFrom"`
	CityFrom       string  `json:"cityFrom"`
	FlyTo          string  `json:"flyTo"`
	CityTo         string  `json:"cityTo"`
	LocalDeparture string  `json:"local_departure"`
	Price          float64 `json:"price"`
	PriceFormatted string  `json:"price_formatted"`
	ImgURL         string  `json:"img_url"`
	DeepLink       string  `json:"deep_link"`
	Outbound       []Leg   `json:"-"`
	Return         []Leg   `json:"-"`
	TripEmissions  int64   `json:"trip_emissions,omitempty"`
}

func (o Option) TotalLegs() int {
	return len(o.Outbound) + len(o.Return)
}

// Legs returns the legs for one direction.
func (o Option) Legs(d Direction) []Leg {
	if d == Return {
		return o.Return
	}
	return o.Outbound
}

// MarshalJSON renders legs as [{"step_1": ...}, {"step_1": ...}] for
// outbound and return, plus the leg counters.
func (o Option) MarshalJSON() ([]byte, error) {
	type plain Option
	return json.Marshal(struct {
		plain
		Flights    [2]steps `json:"flights"`
		TotalLegs  int      `json:"total_legs"`
		OutLegs    int      `json:"out_legs"`
		ReturnLegs int      `json:"return_legs"`
	}{
		plain:      plain(o),
		Flights:    [2]steps{o.Outbound, o.Return},
		TotalLegs:  o.TotalLegs(),
		OutLegs:    len(o.Outbound),
		ReturnLegs: len(o.Return),
	})
}

type steps []Leg

func (s steps) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, Leg](len(s))
	for i, leg := range s {
		om.Set(StepKey(i), leg)
	}
	return om.MarshalJSON()
}

// Destination holds the retained options for one destination city in rank
// order.
type Destination struct {
	City    string
	Options []Option
}

func (d Destination) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, Option](len(d.Options))
	for i, opt := range d.Options {
		om.Set(OptionKey(i), opt)
	}
	return om.MarshalJSON()
}

// ResultSet is the ordered set of destinations produced for one search. It
// serializes as a JSON object keyed by city, preserving order.
type ResultSet []Destination

func (rs ResultSet) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, Destination](len(rs))
	for _, d := range rs {
		om.Set(d.City, d)
	}
	return om.MarshalJSON()
}

// Find returns the destination for city, if present.
func (rs ResultSet) Find(city string) (Destination, bool) {
	for _, d := range rs {
		if d.City == city {
			return d, true
		}
	}
	return Destination{}, false
}

// Cities lists destination names in order.
func (rs ResultSet) Cities() []string {
	cities := make([]string, len(rs))
	for i, d := range rs {
		cities[i] = d.City
	}
	return cities
}

// OptionKey is the 1-based label of the i-th option: option_1, option_2, ...
func OptionKey(i int) string {
	return "option_" + strconv.Itoa(i+1)
}

// StepKey is the 1-based label of the i-th leg within a direction.
func StepKey(i int) string {
	return "step_" + strconv.Itoa(i+1)
}
