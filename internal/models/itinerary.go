package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlightNumber decodes from a JSON number or string; the search API sends
// marketing numbers as integers and operating numbers as strings.
type FlightNumber string

func (f *FlightNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlightNumber(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return err
	}
	*f = FlightNumber(n.String())
	return nil
}

// RawItinerary is one round trip as returned by the flight search API.
// Pointer fields are required; nil means the field was absent.
type RawItinerary struct {
	ID             string   `json:"id"`
	FlyFrom        *string  `json:"flyFrom"`
	CityFrom       *string  `json:"cityFrom"`
	FlyTo          *string  `json:"flyTo"`
	CityTo         *string  `json:"cityTo"`
	LocalDeparture *string  `json:"local_departure"`
	Price          *float64 `json:"price"`
	DeepLink       *string  `json:"deep_link"`
	Route          []RawLeg `json:"route"`
}

type RawLeg struct {
	FlyFrom           *string       `json:"flyFrom"`
	CityFrom          *string       `json:"cityFrom"`
	FlyTo             *string       `json:"flyTo"`
	CityTo            *string       `json:"cityTo"`
	LocalDeparture    *string       `json:"local_departure"`
	Airline           *string       `json:"airline"`
	FlightNo          *FlightNumber `json:"flight_no"`
	OperatingCarrier  string        `json:"operating_carrier"`
	OperatingFlightNo FlightNumber  `json:"operating_flight_no"`
	Return            *int          `json:"return"`
}
