package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dharmasatrya/ecoflyer/internal/localtime"
)

// Number is a float that decodes from either a JSON number or a numeric
// string. The web client sends coordinates and prices both ways.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = Number(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

type LatLong struct {
	Lat  Number `json:"lat"`
	Long Number `json:"long"`
}

const (
	TripShort  = "trip-short"
	TripMedium = "trip-medium"
	TripLong   = "trip-long"
)

type SearchRequest struct {
	LatLong              LatLong `json:"latLong"`
	TripLength           string  `json:"tripLength"`
	OutboundDate         string  `json:"outboundDate"`
	OutboundDateEndRange string  `json:"outboundDateEndRange,omitempty"`
	ReturnDate           string  `json:"returnDate"`
	ReturnDateEndRange   string  `json:"returnDateEndRange,omitempty"`
	Price                *Number `json:"price,omitempty"`

	// set by UnmarshalJSON when latLong, lat or long is absent or blank
	locationMissing bool
}

func (r *SearchRequest) UnmarshalJSON(data []byte) error {
	type plain SearchRequest
	aux := struct {
		*plain
		LatLong *struct {
			Lat  json.RawMessage `json:"lat"`
			Long json.RawMessage `json:"long"`
		} `json:"latLong"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.LatLong = LatLong{}
	if aux.LatLong == nil {
		r.locationMissing = true
		return nil
	}
	r.locationMissing = false
	for _, f := range []struct {
		raw json.RawMessage
		dst *Number
	}{{aux.LatLong.Lat, &r.LatLong.Lat}, {aux.LatLong.Long, &r.LatLong.Long}} {
		if blank(f.raw) {
			r.locationMissing = true
			continue
		}
		if err := f.dst.UnmarshalJSON(f.raw); err != nil {
			return err
		}
	}
	return nil
}

// blank reports whether a raw JSON value is absent, null or an empty string.
func blank(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return true
	}
	if raw[0] != '"' {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return strings.TrimSpace(s) == ""
}

// Validate checks the request and normalizes it in place: dates become
// YYYY-MM-DD, empty range ends default to the range start and an empty trip
// length means a long-haul search.
func (r *SearchRequest) Validate() error {
	if r.locationMissing {
		return ErrMissingLocation
	}
	lat, long := float64(r.LatLong.Lat), float64(r.LatLong.Long)
	if lat < -90 || lat > 90 {
		return ErrInvalidLatitude
	}
	if long < -180 || long > 180 {
		return ErrInvalidLongitude
	}

	switch r.TripLength {
	case "":
		r.TripLength = TripLong
	case TripShort, TripMedium, TripLong:
	default:
		return ErrInvalidTripLength
	}

	if strings.TrimSpace(r.OutboundDate) == "" {
		return ErrMissingOutboundDate
	}
	if strings.TrimSpace(r.ReturnDate) == "" {
		return ErrMissingReturnDate
	}
	if r.OutboundDateEndRange == "" {
		r.OutboundDateEndRange = r.OutboundDate
	}
	if r.ReturnDateEndRange == "" {
		r.ReturnDateEndRange = r.ReturnDate
	}

	dates := []*string{&r.OutboundDate, &r.OutboundDateEndRange, &r.ReturnDate, &r.ReturnDateEndRange}
	for _, d := range dates {
		t, err := localtime.ParseDate(*d)
		if err != nil {
			return ErrInvalidDate
		}
		*d = localtime.FormatISO(t)
	}

	// ISO dates compare correctly as strings.
	if r.OutboundDateEndRange < r.OutboundDate || r.ReturnDateEndRange < r.ReturnDate {
		return ErrInvalidDateRange
	}
	if r.ReturnDateEndRange < r.OutboundDate {
		return ErrReturnBeforeOutbound
	}

	if r.Price != nil && *r.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// RadiusBand returns the destination distance band in kilometres for the
// requested trip length.
func (r SearchRequest) RadiusBand() (minKm, maxKm float64) {
	switch r.TripLength {
	case TripShort:
		return 0, 1500
	case TripMedium:
		return 1500, 4000
	default:
		return 4000, 15000
	}
}

// PriceLimit returns the upper price bound, or 0 when none was given.
func (r SearchRequest) PriceLimit() int {
	if r.Price == nil || *r.Price <= 0 {
		return 0
	}
	return int(*r.Price)
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingLocation      ValidationError = "latLong with lat and long is required"
	ErrInvalidLatitude      ValidationError = "latitude must be between -90 and 90"
	ErrInvalidLongitude     ValidationError = "longitude must be between -180 and 180"
	ErrInvalidTripLength    ValidationError = "tripLength must be trip-short, trip-medium or trip-long"
	ErrMissingOutboundDate  ValidationError = "outboundDate is required"
	ErrMissingReturnDate    ValidationError = "returnDate is required"
	ErrInvalidDate          ValidationError = "dates must be YYYY-MM-DD or DD/MM/YYYY"
	ErrInvalidDateRange     ValidationError = "date range ends before it starts"
	ErrReturnBeforeOutbound ValidationError = "return window ends before the outbound window starts"
	ErrNegativePrice        ValidationError = "price must not be negative"
)
