// Package trips restructures raw flight search itineraries into the
// destination/option/leg model used by the rest of the pipeline.
package trips

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharmasatrya/ecoflyer/internal/localtime"
	"github.com/dharmasatrya/ecoflyer/internal/models"
	"github.com/dharmasatrya/ecoflyer/pkg/currency"
)

// DefaultOptionsPerDestination is how many itineraries are kept per city.
const DefaultOptionsPerDestination = 5

var ErrMissingField = errors.New("missing required field")

// FieldError names the raw record that could not be normalized. Leg is -1
// for itinerary-level fields.
type FieldError struct {
	Itinerary string
	Leg       int
	Field     string
	Err       error
}

func (e *FieldError) Error() string {
	if e.Leg < 0 {
		return fmt.Sprintf("itinerary %s: %s: %v", e.Itinerary, e.Field, e.Err)
	}
	return fmt.Sprintf("itinerary %s leg %d: %s: %v", e.Itinerary, e.Leg, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PhotoLookup returns an image URL for a city.
type PhotoLookup interface {
	Photo(ctx context.Context, city string) (string, error)
}

type Normalizer struct {
	photos     PhotoLookup
	maxOptions int
	currency   string
}

func NewNormalizer(photos PhotoLookup, optionsPerDestination int, currencyCode string) *Normalizer {
	if optionsPerDestination <= 0 {
		optionsPerDestination = DefaultOptionsPerDestination
	}
	if currencyCode == "" {
		currencyCode = "EUR"
	}
	return &Normalizer{
		photos:     photos,
		maxOptions: optionsPerDestination,
		currency:   currencyCode,
	}
}

// Normalize groups itineraries by destination city in first-seen order and
// keeps at most the configured number of options per city. The photo for a
// city is looked up once, on its first option, and shared by the rest.
func (n *Normalizer) Normalize(ctx context.Context, itineraries []models.RawItinerary) (models.ResultSet, error) {
	rs := make(models.ResultSet, 0)
	index := make(map[string]int)

	for _, raw := range itineraries {
		if raw.CityTo == nil {
			return nil, missing(raw.ID, -1, "cityTo")
		}
		city := *raw.CityTo

		pos, seen := index[city]
		if seen && len(rs[pos].Options) >= n.maxOptions {
			continue
		}

		opt, err := n.option(raw)
		if err != nil {
			return nil, err
		}

		if !seen {
			img, err := n.photos.Photo(ctx, city)
			if err != nil {
				return nil, fmt.Errorf("photo for %s: %w", city, err)
			}
			opt.ImgURL = img
			pos = len(rs)
			index[city] = pos
			rs = append(rs, models.Destination{City: city})
		} else {
			opt.ImgURL = rs[pos].Options[0].ImgURL
		}

		rs[pos].Options = append(rs[pos].Options, opt)
	}

	return rs, nil
}

func (n *Normalizer) option(raw models.RawItinerary) (models.Option, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"flyFrom", raw.FlyFrom},
		{"cityFrom", raw.CityFrom},
		{"flyTo", raw.FlyTo},
		{"cityTo", raw.CityTo},
		{"local_departure", raw.LocalDeparture},
		{"deep_link", raw.DeepLink},
	}
	for _, f := range required {
		if f.value == nil {
			return models.Option{}, missing(raw.ID, -1, f.name)
		}
	}
	if raw.Price == nil {
		return models.Option{}, missing(raw.ID, -1, "price")
	}
	if raw.Route == nil {
		return models.Option{}, missing(raw.ID, -1, "route")
	}

	opt := models.Option{
		FlyFrom:        *raw.FlyFrom,
		CityFrom:       *raw.CityFrom,
		FlyTo:          *raw.FlyTo,
		CityTo:         *raw.CityTo,
		LocalDeparture: *raw.LocalDeparture,
		Price:          *raw.Price,
		PriceFormatted: currency.Format(*raw.Price, n.currency),
		DeepLink:       *raw.DeepLink,
		Outbound:       make([]models.Leg, 0),
		Return:         make([]models.Leg, 0),
	}

	for i, rl := range raw.Route {
		leg, err := normalizeLeg(raw.ID, i, rl)
		if err != nil {
			return models.Option{}, err
		}
		if leg.Direction == models.Return {
			opt.Return = append(opt.Return, leg)
		} else {
			opt.Outbound = append(opt.Outbound, leg)
		}
	}

	return opt, nil
}

func normalizeLeg(itinerary string, i int, rl models.RawLeg) (models.Leg, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"flyFrom", rl.FlyFrom},
		{"cityFrom", rl.CityFrom},
		{"flyTo", rl.FlyTo},
		{"cityTo", rl.CityTo},
		{"local_departure", rl.LocalDeparture},
		{"airline", rl.Airline},
	}
	for _, f := range required {
		if f.value == nil {
			return models.Leg{}, missing(itinerary, i, f.name)
		}
	}
	if rl.FlightNo == nil {
		return models.Leg{}, missing(itinerary, i, "flight_no")
	}
	if rl.Return == nil {
		return models.Leg{}, missing(itinerary, i, "return")
	}

	var dir models.Direction
	switch *rl.Return {
	case 0:
		dir = models.Outbound
	case 1:
		dir = models.Return
	default:
		return models.Leg{}, &FieldError{
			Itinerary: itinerary,
			Leg:       i,
			Field:     "return",
			Err:       fmt.Errorf("unexpected direction flag %d", *rl.Return),
		}
	}

	departure, err := localtime.ParseTimestamp(*rl.LocalDeparture)
	if err != nil {
		return models.Leg{}, &FieldError{Itinerary: itinerary, Leg: i, Field: "local_departure", Err: err}
	}

	return models.Leg{
		FlyFrom:           *rl.FlyFrom,
		CityFrom:          *rl.CityFrom,
		FlyTo:             *rl.FlyTo,
		CityTo:            *rl.CityTo,
		LocalDeparture:    *rl.LocalDeparture,
		Departure:         departure,
		Airline:           *rl.Airline,
		FlightNo:          string(*rl.FlightNo),
		OperatingCarrier:  rl.OperatingCarrier,
		OperatingFlightNo: string(rl.OperatingFlightNo),
		Direction:         dir,
	}, nil
}

func missing(itinerary string, leg int, field string) error {
	return &FieldError{Itinerary: itinerary, Leg: leg, Field: field, Err: ErrMissingField}
}
