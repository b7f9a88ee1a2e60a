package aggregator

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dharmasatrya/ecoflyer/internal/airports"
	"github.com/dharmasatrya/ecoflyer/internal/emissions"
	"github.com/dharmasatrya/ecoflyer/internal/localtime"
	"github.com/dharmasatrya/ecoflyer/internal/models"
	"github.com/dharmasatrya/ecoflyer/internal/providers"
	"github.com/dharmasatrya/ecoflyer/internal/ranking"
	"github.com/dharmasatrya/ecoflyer/internal/trips"
)

type FlightSearcher interface {
	Search(ctx context.Context, q providers.Query) ([]models.RawItinerary, error)
}

type EmissionsCalculator interface {
	ComputeEmissions(ctx context.Context, batch []emissions.FlightQuery) ([]emissions.LegEmission, error)
}

type Config struct {
	Timeout               time.Duration
	OriginRadiusKm        float64
	OptionsPerDestination int
	Currency              string
	ResultLimit           int
}

func DefaultConfig() Config {
	return Config{
		Timeout:               60 * time.Second,
		OriginRadiusKm:        100,
		OptionsPerDestination: trips.DefaultOptionsPerDestination,
		Currency:              "EUR",
		ResultLimit:           providers.DefaultTequilaLimit,
	}
}

type Aggregator struct {
	airports   *airports.Table
	flights    FlightSearcher
	emissions  EmissionsCalculator
	normalizer *trips.Normalizer
	config     Config
}

type Result struct {
	Destinations models.ResultSet
	Itineraries  int
	LegsQueried  int
	Stats        emissions.FoldStats
	Elapsed      time.Duration
}

func NewAggregator(table *airports.Table, flights FlightSearcher, calc EmissionsCalculator, photos trips.PhotoLookup, config Config) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.OriginRadiusKm <= 0 {
		config.OriginRadiusKm = DefaultConfig().OriginRadiusKm
	}
	return &Aggregator{
		airports:   table,
		flights:    flights,
		emissions:  calc,
		normalizer: trips.NewNormalizer(photos, config.OptionsPerDestination, config.Currency),
		config:     config,
	}
}

// Search runs the whole pipeline for one request: airport selection, flight
// search, normalization, emissions, folding and ranking. Stages run in order
// and the first failure ends the request with a StageError.
func (a *Aggregator) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	start := time.Now()

	searchCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if err := req.Validate(); err != nil {
		return nil, &StageError{Stage: StageInput, Err: err}
	}

	q, err := a.query(req)
	if err != nil {
		return nil, err
	}

	raw, err := a.flights.Search(searchCtx, q)
	if err != nil {
		if errors.Is(err, providers.ErrNoFlights) {
			return nil, &StageError{Stage: StageNoFlights, Err: err}
		}
		return nil, &StageError{Stage: StageFlights, Err: err}
	}

	rs, err := a.normalizer.Normalize(searchCtx, raw)
	if err != nil {
		return nil, &StageError{Stage: StageNormalize, Err: err}
	}

	batch, err := emissions.BuildBatch(rs)
	if err != nil {
		return nil, &StageError{Stage: StageFold, Err: err}
	}

	values, err := a.emissions.ComputeEmissions(searchCtx, batch)
	if err != nil {
		return nil, &StageError{Stage: StageEmissions, Err: err}
	}

	folded, stats, err := emissions.Fold(rs, values)
	if err != nil {
		return nil, &StageError{Stage: StageFold, Err: err}
	}

	result := &Result{
		Destinations: ranking.RankDestinations(folded),
		Itineraries:  len(raw),
		LegsQueried:  len(batch),
		Stats:        stats,
		Elapsed:      time.Since(start),
	}

	log.Printf("Search %s-%s from (%.3f, %.3f): %d itineraries, %d legs, %d unknown legs, %d options dropped, %d destinations removed, %d ranked in %v",
		req.OutboundDate, req.ReturnDate, float64(req.LatLong.Lat), float64(req.LatLong.Long),
		result.Itineraries, result.LegsQueried, stats.UnknownLegs, stats.DroppedOptions,
		stats.RemovedDestinations, len(result.Destinations), result.Elapsed)

	return result, nil
}

// query selects origin and destination airports and builds the flight
// search. req must already be validated.
func (a *Aggregator) query(req models.SearchRequest) (providers.Query, error) {
	lat, long := float64(req.LatLong.Lat), float64(req.LatLong.Long)

	origins := a.airports.Codes(lat, long, a.config.OriginRadiusKm, 0)
	if origins == "" {
		return providers.Query{}, &StageError{Stage: StageAirports, Err: ErrNoOriginAirports}
	}

	minKm, maxKm := req.RadiusBand()
	destinations := a.airports.Codes(lat, long, maxKm, minKm)
	if destinations == "" {
		return providers.Query{}, &StageError{Stage: StageAirports, Err: ErrNoDestinationAirports}
	}

	dates := make([]string, 4)
	for i, d := range []string{req.OutboundDate, req.OutboundDateEndRange, req.ReturnDate, req.ReturnDateEndRange} {
		t, err := localtime.ParseDate(d)
		if err != nil {
			return providers.Query{}, &StageError{Stage: StageInput, Err: err}
		}
		dates[i] = localtime.FormatTequila(t)
	}

	return providers.Query{
		FlyFrom:     origins,
		FlyTo:       destinations,
		DateFrom:    dates[0],
		DateTo:      dates[1],
		ReturnFrom:  dates[2],
		ReturnTo:    dates[3],
		PriceTo:     req.PriceLimit(),
		Currency:    a.config.Currency,
		ResultLimit: a.config.ResultLimit,
	}, nil
}
