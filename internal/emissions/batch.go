// Package emissions turns a normalized result set into a batch of per-leg
// emissions queries and folds the provider's answers back into trip totals.
//
// Both directions walk the result set in the same order: destinations as
// listed, options by rank, outbound legs, then return legs. Every query also
// carries a correlation ID naming its leg, and folding matches answers by that
// ID, so a reordered or partial answer can never be attributed to the wrong
// leg.
package emissions

import (
	"fmt"

	"github.com/dharmasatrya/ecoflyer/internal/localtime"
	"github.com/dharmasatrya/ecoflyer/internal/models"
)

// LegRef identifies a leg by its position in a result set.
type LegRef struct {
	Destination int
	Option      int
	Direction   models.Direction
	Step        int
}

// ID is the correlation identifier sent with each query, e.g. "d0.o1.r2".
func (r LegRef) ID() string {
	dir := "o"
	if r.Direction == models.Return {
		dir = "r"
	}
	return fmt.Sprintf("d%d.o%d.%s%d", r.Destination, r.Option, dir, r.Step)
}

// FlightQuery is one element of an emissions batch.
type FlightQuery struct {
	ID           string
	Origin       string
	Destination  string
	Carrier      string
	FlightNumber int
	Date         localtime.Date
}

// LegEmission is the provider's answer for one query, in grams per passenger.
// Grams is models.UnknownEmissions when the provider has no data.
type LegEmission struct {
	ID    string
	Grams int64
}

// walk visits every leg in flattening order.
func walk(rs models.ResultSet, visit func(ref LegRef, leg models.Leg) error) error {
	for d, dest := range rs {
		for o, opt := range dest.Options {
			for _, dir := range []models.Direction{models.Outbound, models.Return} {
				for s, leg := range opt.Legs(dir) {
					ref := LegRef{Destination: d, Option: o, Direction: dir, Step: s}
					if err := visit(ref, leg); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// BuildBatch flattens every leg of every option into one emissions batch.
func BuildBatch(rs models.ResultSet) ([]FlightQuery, error) {
	batch := make([]FlightQuery, 0)
	err := walk(rs, func(ref LegRef, leg models.Leg) error {
		number, err := leg.FlightNumber()
		if err != nil {
			return fmt.Errorf("leg %s: %w", ref.ID(), err)
		}
		if leg.Departure.IsZero() {
			return fmt.Errorf("leg %s: departure time not parsed", ref.ID())
		}
		batch = append(batch, FlightQuery{
			ID:           ref.ID(),
			Origin:       leg.FlyFrom,
			Destination:  leg.FlyTo,
			Carrier:      leg.Carrier(),
			FlightNumber: number,
			Date:         localtime.DateOf(leg.Departure),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Zip pairs a positional list of values with the batch that produced it.
func Zip(batch []FlightQuery, grams []int64) ([]LegEmission, error) {
	if len(grams) != len(batch) {
		return nil, fmt.Errorf("emissions response has %d entries for %d flights", len(grams), len(batch))
	}
	out := make([]LegEmission, len(batch))
	for i, q := range batch {
		out[i] = LegEmission{ID: q.ID, Grams: grams[i]}
	}
	return out, nil
}
