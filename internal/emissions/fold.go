package emissions

import (
	"fmt"
	"sort"

	"github.com/dharmasatrya/ecoflyer/internal/models"
	"github.com/dharmasatrya/ecoflyer/internal/ranking"
)

type FoldStats struct {
	UnknownLegs         int
	DroppedOptions      int
	RemovedDestinations int
}

// Fold attaches emissions to every leg and returns a new result set in which
// each option carries its trip total. Options with any unknown leg are
// dropped, survivors are re-sorted by trip emissions, and destinations left
// without options are removed. The input result set is not modified.
func Fold(rs models.ResultSet, values []LegEmission) (models.ResultSet, FoldStats, error) {
	var stats FoldStats

	byID := make(map[string]int64, len(values))
	for _, v := range values {
		if _, dup := byID[v.ID]; dup {
			return nil, stats, fmt.Errorf("duplicate emissions entry for leg %s", v.ID)
		}
		byID[v.ID] = v.Grams
	}

	used := make(map[string]bool, len(values))
	lookup := func(ref LegRef) (int64, error) {
		id := ref.ID()
		grams, ok := byID[id]
		if !ok {
			return 0, fmt.Errorf("no emissions entry for leg %s", id)
		}
		used[id] = true
		return grams, nil
	}

	folded := make(models.ResultSet, 0, len(rs))
	for d, dest := range rs {
		survivors := make([]models.Option, 0, len(dest.Options))

		for o, opt := range dest.Options {
			next := opt
			next.Outbound = make([]models.Leg, len(opt.Outbound))
			next.Return = make([]models.Leg, len(opt.Return))

			admissible := true
			var total int64

			// Every leg is visited even after an unknown one so the
			// counters cover the whole option.
			for _, dir := range []models.Direction{models.Outbound, models.Return} {
				src, dst := opt.Legs(dir), next.Legs(dir)
				for s, leg := range src {
					grams, err := lookup(LegRef{Destination: d, Option: o, Direction: dir, Step: s})
					if err != nil {
						return nil, stats, err
					}
					leg.FlightEmissions = grams
					dst[s] = leg

					if grams == models.UnknownEmissions {
						stats.UnknownLegs++
						admissible = false
						continue
					}
					total += grams
				}
			}

			if !admissible {
				stats.DroppedOptions++
				continue
			}
			next.TripEmissions = total
			survivors = append(survivors, next)
		}

		if len(survivors) == 0 {
			stats.RemovedDestinations++
			continue
		}
		folded = append(folded, models.Destination{
			City:    dest.City,
			Options: ranking.SortOptions(survivors),
		})
	}

	if len(used) != len(byID) {
		var stray []string
		for id := range byID {
			if !used[id] {
				stray = append(stray, id)
			}
		}
		sort.Strings(stray)
		return nil, stats, fmt.Errorf("emissions entries match no leg: %v", stray)
	}

	return folded, stats, nil
}
