package ranking

import (
	"math"
	"sort"

	"github.com/dharmasatrya/ecoflyer/internal/models"
)

// SortOptions orders options by ascending trip emissions. The sort is stable,
// so options with equal emissions keep the search API's quality order.
func SortOptions(options []models.Option) []models.Option {
	result := make([]models.Option, len(options))
	copy(result, options)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TripEmissions < result[j].TripEmissions
	})
	return result
}

// MinTripEmissions is the best-case emissions of a destination. A destination
// without options sorts last.
func MinTripEmissions(d models.Destination) int64 {
	best := int64(math.MaxInt64)
	for _, opt := range d.Options {
		if opt.TripEmissions < best {
			best = opt.TripEmissions
		}
	}
	return best
}

// RankDestinations returns the destinations ordered by ascending best-case
// trip emissions. Ties keep their input order. The input is not modified.
func RankDestinations(rs models.ResultSet) models.ResultSet {
	if len(rs) == 0 {
		return rs
	}

	keys := make(map[string]int64, len(rs))
	for _, d := range rs {
		keys[d.City] = MinTripEmissions(d)
	}

	result := make(models.ResultSet, len(rs))
	copy(result, rs)

	sort.SliceStable(result, func(i, j int) bool {
		return keys[result[i].City] < keys[result[j].City]
	})
	return result
}
