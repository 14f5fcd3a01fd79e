package scoring

import (
	"math"
	"strings"

	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
)

// Stat is the mean and standard deviation of one metric across the batch.
type Stat struct {
	Mean  float64
	Stdev float64
}

// Stats maps metric names to their batch distribution.
type Stats map[string]Stat

// Metric names.
const (
	MetricPricePerSqm       = "price_psqm"
	MetricTransport         = "transport"
	MetricCompetition       = "competition"
	MetricInfrastructure    = "infrastructure"
	MetricPopulationDensity = "population_density"
	MetricAvgIncome         = "avg_income"
)

// ComputeStats aggregates the metric distributions over a batch of estates.
// Price is computed only over estates that carry both price and area; the
// remaining metrics default to zero for estates without enrichment data.
func ComputeStats(estates []*estate.Record) Stats {
	var price []float64
	transport := make([]float64, 0, len(estates))
	competition := make([]float64, 0, len(estates))
	infrastructure := make([]float64, 0, len(estates))
	population := make([]float64, 0, len(estates))
	income := make([]float64, 0, len(estates))

	for _, est := range estates {
		if psqm := est.PricePerArea(); psqm > 0 {
			price = append(price, psqm)
		}
		transport = append(transport, rawTransport(est))
		competition = append(competition, rawCompetition(est))
		infrastructure = append(infrastructure, rawInfrastructure(est))
		population = append(population, extraFloat(est, "population_density"))
		income = append(income, extraFloat(est, "avg_income"))
	}

	return Stats{
		MetricPricePerSqm:       safeStat(price),
		MetricTransport:         safeStat(transport),
		MetricCompetition:       safeStat(competition),
		MetricInfrastructure:    safeStat(infrastructure),
		MetricPopulationDensity: safeStat(population),
		MetricAvgIncome:         safeStat(income),
	}
}

// safeStat degrades gracefully on tiny batches: an empty series has mean 0
// and a single-element series gets stdev 1 so z-scores stay finite.
func safeStat(values []float64) Stat {
	if len(values) == 0 {
		return Stat{Mean: 0, Stdev: 1}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	if len(values) < 2 {
		return Stat{Mean: mean, Stdev: 1}
	}

	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return Stat{Mean: mean, Stdev: math.Sqrt(sqDiff / float64(len(values)-1))}
}

func rawTransport(est *estate.Record) float64 {
	total := float64(est.TransportNearby["stops"])
	for tag, objects := range est.NearbyGrouped {
		if strings.HasPrefix(tag, "public_transport") {
			total += float64(len(objects))
		}
	}
	return total
}

var competitionTags = []string{"amenity=restaurant", "amenity=cafe", "amenity=bar"}

func rawCompetition(est *estate.Record) float64 {
	var total float64
	for tag, objects := range est.NearbyGrouped {
		for _, prefix := range competitionTags {
			if strings.HasPrefix(tag, prefix) {
				total += float64(len(objects))
				break
			}
		}
	}
	return total
}

var infrastructureTags = []string{"shop=", "office=", "leisure=", "amenity=", "tourism="}

func rawInfrastructure(est *estate.Record) float64 {
	var total float64
	for tag, objects := range est.NearbyGrouped {
		for _, prefix := range infrastructureTags {
			if strings.HasPrefix(tag, prefix) {
				total += float64(len(objects))
				break
			}
		}
	}
	return total
}

func extraFloat(est *estate.Record, key string) float64 {
	if est.Extra == nil {
		return 0
	}
	switch v := est.Extra[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
