package scoring

import (
	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
)

// Score field names carried in the flattened search response.
const (
	ScorePrice          = "price_score"
	ScoreTransport      = "transport_score"
	ScoreCompetition    = "competition_score"
	ScoreInfrastructure = "infrastructure_score"
	ScoreDemographic    = "demographic_score"
	ScoreLocation       = "location_score"
	ScoreComposite      = "composite_score"
	ScoreIncome         = "income_score"
)

// Scorer evaluates estates against batch statistics using a venue profile.
type Scorer struct {
	profiles map[string]Weights
}

func New(cfg config.ScoringConfig) (*Scorer, error) {
	profiles, err := LoadProfiles(cfg.GetWeightsFile())
	if err != nil {
		return nil, err
	}
	return &Scorer{profiles: profiles}, nil
}

// Profile returns the named venue profile, falling back to the standard one.
func (s *Scorer) Profile(venueType string) Weights {
	if w, ok := s.profiles[venueType]; ok {
		return w
	}
	return s.profiles[DefaultVenueType]
}

// HasProfile reports whether the venue type is known.
func (s *Scorer) HasProfile(venueType string) bool {
	_, ok := s.profiles[venueType]
	return ok
}

// Evaluate scores one estate against the batch. Each metric becomes a
// z-score against the batch distribution and lands on a 50±10 scale; price
// and competition are inverted, cheaper and less contested is better.
func (s *Scorer) Evaluate(est *estate.Record, stats Stats, venueType string) map[string]float64 {
	weights := s.Profile(venueType)

	z := func(raw float64, metric string) float64 {
		stat := stats[metric]
		if stat.Stdev == 0 {
			return 0
		}
		return (raw - stat.Mean) / stat.Stdev
	}

	priceZ := -z(est.PricePerArea(), MetricPricePerSqm)
	transportZ := z(rawTransport(est), MetricTransport)
	compZ := -z(rawCompetition(est), MetricCompetition)
	infraZ := z(rawInfrastructure(est), MetricInfrastructure)
	demoZ := z(extraFloat(est, "population_density"), MetricPopulationDensity)
	incomeZ := z(extraFloat(est, "avg_income"), MetricAvgIncome)

	locationZ := transportZ*weights.Sub.Transport +
		compZ*weights.Sub.Competition +
		infraZ*weights.Sub.Infrastructure +
		demoZ*weights.Sub.Demo
	compositeZ := priceZ*weights.Top.Price + locationZ*weights.Top.Location

	toScore := func(v float64) float64 { return 50 + 10*v }

	return map[string]float64{
		ScorePrice:          toScore(priceZ),
		ScoreTransport:      toScore(transportZ),
		ScoreCompetition:    toScore(compZ),
		ScoreInfrastructure: toScore(infraZ),
		ScoreDemographic:    toScore(demoZ),
		ScoreLocation:       toScore(locationZ),
		ScoreComposite:      toScore(compositeZ),
		ScoreIncome:         toScore(incomeZ),
	}
}

// VenueTypes lists the known profile names.
func (s *Scorer) VenueTypes() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	return names
}
