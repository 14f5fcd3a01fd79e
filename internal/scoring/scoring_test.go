package scoring

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/BaskovKonstantin/EstateFinder/internal/estate"
	"github.com/BaskovKonstantin/EstateFinder/platform/config"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestScorer(t *testing.T, weightsFile string) *Scorer {
	t.Helper()
	s, err := New(&config.Config{WeightsFile: weightsFile})
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	return s
}

func TestComputeStats(t *testing.T) {
	estates := []*estate.Record{
		{
			Price:     estate.Float(100),
			TotalArea: estate.Float(10),
			NearbyGrouped: map[string][]estate.POI{
				"public_transport=platform": {{}, {}},
				"amenity=cafe":              {{}},
			},
		},
		{
			Price:     estate.Float(300),
			TotalArea: estate.Float(10),
			NearbyGrouped: map[string][]estate.POI{
				"shop=bakery": {{}, {}, {}},
			},
		},
		{
			// No price: excluded from the price series only.
			TransportNearby: map[string]int{"stops": 4},
		},
	}

	stats := ComputeStats(estates)

	if !almostEqual(stats[MetricPricePerSqm].Mean, 20) {
		t.Fatalf("unexpected price mean %v", stats[MetricPricePerSqm].Mean)
	}
	// Sample stdev of {10, 30}.
	if !almostEqual(stats[MetricPricePerSqm].Stdev, math.Sqrt(200)) {
		t.Fatalf("unexpected price stdev %v", stats[MetricPricePerSqm].Stdev)
	}
	// Transport series is {2, 0, 4}.
	if !almostEqual(stats[MetricTransport].Mean, 2) {
		t.Fatalf("unexpected transport mean %v", stats[MetricTransport].Mean)
	}
	// Competition counts cafes; infrastructure counts cafes and shops.
	if !almostEqual(stats[MetricCompetition].Mean, 1.0/3) {
		t.Fatalf("unexpected competition mean %v", stats[MetricCompetition].Mean)
	}
	if !almostEqual(stats[MetricInfrastructure].Mean, 4.0/3) {
		t.Fatalf("unexpected infrastructure mean %v", stats[MetricInfrastructure].Mean)
	}
}

func TestSafeStatDegenerateBatches(t *testing.T) {
	if s := safeStat(nil); s.Mean != 0 || s.Stdev != 1 {
		t.Fatalf("empty series: got %+v", s)
	}
	if s := safeStat([]float64{7}); s.Mean != 7 || s.Stdev != 1 {
		t.Fatalf("single-element series: got %+v", s)
	}
}

func TestEvaluateCentersOnFifty(t *testing.T) {
	s := newTestScorer(t, "")

	est := &estate.Record{Price: estate.Float(200), TotalArea: estate.Float(10)}
	stats := Stats{
		MetricPricePerSqm:       {Mean: 20, Stdev: 5},
		MetricTransport:         {Mean: 0, Stdev: 1},
		MetricCompetition:       {Mean: 0, Stdev: 1},
		MetricInfrastructure:    {Mean: 0, Stdev: 1},
		MetricPopulationDensity: {Mean: 0, Stdev: 1},
		MetricAvgIncome:         {Mean: 0, Stdev: 1},
	}

	scores := s.Evaluate(est, stats, "standard")

	for _, name := range []string{
		ScorePrice, ScoreTransport, ScoreCompetition, ScoreInfrastructure,
		ScoreDemographic, ScoreLocation, ScoreComposite, ScoreIncome,
	} {
		got, ok := scores[name]
		if !ok {
			t.Fatalf("missing score %s", name)
		}
		if !almostEqual(got, 50) {
			t.Fatalf("expected %s at the mean to be 50, got %v", name, got)
		}
	}
}

func TestEvaluateInvertsPriceAndCompetition(t *testing.T) {
	s := newTestScorer(t, "")

	stats := Stats{
		MetricPricePerSqm:       {Mean: 20, Stdev: 10},
		MetricTransport:         {Mean: 0, Stdev: 1},
		MetricCompetition:       {Mean: 1, Stdev: 1},
		MetricInfrastructure:    {Mean: 0, Stdev: 1},
		MetricPopulationDensity: {Mean: 0, Stdev: 1},
		MetricAvgIncome:         {Mean: 0, Stdev: 1},
	}

	expensive := &estate.Record{Price: estate.Float(300), TotalArea: estate.Float(10)}
	scores := s.Evaluate(expensive, stats, "standard")
	if scores[ScorePrice] >= 50 {
		t.Fatalf("pricier than the mean must score below 50, got %v", scores[ScorePrice])
	}

	contested := &estate.Record{
		NearbyGrouped: map[string][]estate.POI{
			"amenity=restaurant": {{}, {}, {}},
		},
	}
	scores = s.Evaluate(contested, stats, "standard")
	if scores[ScoreCompetition] >= 50 {
		t.Fatalf("crowded locations must score below 50, got %v", scores[ScoreCompetition])
	}
}

func TestEvaluateZeroStdevYieldsNeutralScore(t *testing.T) {
	s := newTestScorer(t, "")

	stats := Stats{MetricPricePerSqm: {Mean: 20, Stdev: 0}}
	est := &estate.Record{Price: estate.Float(999), TotalArea: estate.Float(1)}

	if got := s.Evaluate(est, stats, "standard")[ScorePrice]; !almostEqual(got, 50) {
		t.Fatalf("zero stdev must neutralize the metric, got %v", got)
	}
}

func TestProfileFallsBackToStandard(t *testing.T) {
	s := newTestScorer(t, "")

	if got := s.Profile("nonexistent"); got != s.Profile("standard") {
		t.Fatalf("expected standard fallback, got %+v", got)
	}
	if s.HasProfile("nonexistent") {
		t.Fatal("unknown profile must not be reported as known")
	}
	if !s.HasProfile("fast_food") {
		t.Fatal("built-in profile missing")
	}
}

func TestLoadProfilesOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := `
coffee_point:
  top: {price: 0.6, location: 0.4}
  sub: {transport: 0.7, competition: 0.1, infrastructure: 0.1, demo: 0.1}
standard:
  top: {price: 0.5, location: 0.5}
  sub: {transport: 0.4, competition: 0.3, infrastructure: 0.3, demo: 0.0}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write weights: %v", err)
	}

	profiles, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if profiles["coffee_point"].Sub.Transport != 0.7 {
		t.Fatalf("custom profile not loaded: %+v", profiles["coffee_point"])
	}
	if profiles["standard"].Top.Price != 0.5 {
		t.Fatalf("override not applied: %+v", profiles["standard"])
	}
	if profiles["premium"].Top.Location != 0.7 {
		t.Fatalf("built-in profile lost: %+v", profiles["premium"])
	}
}
