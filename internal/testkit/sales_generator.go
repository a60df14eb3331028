package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"goeda/domain/dataset"
)

// SalesGeneratorConfig configures the sales data generator
type SalesGeneratorConfig struct {
	Rows      int       `json:"rows"`
	StartDate time.Time `json:"start_date"`
	Seed      int64     `json:"seed"`
	// OutlierEvery plants an extreme price every n rows; 0 disables it
	OutlierEvery int `json:"outlier_every"`
	// NullEvery blanks the discount every n rows; 0 disables it
	NullEvery int `json:"null_every"`
}

// DefaultSalesConfig returns sensible defaults for sales data generation
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Rows:         200,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:         42,
		OutlierEvery: 50,
		NullEvery:    20,
	}
}

// SalesDataGenerator generates a small retail table with every column kind
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a new sales data generator
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the table: price, quantity, revenue, discount, city, member, sold_at
func (g *SalesDataGenerator) Generate() (*dataset.Table, error) {
	n := g.config.Rows
	price := make([]float64, n)
	quantity := make([]int64, n)
	revenue := make([]float64, n)
	discount := make([]float64, n)
	city := make([]string, n)
	member := make([]bool, n)
	soldAt := make([]string, n)

	for i := 0; i < n; i++ {
		price[i] = math.Round((20+g.rng.NormFloat64()*4)*100) / 100
		if g.config.OutlierEvery > 0 && i%g.config.OutlierEvery == g.config.OutlierEvery-1 {
			price[i] = 400 + float64(i)
		}
		quantity[i] = int64(1 + g.rng.Intn(9))
		revenue[i] = price[i] * float64(quantity[i])
		discount[i] = math.Round(g.rng.Float64()*30) / 100
		if g.config.NullEvery > 0 && i%g.config.NullEvery == 0 {
			discount[i] = math.NaN()
		}
		city[i] = g.randomCity()
		member[i] = g.rng.Intn(2) == 0
		soldAt[i] = g.config.StartDate.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
	}

	return dataset.NewTable(fmt.Sprintf("sales_%d.csv", g.config.Seed),
		dataset.NewFloatColumn("price", price),
		dataset.NewIntColumn("quantity", quantity),
		dataset.NewFloatColumn("revenue", revenue),
		dataset.NewFloatColumn("discount", discount),
		dataset.NewStringColumn("city", city),
		dataset.NewBoolColumn("member", member),
		dataset.NewDatetimeColumn("sold_at", soldAt),
	)
}

// SalesTable generates the default sales table
func SalesTable() *dataset.Table {
	t, err := NewSalesDataGenerator(DefaultSalesConfig()).Generate()
	if err != nil {
		panic(err)
	}
	return t
}

func (g *SalesDataGenerator) randomCity() string {
	cities := []string{"Lima", "Quito", "Bogota", "Santiago", "Caracas"}
	weights := []float64{0.45, 0.25, 0.15, 0.12, 0.03}
	return g.weightedChoice(cities, weights)
}

func (g *SalesDataGenerator) weightedChoice(choices []string, weights []float64) string {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
