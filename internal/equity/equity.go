// Package equity computes a founder equity split from weighted contribution scores.
package equity

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/formation-kit/internal/types"
)

// Axis weights; they sum to 1
const (
	WeightSkills  = 0.30
	WeightCapital = 0.30
	WeightTime    = 0.25
	WeightIP      = 0.15
)

// Axis bounds
const (
	MinAxis = 0.0
	MaxAxis = 10.0
)

// MinFounders is the number of named founders needed to compute a split
const MinFounders = 2

// ComputationError reports why no split could be computed
type ComputationError struct {
	Message string
	Founder string
	Field   string
}

func (e *ComputationError) Error() string {
	if e.Founder != "" {
		return fmt.Sprintf("equity computation failed: %s (founder %q, %s)", e.Message, e.Founder, e.Field)
	}
	return fmt.Sprintf("equity computation failed: %s", e.Message)
}

// Score returns the weighted contribution score of one founder
func Score(c types.FounderContribution) float64 {
	return WeightSkills*c.Skills + WeightCapital*c.Capital + WeightTime*c.Time + WeightIP*c.IP
}

// Compute returns each named founder's percentage, rounded to one decimal.
// Contributions with blank names are excluded; values outside [0,10] are rejected.
func Compute(contributions []types.FounderContribution) ([]types.Allocation, error) {
	named := make([]types.FounderContribution, 0, len(contributions))
	for _, c := range contributions {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		if err := checkRange(c); err != nil {
			return nil, err
		}
		named = append(named, c)
	}

	if len(named) < MinFounders {
		return nil, &ComputationError{
			Message: fmt.Sprintf("at least %d named founders are required, got %d", MinFounders, len(named)),
		}
	}

	scores := make([]float64, len(named))
	var total float64
	for i, c := range named {
		scores[i] = Score(c)
		total += scores[i]
	}
	if total == 0 {
		return nil, &ComputationError{Message: "no contribution signal"}
	}

	out := make([]types.Allocation, len(named))
	for i, c := range named {
		out[i] = types.Allocation{
			Name:       c.Name,
			Score:      round(scores[i], 2),
			Percentage: round(100*scores[i]/total, 1),
		}
	}
	return out, nil
}

// Total sums the allocated percentages
func Total(allocations []types.Allocation) float64 {
	var sum float64
	for _, a := range allocations {
		sum += a.Percentage
	}
	return round(sum, 1)
}

func checkRange(c types.FounderContribution) error {
	axes := []struct {
		name  string
		value float64
	}{
		{"skills", c.Skills},
		{"capital", c.Capital},
		{"time", c.Time},
		{"ip", c.IP},
	}
	for _, a := range axes {
		if math.IsNaN(a.value) || a.value < MinAxis || a.value > MaxAxis {
			return &ComputationError{
				Message: fmt.Sprintf("contribution must be between %g and %g", MinAxis, MaxAxis),
				Founder: c.Name,
				Field:   a.name,
			}
		}
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
