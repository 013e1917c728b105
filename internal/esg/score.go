package esg

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrComputation signals an input that passed validation but cannot be scored.
// It is an internal invariant violation, never a user error.
var ErrComputation = errors.New("esg computation error")

// billToKwh converts an electricity bill into kWh at an average tariff
const billToKwh = 0.12

// Weights combine the category scores into the overall score
type Weights struct {
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
	Governance    float64 `json:"governance"`
}

// DefaultWeights weigh environmental 40% and social and governance 30% each
func DefaultWeights() Weights {
	return Weights{Environmental: 0.4, Social: 0.3, Governance: 0.3}
}

// Validate checks that every weight is non-negative and the weights sum to 1
func (w Weights) Validate() error {
	if w.Environmental < 0 || w.Social < 0 || w.Governance < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	sum := decimal.NewFromFloat(w.Environmental).
		Add(decimal.NewFromFloat(w.Social)).
		Add(decimal.NewFromFloat(w.Governance))
	if !sum.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("scoring weights must sum to 1, got %s", sum.String())
	}
	return nil
}

// Factor is one scored sub-factor of a category
type Factor struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Max   float64 `json:"max"`
	Notes string  `json:"notes,omitempty"`
}

// Breakdown lists the sub-factors behind each category score
type Breakdown struct {
	Environmental []Factor `json:"environmental"`
	Social        []Factor `json:"social"`
	Governance    []Factor `json:"governance"`
}

// Snapshot is the derived result of scoring one submission
type Snapshot struct {
	EnvironmentalScore float64         `json:"environmental_score"`
	SocialScore        float64         `json:"social_score"`
	GovernanceScore    float64         `json:"governance_score"`
	OverallScore       float64         `json:"overall_esg_score"`
	DataCompleteness   float64         `json:"data_completeness"`
	AdvancedDisclosure float64         `json:"advanced_disclosure"`
	MissingFields      []string        `json:"missing_fields"`
	Confidence         Confidence      `json:"confidence_level"`
	Carbon             CarbonFootprint `json:"carbon"`
	KwhPerEmployee     Opt[float64]    `json:"kwh_per_employee"`
	Breakdown          Breakdown       `json:"score_breakdown"`
}

// CategoryScore returns the score of one pillar
func (s Snapshot) CategoryScore(c Category) float64 {
	switch c {
	case CategoryEnvironmental:
		return s.EnvironmentalScore
	case CategorySocial:
		return s.SocialScore
	case CategoryGovernance:
		return s.GovernanceScore
	default:
		return 0
	}
}

// Engine scores submissions with a fixed set of weights
type Engine struct {
	weights Weights
}

// NewEngine creates an engine, rejecting weights that do not sum to 1
func NewEngine(w Weights) (*Engine, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: w}, nil
}

// Weights returns the weights the engine combines categories with
func (e *Engine) Weights() Weights {
	return e.weights
}

// Score computes a snapshot. The same profile and input always produce the
// same snapshot.
func (e *Engine) Score(p BusinessProfile, in ESGInput) (Snapshot, error) {
	if p.EmployeeCount < 1 {
		return Snapshot{}, fmt.Errorf("%w: employee count %d", ErrComputation, p.EmployeeCount)
	}

	breakdown := Breakdown{
		Environmental: environmentalFactors(p, in),
		Social:        socialFactors(in),
		Governance:    governanceFactors(in),
	}

	env := categoryScore(breakdown.Environmental)
	social := categoryScore(breakdown.Social)
	gov := categoryScore(breakdown.Governance)

	overall := OverallScore(env, social, gov, e.weights)
	if math.IsNaN(overall) || overall < 0 || overall > 100 {
		return Snapshot{}, fmt.Errorf("%w: overall score %v out of range", ErrComputation, overall)
	}

	completeness := MeasureCompleteness(p, in)

	return Snapshot{
		EnvironmentalScore: env,
		SocialScore:        social,
		GovernanceScore:    gov,
		OverallScore:       overall,
		DataCompleteness:   completeness.DataCompleteness,
		AdvancedDisclosure: completeness.AdvancedDisclosure,
		MissingFields:      completeness.MissingFields,
		Confidence:         completeness.Confidence,
		Carbon:             EstimateCarbon(in),
		KwhPerEmployee:     energyIntensity(p, in),
		Breakdown:          breakdown,
	}, nil
}

// OverallScore is the weighted sum of the three category scores, computed
// exactly on the two-decimal category values
func OverallScore(env, social, gov float64, w Weights) float64 {
	sum := decimal.NewFromFloat(env).Mul(decimal.NewFromFloat(w.Environmental)).
		Add(decimal.NewFromFloat(social).Mul(decimal.NewFromFloat(w.Social))).
		Add(decimal.NewFromFloat(gov).Mul(decimal.NewFromFloat(w.Governance)))
	return sum.InexactFloat64()
}

func categoryScore(factors []Factor) float64 {
	total := decimal.Zero
	for _, f := range factors {
		total = total.Add(decimal.NewFromFloat(f.Score))
	}
	return clampScore(total.Round(2).InexactFloat64())
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func environmentalFactors(p BusinessProfile, in ESGInput) []Factor {
	employees := float64(p.EmployeeCount)
	return []Factor{
		energyFactor(p, in, employees),
		waterFactorScore(in, employees),
		wasteFactor(in),
		renewableFactorScore(in),
	}
}

// monthlyKwh returns reported kWh, or an estimate from the bill
func monthlyKwh(in ESGInput) (float64, bool) {
	if kwh, ok := in.ElectricityKwh.Get(); ok {
		return kwh, true
	}
	if bill, ok := in.ElectricityBillAmount.Get(); ok {
		return bill / billToKwh, true
	}
	return 0, false
}

// energyIntensity is monthly electricity per employee of the business. The
// energy score and the efficiency recommendation both read it.
func energyIntensity(p BusinessProfile, in ESGInput) Opt[float64] {
	kwh, ok := monthlyKwh(in)
	if !ok || p.EmployeeCount < 1 {
		return None[float64]()
	}
	return Some(kwh / float64(p.EmployeeCount))
}

func energyFactor(p BusinessProfile, in ESGInput, employees float64) Factor {
	f := Factor{Name: "energy", Max: 40}

	if perEmployee, known := energyIntensity(p, in).Get(); known {
		switch {
		case perEmployee < 200:
			f.Score += 30
		case perEmployee < 300:
			f.Score += 20
		case perEmployee < 500:
			f.Score += 10
		default:
			f.Score += 5
		}
		f.Notes = fmt.Sprintf("%.0f kWh per employee per month", perEmployee)
	}

	if liters, ok := in.GeneratorUsageLiters.Get(); ok {
		perEmployee := liters / employees
		switch {
		case perEmployee < 10:
			f.Score += 5
		case perEmployee < 30:
			f.Score += 3
		default:
			f.Score++
		}
	} else if in.GeneratorUsageHours.IsSet() {
		f.Score += 3
	}

	if area, ok := p.OfficeAreaSqm.Get(); ok && area > 0 && known {
		if kwh/area < 20 {
			f.Score += 5
		}
	}

	f.Score = math.Min(f.Score, f.Max)
	return f
}

func waterFactorScore(in ESGInput, employees float64) Factor {
	f := Factor{Name: "water", Max: 20}

	switch in.WaterSource {
	case WaterMunicipal, WaterRainwater:
		f.Score += 8
	case WaterBorehole:
		f.Score += 6
	case WaterBoth:
		f.Score += 5
	case WaterOther:
		f.Score += 4
	}

	if liters, ok := in.WaterUsageLiters.Get(); ok {
		perEmployee := liters / employees
		switch {
		case perEmployee < 5000:
			f.Score += 12
		case perEmployee < 10000:
			f.Score += 8
		default:
			f.Score += 4
		}
		f.Notes = fmt.Sprintf("%.0f litres per employee per month", perEmployee)
	}

	return f
}

func wasteFactor(in ESGInput) Factor {
	f := Factor{Name: "waste", Max: 30}
	if in.WasteRecycling {
		f.Score += 15
		switch in.WasteRecyclingFrequency {
		case FrequencyDaily:
			f.Score += 10
		case FrequencyWeekly:
			f.Score += 7
		case FrequencyMonthly:
			f.Score += 4
		case FrequencyRarely:
			f.Score += 2
		}
	}
	if in.WasteSegregation {
		f.Score += 5
	}
	return f
}

func renewableFactorScore(in ESGInput) Factor {
	f := Factor{Name: "renewable", Max: 10}

	solar := 0.0
	if in.HasSolar {
		solar = 5
		if kw, ok := in.SolarCapacityKw.Get(); ok {
			switch {
			case kw >= 10:
				solar += 5
			case kw >= 5:
				solar += 3
			case kw > 0:
				solar += 2
			}
		}
	}
	share := in.RenewableEnergyPercentage.OrZero() / 10

	f.Score = math.Min(math.Max(solar, share), f.Max)
	return f
}

func socialFactors(in ESGInput) []Factor {
	training := Factor{Name: "safety_training", Max: 30}
	if in.SafetyTrainingProvided {
		training.Score = 20
		switch in.SafetyTrainingFrequency {
		case FrequencyMonthly:
			training.Score += 10
		case FrequencyQuarterly:
			training.Score += 7
		case FrequencyAnnually:
			training.Score += 5
		case FrequencyRarely:
			training.Score += 2
		}
	}

	benefits := Factor{
		Name:  "employee_benefits",
		Max:   25,
		Score: math.Min(5*float64(len(in.EmployeeBenefits)), 25),
	}

	health := Factor{Name: "health_insurance", Max: 20}
	if in.HealthInsurance {
		health.Score = 20
	}

	diversity := Factor{Name: "diversity_policy", Max: 15}
	if in.DiversityPolicy {
		diversity.Score = 15
	}

	size := Factor{Name: "team_size", Max: 10}
	switch n := in.TotalEmployees; {
	case n >= 50:
		size.Score = 10
	case n >= 20:
		size.Score = 7
	case n >= 10:
		size.Score = 5
	default:
		size.Score = 3
	}

	return []Factor{training, benefits, health, diversity, size}
}

func governanceFactors(in ESGInput) []Factor {
	policies := in.CorePolicies()
	factors := make([]Factor, 0, len(policies))
	for _, p := range policies {
		f := Factor{Name: p.Field, Max: p.Points}
		if p.InPlace {
			f.Score = p.Points
		}
		factors = append(factors, f)
	}
	return factors
}
