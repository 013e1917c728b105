package esg

import "github.com/shopspring/decimal"

// CarbonStatus grades the yearly footprint
type CarbonStatus string

const (
	CarbonLow    CarbonStatus = "low"
	CarbonMedium CarbonStatus = "medium"
	CarbonHigh   CarbonStatus = "high"
)

var (
	gridFactor       = decimal.RequireFromString("0.5")  // kg CO2 per grid kWh
	renewableFactor  = decimal.RequireFromString("0.01") // kg CO2 per renewable kWh
	dieselFactor     = decimal.RequireFromString("2.68") // kg CO2 per litre of diesel
	waterFactor      = decimal.RequireFromString("0.0005")
	hundred          = decimal.NewFromInt(100)
	monthsPerYear    = decimal.NewFromInt(12)
	kgPerTon         = decimal.NewFromInt(1000)
	lowCarbonTons    = decimal.NewFromInt(50)
	mediumCarbonTons = decimal.NewFromInt(200)
)

// CarbonFootprint is a monthly and yearly CO2 estimate split by source
type CarbonFootprint struct {
	ElectricityKg decimal.Decimal `json:"electricity_kg"`
	GeneratorKg   decimal.Decimal `json:"generator_kg"`
	WaterKg       decimal.Decimal `json:"water_kg"`
	MonthlyKg     decimal.Decimal `json:"monthly_kg"`
	YearlyKg      decimal.Decimal `json:"yearly_kg"`
	YearlyTons    decimal.Decimal `json:"yearly_tons"`
	Status        CarbonStatus    `json:"status"`
}

// EstimateCarbon computes the footprint from reported consumption. Unreported
// sources contribute nothing.
func EstimateCarbon(in ESGInput) CarbonFootprint {
	r := decimal.NewFromFloat(in.RenewableEnergyPercentage.OrZero()).Div(hundred)
	factor := gridFactor.Mul(decimal.NewFromInt(1).Sub(r)).Add(renewableFactor.Mul(r))

	electricity := decimal.NewFromFloat(in.ElectricityKwh.OrZero()).Mul(factor)
	generator := decimal.NewFromFloat(in.GeneratorUsageLiters.OrZero()).Mul(dieselFactor)
	water := decimal.NewFromFloat(in.WaterUsageLiters.OrZero()).Mul(waterFactor)

	monthly := electricity.Add(generator).Add(water)
	yearly := monthly.Mul(monthsPerYear)
	tons := yearly.Div(kgPerTon)

	return CarbonFootprint{
		ElectricityKg: electricity,
		GeneratorKg:   generator,
		WaterKg:       water,
		MonthlyKg:     monthly,
		YearlyKg:      yearly,
		YearlyTons:    tons,
		Status:        carbonStatus(tons),
	}
}

func carbonStatus(tons decimal.Decimal) CarbonStatus {
	switch {
	case tons.LessThanOrEqual(lowCarbonTons):
		return CarbonLow
	case tons.LessThanOrEqual(mediumCarbonTons):
		return CarbonMedium
	default:
		return CarbonHigh
	}
}
