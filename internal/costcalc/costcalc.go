// Package costcalc holds the derived-cost rules shared by every write path.
//
// All results are exact decimals. Divisions round to two places, half away
// from zero.
package costcalc

import (
	"github.com/shopspring/decimal"

	"costedge/backend/internal/model"
)

// UnitScale decimal places kept by per-unit figures.
const UnitScale = 2

// Impact returns newCost - oldCost. The result is unset when either side is unset.
func Impact(oldCost, newCost decimal.NullDecimal) decimal.NullDecimal {
	if !oldCost.Valid || !newCost.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(newCost.Decimal.Sub(oldCost.Decimal))
}

// ApplyBomChange recomputes the derived impact in place.
// Call it on every create and update, after all other fields are final.
func ApplyBomChange(b *model.BomChange) {
	b.Impact = Impact(b.OldCost, b.NewCost)
}

// Variance returns actual - planned.
func Variance(planned, actual decimal.Decimal) decimal.Decimal {
	return actual.Sub(planned)
}

// ApplyMilestone recomputes the stored variance in place.
func ApplyMilestone(m *model.MilestoneCost) {
	m.Variance = Variance(m.Planned, m.Actual)
}

// UnitCost returns amount / quantity rounded to UnitScale.
// A missing or non-positive quantity yields zero instead of an error.
func UnitCost(amount, quantity decimal.Decimal) decimal.Decimal {
	if quantity.Sign() <= 0 {
		return decimal.Zero
	}
	return amount.DivRound(quantity, UnitScale)
}

// UnitPlannedCost planned spend per project unit.
func UnitPlannedCost(m *model.MilestoneCost) decimal.Decimal {
	return UnitCost(m.Planned, m.ProjectQuantity)
}

// UnitActualCost actual spend per project unit.
func UnitActualCost(m *model.MilestoneCost) decimal.Decimal {
	return UnitCost(m.Actual, m.ProjectQuantity)
}

// IsOverBudget reports actual > planned.
func IsOverBudget(m *model.MilestoneCost) bool {
	return m.Actual.GreaterThan(m.Planned)
}

// IsUnderBudget reports actual < planned.
func IsUnderBudget(m *model.MilestoneCost) bool {
	return m.Actual.LessThan(m.Planned)
}

// LandedCost returns (freight + duty + insurance) * quantity.
// The components are per unit. Quantity is taken as given.
func LandedCost(freight, duty, insurance decimal.Decimal, quantity int) decimal.Decimal {
	return freight.Add(duty).Add(insurance).Mul(decimal.NewFromInt(int64(quantity)))
}

// TotalImportCost landed cost of a shipment.
func TotalImportCost(c *model.ImportCost) decimal.Decimal {
	return LandedCost(c.Freight, c.Duty, c.Insurance, c.Quantity)
}
