package sales

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Commission returns total * percentage / 100 rounded to cents, or zero when
// the position earns no commission.
func Commission(total float64, rate CommissionRate) float64 {
	if !rate.HasCommission || rate.Percentage <= 0 {
		return 0
	}
	return decimal.NewFromFloat(total).
		Mul(decimal.NewFromFloat(rate.Percentage)).
		Div(hundred).
		Round(2).
		InexactFloat64()
}

// Sum adds sale amounts without float drift.
func Sum(sales []Sale) Totals {
	total, commission := decimal.Zero, decimal.Zero
	for _, s := range sales {
		total = total.Add(decimal.NewFromFloat(s.TotalAmount))
		commission = commission.Add(decimal.NewFromFloat(s.CommissionAmount))
	}
	return Totals{
		Count:            len(sales),
		TotalAmount:      total.Round(2).InexactFloat64(),
		CommissionAmount: commission.Round(2).InexactFloat64(),
	}
}
