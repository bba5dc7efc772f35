package calc

import "github.com/shopspring/decimal"

func CalculateDiscount(baseTotal, discountPercent decimal.Decimal) decimal.Decimal {
	return baseTotal.Mul(discountPercent).Div(decimal.NewFromInt(100))
}

// ApplyDiscount reduces rawTotal by discountPercent and rounds the result
// half-up to two decimal places. Rounding happens once here, on the
// total, never per line, so line subtotals cannot accumulate drift.
func ApplyDiscount(rawTotal, discountPercent decimal.Decimal) decimal.Decimal {
	return rawTotal.Sub(CalculateDiscount(rawTotal, discountPercent)).Round(2)
}

func LineSubtotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}
