package calculator

import "github.com/shopspring/decimal"

// Round rounds v to the given number of decimal places, half away from zero.
// The float is first read as its shortest decimal representation, so 10.25
// rounds to 10.3 rather than following its binary approximation.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// ConvertPrice converts a price with the given exchange rate, rounded to cents.
func ConvertPrice(price, rate float64) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64()
}

// RisePercent returns the rise from open to current in percent, rounded to one
// decimal place. A zero open price yields 0.
func RisePercent(open, current float64) float64 {
	if open == 0 {
		return 0
	}
	o := decimal.NewFromFloat(open)
	c := decimal.NewFromFloat(current)
	return c.Sub(o).Div(o).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}

// PriceDelta returns current-prior rounded to one decimal place.
func PriceDelta(current, prior float64) float64 {
	return decimal.NewFromFloat(current).Sub(decimal.NewFromFloat(prior)).Round(1).InexactFloat64()
}
