package engine

import "github.com/shopspring/decimal"

// Snap rounds px to the nearest multiple of tick, half away from zero.
// Using decimal.Decimal rather than float64 avoids binary-float drift
// between two snaps of the same nominal price.
func Snap(px, tick decimal.Decimal) decimal.Decimal {
	if tick.Sign() <= 0 {
		return px
	}
	ratio := px.DivRound(tick, 0)
	return ratio.Mul(tick)
}

// priceKey returns a canonical string for a tick-snapped price, suitable as
// a map key. decimal.Decimal values that are numerically equal can carry
// different internal scale, so two Snap() results of the same nominal price
// are not guaranteed to produce identical String() output — StringFixed at
// a fixed, generous precision collapses that away.
func priceKey(px decimal.Decimal) string {
	return px.StringFixed(8)
}
