package yield

import "math"

const (
	bpsDenominator = 10_000
	daysPerYear    = 365
)

// EstimateAPYPercent projects an annual yield in percent from trailing daily
// volume, pool liquidity and the pool fee in basis points. It assumes the
// current volume/liquidity ratio holds for a full year, so it is an
// approximation and not a forecast. Negative or non-finite inputs read as 0.
func EstimateAPYPercent(volumeUSD, liquidityUSD, feeBps float64) float64 {
	volumeUSD = clampNonNegative(volumeUSD)
	liquidityUSD = clampNonNegative(liquidityUSD)
	feeBps = clampNonNegative(feeBps)

	if liquidityUSD <= 0 || feeBps <= 0 {
		return 0
	}

	feeRate := feeBps / bpsDenominator
	dailyYield := (volumeUSD / liquidityUSD) * feeRate
	annualYield := dailyYield * daysPerYear
	if math.IsNaN(annualYield) || math.IsInf(annualYield, 0) {
		return 0
	}
	return math.Max(0, annualYield) * 100
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
