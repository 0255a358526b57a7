package yield

import "yieldScope/internal/model"

// Normalize maps a raw pool record into a Strategy. It never fails: missing
// numbers read as 0 and missing strings fall back to placeholders. When every
// id source is empty the id is "-"; callers dedupe such ids themselves.
func Normalize(raw model.RawPool) model.Strategy {
	apy := EstimateAPYPercent(raw.VolumeUSD.Float64(), raw.LiquidityUSD.Float64(), raw.PoolFeeBps.Float64())
	return model.Strategy{
		ID:         strategyID(raw),
		Name:       strategyName(raw),
		APYPercent: apy,
		APYDisplay: FormatPercent(apy),
		Risk:       ScoreRisk(raw.Token0(), raw.Token1()),
		TVLDisplay: FormatUSD(raw.LiquidityUSD.Float64()),
	}
}

// NormalizeAll normalizes each record, preserving input order.
func NormalizeAll(raws []model.RawPool) []model.Strategy {
	out := make([]model.Strategy, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

func strategyID(raw model.RawPool) string {
	return firstNonEmpty(
		raw.AmmProcess.String(),
		raw.ID.String(),
		raw.Token0Ticker.String()+"-"+raw.Token1Ticker.String(),
	)
}

func strategyName(raw model.RawPool) string {
	if name := raw.Name.String(); name != "" {
		return name
	}
	left := firstNonEmpty(raw.Token0Ticker.String(), raw.Token0Name.String())
	right := firstNonEmpty(raw.Token1Ticker.String(), raw.Token1Name.String())
	return left + "/" + right
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
