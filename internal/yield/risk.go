package yield

import "yieldScope/internal/model"

// ScoreRisk assesses a token pair. The result does not depend on argument order.
func ScoreRisk(a, b model.TokenRef) model.RiskAssessment {
	classA := Classify(a.Ticker, a.Name)
	classB := Classify(b.Ticker, b.Name)
	return model.NewRiskAssessment(riskTier(classA, classB))
}

// riskTier evaluates the decision table top to bottom; first match wins.
func riskTier(a, b TokenClass) model.RiskTier {
	anyStable := a.IsStable || b.IsStable
	anyBase := a.IsBaseAsset || b.IsBaseAsset

	switch {
	case a.IsStable && b.IsBaseAsset,
		b.IsStable && a.IsBaseAsset,
		a.IsGameAsset || b.IsGameAsset,
		a.IsStable && b.IsStable,
		a.IsBaseAsset && b.IsBaseAsset:
		return model.RiskVeryLow
	case anyStable && anyBase:
		return model.RiskLow
	case anyStable:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}
