package model

// RiskTier is the discrete risk label of a pool pairing.
type RiskTier string

const (
	RiskVeryLow RiskTier = "VeryLow"
	RiskLow     RiskTier = "Low"
	RiskMedium  RiskTier = "Medium"
	RiskHigh    RiskTier = "High"
)

// Score maps a tier to its numeric score. Higher means safer.
func (t RiskTier) Score() int {
	switch t {
	case RiskVeryLow:
		return 80
	case RiskLow:
		return 60
	case RiskMedium:
		return 40
	case RiskHigh:
		return 20
	default:
		return 0
	}
}

// RiskAssessment pairs a tier with its score.
type RiskAssessment struct {
	Tier  RiskTier `json:"tier"`
	Score int      `json:"score"`
}

// NewRiskAssessment builds an assessment whose score always matches the tier.
func NewRiskAssessment(tier RiskTier) RiskAssessment {
	return RiskAssessment{Tier: tier, Score: tier.Score()}
}

// Strategy is the display and ranking view of one pool. It is rebuilt from a
// RawPool snapshot on every pass and never mutated in place.
type Strategy struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	APYPercent float64        `json:"apyPercent"`
	APYDisplay string         `json:"apyDisplay"`
	Risk       RiskAssessment `json:"risk"`
	TVLDisplay string         `json:"tvlDisplay"`
}
