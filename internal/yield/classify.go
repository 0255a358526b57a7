// Package yield derives risk tiers, APY estimates and ranked strategies from raw
// pool records. Everything here is pure and safe for concurrent use.
package yield

import "strings"

var (
	stableMarkers    = []string{"usd", "dai", "usdt", "usdc"}
	baseAssetMarkers = []string{"ao", "war"}
	gameAssetMarkers = []string{"game"}
)

// TokenClass holds the independent category flags of a token.
type TokenClass struct {
	IsStable    bool
	IsBaseAsset bool
	IsGameAsset bool
}

// Classify labels a token from its ticker and name. Matching is
// case-insensitive substring matching; a token may carry several flags.
func Classify(ticker, name string) TokenClass {
	s := strings.ToLower(ticker) + " " + strings.ToLower(name)
	return TokenClass{
		IsStable:    containsAny(s, stableMarkers),
		IsBaseAsset: containsAny(s, baseAssetMarkers),
		IsGameAsset: containsAny(s, gameAssetMarkers),
	}
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
