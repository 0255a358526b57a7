package model

// RawPool is a pool record as delivered by the upstream feed. Every field is
// optional and untrusted; missing numbers read as 0 and missing strings as "".
type RawPool struct {
	ID            Text   `json:"id"`
	AmmProcess    Text   `json:"ammProcess"`
	Name          Text   `json:"name"`
	Token0Ticker  Text   `json:"token0Ticker"`
	Token0Name    Text   `json:"token0Name"`
	Token0Address Text   `json:"token0Address,omitempty"`
	Token1Ticker  Text   `json:"token1Ticker"`
	Token1Name    Text   `json:"token1Name"`
	Token1Address Text   `json:"token1Address,omitempty"`
	VolumeUSD     Number `json:"volumeUsd"`
	LiquidityUSD  Number `json:"liquidityUsd"`
	PoolFeeBps    Number `json:"poolFeeBps"`
}

// TokenRef identifies one side of a pool by ticker and name.
type TokenRef struct {
	Ticker string `json:"ticker,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Token0 returns the first token of the pair.
func (p RawPool) Token0() TokenRef {
	return TokenRef{Ticker: p.Token0Ticker.String(), Name: p.Token0Name.String()}
}

// Token1 returns the second token of the pair.
func (p RawPool) Token1() TokenRef {
	return TokenRef{Ticker: p.Token1Ticker.String(), Name: p.Token1Name.String()}
}
