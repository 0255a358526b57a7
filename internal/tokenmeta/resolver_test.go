package tokenmeta

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"yieldScope/internal/model"
)

type fakeToken struct {
	decimals uint8
	symbol   string
	name     string
	bytes32  bool
}

type fakeCaller struct {
	mu     sync.Mutex
	tokens map[common.Address]fakeToken
	calls  int
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	token, ok := f.tokens[*msg.To]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	parsed, err := erc20String.get()
	if err != nil {
		return nil, err
	}
	if token.bytes32 {
		parsed, err = erc20Bytes32.get()
		if err != nil {
			return nil, err
		}
	}

	for name, method := range parsed.Methods {
		if !bytes.Equal(msg.Data[:4], method.ID) {
			continue
		}
		switch name {
		case "decimals":
			return method.Outputs.Pack(token.decimals)
		case "symbol":
			if token.bytes32 {
				return method.Outputs.Pack(toBytes32(token.symbol))
			}
			return method.Outputs.Pack(token.symbol)
		case "name":
			if token.bytes32 {
				return method.Outputs.Pack(toBytes32(token.name))
			}
			return method.Outputs.Pack(token.name)
		}
	}
	return nil, errors.New("unknown selector")
}

func toBytes32(s string) [32]byte {
	var out [32]byte
	copy(out[:], s)
	return out
}

var (
	usdcAddr = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	mkrAddr  = common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2")
	deadAddr = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
)

func newFakeCaller() *fakeCaller {
	return &fakeCaller{tokens: map[common.Address]fakeToken{
		usdcAddr: {decimals: 6, symbol: "USDC", name: "USD Coin"},
		mkrAddr:  {decimals: 18, symbol: "MKR", name: "Maker", bytes32: true},
	}}
}

func TestFetchTokenMetaString(t *testing.T) {
	meta, err := FetchTokenMeta(context.Background(), newFakeCaller(), usdcAddr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Decimals != 6 || meta.Symbol != "USDC" || meta.Name != "USD Coin" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if meta.Address != usdcAddr.Hex() {
		t.Fatalf("address mismatch: %s", meta.Address)
	}
}

func TestFetchTokenMetaBytes32Fallback(t *testing.T) {
	meta, err := FetchTokenMeta(context.Background(), newFakeCaller(), mkrAddr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Symbol != "MKR" || meta.Name != "Maker" || meta.Decimals != 18 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestFetchTokenMetaRevert(t *testing.T) {
	if _, err := FetchTokenMeta(context.Background(), newFakeCaller(), deadAddr, nil); err == nil {
		t.Fatalf("expected error for reverting token")
	}
}

func TestResolverEnrich(t *testing.T) {
	caller := newFakeCaller()
	r := NewResolver(caller, nil, nil)

	pools := []model.RawPool{
		{ID: "p1", Token0Address: model.Text(usdcAddr.Hex()), Token1Ticker: "wAR"},
		{ID: "p2", Token0Ticker: "AO", Token0Address: model.Text(mkrAddr.Hex())},
		{ID: "p3", Token0Address: "not-an-address"},
		{ID: "p4", Token0Address: model.Text(deadAddr.Hex())},
		{ID: "p5", Token1Address: model.Text(usdcAddr.Hex())},
	}
	out := r.Enrich(context.Background(), pools)

	if out[0].Token0Ticker != "USDC" || out[0].Token0Name != "USD Coin" {
		t.Fatalf("p1 not enriched: %+v", out[0])
	}
	if out[0].Token1Ticker != "wAR" {
		t.Fatalf("p1 token1 changed: %+v", out[0])
	}
	if out[1].Token0Ticker != "AO" || out[1].Token0Name != "" {
		t.Fatalf("p2 should keep its ticker: %+v", out[1])
	}
	if out[2].Token0Ticker != "" || out[3].Token0Ticker != "" {
		t.Fatalf("invalid or failing tokens should pass through: %+v %+v", out[2], out[3])
	}
	if out[4].Token1Ticker != "USDC" {
		t.Fatalf("p5 not enriched: %+v", out[4])
	}
	if pools[0].Token0Ticker != "" {
		t.Fatalf("input slice was mutated")
	}

	// usdc resolved once then served from cache: 3 calls for p1, 0 for p5.
	// deadAddr fails on decimals: 1 call.
	if caller.calls != 4 {
		t.Fatalf("expected 4 contract calls, got %d", caller.calls)
	}
}

func TestResolverNilCaller(t *testing.T) {
	pools := []model.RawPool{{ID: "p1", Token0Address: model.Text(usdcAddr.Hex())}}
	out := NewResolver(nil, nil, nil).Enrich(context.Background(), pools)
	if len(out) != 1 || out[0].Token0Ticker != "" {
		t.Fatalf("unexpected output: %+v", out)
	}
}
