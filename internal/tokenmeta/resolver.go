package tokenmeta

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"yieldScope/internal/model"
)

// Cache caches token metadata by address.
type Cache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewCache() *Cache {
	return &Cache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *Cache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *Cache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// Resolver fills missing tickers and names from chain metadata.
type Resolver struct {
	caller ContractCaller
	cache  *Cache
	logger *zap.Logger
}

func NewResolver(caller ContractCaller, cache *Cache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Resolver{caller: caller, cache: cache, logger: logger}
}

// Enrich returns a copy of pools where tokens that have an address but neither
// ticker nor name get both from chain. Lookup failures leave the token as is.
func (r *Resolver) Enrich(ctx context.Context, pools []model.RawPool) []model.RawPool {
	out := make([]model.RawPool, len(pools))
	copy(out, pools)
	if r == nil || r.caller == nil {
		return out
	}

	for i := range out {
		p := &out[i]
		p.Token0Ticker, p.Token0Name = r.fill(ctx, p.Token0Ticker, p.Token0Name, p.Token0Address)
		p.Token1Ticker, p.Token1Name = r.fill(ctx, p.Token1Ticker, p.Token1Name, p.Token1Address)
	}
	return out
}

func (r *Resolver) fill(ctx context.Context, ticker, name, address model.Text) (model.Text, model.Text) {
	if ticker != "" || name != "" || !common.IsHexAddress(address.String()) {
		return ticker, name
	}

	token := common.HexToAddress(address.String())
	meta, ok := r.cache.Get(token)
	if !ok {
		var err error
		meta, err = FetchTokenMeta(ctx, r.caller, token, r.logger)
		if err != nil {
			r.logger.Warn("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
			return ticker, name
		}
		r.cache.Set(token, meta)
	}
	return model.Text(meta.Symbol), model.Text(meta.Name)
}
