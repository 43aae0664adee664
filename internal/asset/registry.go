package asset

import (
	"fmt"
	"sync"
)

// Registry resolves trading symbols to assets. Pairs arrive as plain
// symbols ("ETH-USDC"), so lookups are keyed by symbol and chain.
type Registry struct {
	mu     sync.RWMutex
	byID   map[AssetID]*Asset
	bySlot map[registryKey]*Asset
}

type registryKey struct {
	symbol  string
	chainID uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[AssetID]*Asset),
		bySlot: make(map[registryKey]*Asset),
	}
}

// Register adds an asset. Panics on nil or duplicate registration; the
// registry is populated once at startup from a static table.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.byID[id]; exists {
		panic(fmt.Sprintf("asset: %s already registered", id))
	}

	r.byID[id] = a
	r.bySlot[registryKey{symbol: a.Symbol(), chainID: a.ID().ChainID()}] = a
}

// Get retrieves an asset by its ID.
func (r *Registry) Get(id AssetID) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	return a, ok
}

// GetBySymbolAndChain resolves a symbol on a specific chain.
func (r *Registry) GetBySymbolAndChain(symbol string, chainID uint64) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySlot[registryKey{symbol: symbol, chainID: chainID}]
	return a, ok
}
