// Package poolregistry tracks live constant-product pools, one per unordered
// asset pair, keyed by a canonical 32-byte PoolKey.
package poolregistry

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Iwinswap/iwinswap-amm-engine-go/protocols/cpmm"
)

var (
	ErrPoolExists   = errors.New("pool already exists for asset pair")
	ErrPoolNotFound = errors.New("pool not found")
	ErrSameAsset    = errors.New("cannot create a pool for identical assets")
)

// Registry provides fast, indexed access to live pools. Pools for different
// asset pairs are fully independent; the registry lock covers only the index,
// never a pool's own critical section.
type Registry struct {
	mu    sync.RWMutex
	byKey map[PoolKey]*cpmm.Pool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey: make(map[PoolKey]*cpmm.Pool),
	}
}

// Create builds a pool from cfg and registers it under the canonical key for
// its asset pair. At most one pool exists per unordered pair.
func (r *Registry) Create(cfg cpmm.Config) (*cpmm.Pool, error) {
	if cfg.AssetA == cfg.AssetB {
		return nil, ErrSameAsset
	}
	key := KeyForPair(cfg.AssetA, cfg.AssetB)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[key]; ok {
		return nil, ErrPoolExists
	}

	pool, err := cpmm.NewPool(cfg)
	if err != nil {
		return nil, err
	}
	r.byKey[key] = pool
	return pool, nil
}

// Get retrieves a pool by its PoolKey.
func (r *Registry) Get(key PoolKey) (*cpmm.Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byKey[key]
	return p, ok
}

// GetByAssets retrieves the pool for an unordered asset pair.
func (r *Registry) GetByAssets(a, b common.Address) (*cpmm.Pool, bool) {
	return r.Get(KeyForPair(a, b))
}

// All returns a defensive copy of the slice of all registered pools.
func (r *Registry) All() []*cpmm.Pool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*cpmm.Pool, 0, len(r.byKey))
	for _, p := range r.byKey {
		all = append(all, p)
	}
	return all
}

// Len returns the number of registered pools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byKey)
}
