package cpmm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolView provides a point-in-time snapshot of a single pool's state.
type PoolView struct {
	AssetA      common.Address `json:"assetA"`
	AssetB      common.Address `json:"assetB"`
	ReserveA    *big.Int       `json:"reserveA"`
	ReserveB    *big.Int       `json:"reserveB"`
	TotalShares *big.Int       `json:"totalShares"`
}

// View returns a defensive copy of the pool's observable state.
func (p *Pool) View() PoolView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return PoolView{
		AssetA:      p.assetA,
		AssetB:      p.assetB,
		ReserveA:    new(big.Int).Set(p.reserveA),
		ReserveB:    new(big.Int).Set(p.reserveB),
		TotalShares: new(big.Int).Set(p.totalShares),
	}
}
