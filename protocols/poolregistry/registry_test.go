package poolregistry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iwinswap/iwinswap-amm-engine-go/custody"
	"github.com/Iwinswap/iwinswap-amm-engine-go/protocols/cpmm"
)

func poolConfig(a, b common.Address) cpmm.Config {
	return cpmm.Config{
		AssetA:  a,
		AssetB:  b,
		LedgerA: custody.NewTokenLedger(a),
		LedgerB: custody.NewTokenLedger(b),
	}
}

func TestRegistry(t *testing.T) {
	assetA := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	assetB := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	assetC := common.HexToAddress("0x00000000000000000000000000000000000000cc")

	t.Run("CreateAndGet", func(t *testing.T) {
		r := NewRegistry()
		pool, err := r.Create(poolConfig(assetA, assetB))
		require.NoError(t, err)
		require.NotNil(t, pool)
		assert.Equal(t, 1, r.Len())

		got, ok := r.Get(KeyForPair(assetA, assetB))
		require.True(t, ok)
		assert.Same(t, pool, got)

		// lookup is order-independent
		got, ok = r.GetByAssets(assetB, assetA)
		require.True(t, ok)
		assert.Same(t, pool, got)
	})

	t.Run("OnePoolPerPair", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Create(poolConfig(assetA, assetB))
		require.NoError(t, err)

		// same pair in either order is a duplicate
		_, err = r.Create(poolConfig(assetA, assetB))
		assert.ErrorIs(t, err, ErrPoolExists)
		_, err = r.Create(poolConfig(assetB, assetA))
		assert.ErrorIs(t, err, ErrPoolExists)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("RejectsIdenticalAssets", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Create(poolConfig(assetA, assetA))
		assert.ErrorIs(t, err, ErrSameAsset)
		assert.Equal(t, 0, r.Len())
	})

	t.Run("MissingPool", func(t *testing.T) {
		r := NewRegistry()
		_, ok := r.GetByAssets(assetA, assetC)
		assert.False(t, ok)
	})

	t.Run("AllReturnsEveryPool", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.Create(poolConfig(assetA, assetB))
		require.NoError(t, err)
		_, err = r.Create(poolConfig(assetA, assetC))
		require.NoError(t, err)
		_, err = r.Create(poolConfig(assetB, assetC))
		require.NoError(t, err)

		assert.Len(t, r.All(), 3)
	})
}
