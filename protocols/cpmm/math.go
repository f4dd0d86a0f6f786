package cpmm

import "math/big"

// fee: 0.3% => multiplier 997/1000
var (
	feeMul = big.NewInt(997)
	feeDen = big.NewInt(1000)
)

var (
	one   = big.NewInt(1)
	three = big.NewInt(3)
)

// priceScale is the fixed-point scale used by Price: 10^18.
var priceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// GetAmountOut prices a swap of amountIn against a (reserveIn, reserveOut)
// pair using the constant-product formula with the 0.3% fee:
//
//	amountInWithFee = amountIn * 997
//	amountOut       = amountInWithFee * reserveOut / (reserveIn * 1000 + amountInWithFee)
//
// All intermediates are big.Int, so no fixed-width overflow can occur.
// The result is strictly less than reserveOut for any finite amountIn; the
// formula is asymptotic and can never drain the output reserve.
//
// Returns ErrEmptyPool if either reserve is zero.
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, ErrEmptyPool
	}

	amountInWithFee := new(big.Int).Mul(amountIn, feeMul)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, feeDen)
	denominator.Add(denominator, amountInWithFee)

	return numerator.Div(numerator, denominator), nil
}

// sqrtFloor returns the largest z such that z*z <= y, via Newton's method
// seeded at y/2 + 1. sqrtFloor(0) = 0 and sqrtFloor(y) = 1 for 0 < y <= 3.
func sqrtFloor(y *big.Int) *big.Int {
	if y.Sign() == 0 {
		return new(big.Int)
	}
	if y.Cmp(three) <= 0 {
		return big.NewInt(1)
	}

	z := new(big.Int).Set(y)
	x := new(big.Int).Rsh(y, 1)
	x.Add(x, one)

	t := new(big.Int)
	for x.Cmp(z) < 0 {
		z.Set(x)
		// x = (y/x + x) / 2
		t.Div(y, x)
		t.Add(t, x)
		x.Rsh(t, 1)
	}
	return z
}
