// Package custody provides an in-memory asset balance book implementing the
// pull/push transfer collaborator the pool engine depends on. One ledger
// tracks one asset; balances live in uint256 words like the ERC-20 ledgers it
// stands in for.
package custody

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	// ErrInsufficientBalance indicates the source account cannot cover the
	// transfer amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAmountOutOfRange indicates a negative amount or one that does not
	// fit in 256 bits.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// TokenLedger is a thread-safe balance book for a single asset. The pool's
// holdings live in a dedicated custody bucket rather than under any
// participant address.
type TokenLedger struct {
	asset common.Address

	mu       sync.RWMutex
	balances map[common.Address]*uint256.Int
	custody  *uint256.Int
}

// NewTokenLedger creates an empty ledger for the given asset.
func NewTokenLedger(asset common.Address) *TokenLedger {
	return &TokenLedger{
		asset:    asset,
		balances: make(map[common.Address]*uint256.Int),
		custody:  new(uint256.Int),
	}
}

// Asset returns the asset identifier this ledger tracks.
func (l *TokenLedger) Asset() common.Address {
	return l.asset
}

// Mint credits amount to the given account. Intended for setup and tests.
func (l *TokenLedger) Mint(to common.Address, amount *big.Int) error {
	amt, err := toWord(amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balanceLocked(to)
	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(bal, amt); overflow {
		return ErrAmountOutOfRange
	}
	bal.Set(sum)
	return nil
}

// Pull moves amount from the account's balance into pool custody. An error
// leaves both sides unchanged.
func (l *TokenLedger) Pull(from common.Address, amount *big.Int) error {
	amt, err := toWord(amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balanceLocked(from)
	if bal.Lt(amt) {
		return ErrInsufficientBalance
	}
	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(l.custody, amt); overflow {
		return ErrAmountOutOfRange
	}
	bal.Sub(bal, amt)
	l.custody.Set(sum)
	return nil
}

// Push moves amount from pool custody to the account. An error leaves both
// sides unchanged.
func (l *TokenLedger) Push(to common.Address, amount *big.Int) error {
	amt, err := toWord(amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.custody.Lt(amt) {
		return ErrInsufficientBalance
	}
	bal := l.balanceLocked(to)
	sum := new(uint256.Int)
	if _, overflow := sum.AddOverflow(bal, amt); overflow {
		return ErrAmountOutOfRange
	}
	bal.Set(sum)
	l.custody.Sub(l.custody, amt)
	return nil
}

// BalanceOf returns the account's balance.
func (l *TokenLedger) BalanceOf(account common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if bal, ok := l.balances[account]; ok {
		return bal.ToBig()
	}
	return new(big.Int)
}

// Custody returns the amount currently held on behalf of the pool.
func (l *TokenLedger) Custody() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.custody.ToBig()
}

func (l *TokenLedger) balanceLocked(account common.Address) *uint256.Int {
	bal, ok := l.balances[account]
	if !ok {
		bal = new(uint256.Int)
		l.balances[account] = bal
	}
	return bal
}

func toWord(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrAmountOutOfRange
	}
	word, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrAmountOutOfRange
	}
	return word, nil
}
