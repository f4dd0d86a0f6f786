package cpmm

import "errors"

var (
	// ErrInvalidAmount indicates a zero or negative amount where a positive
	// amount is required.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrZeroMintedShares indicates a deposit so small relative to existing
	// reserves that the minted share count rounds down to zero.
	ErrZeroMintedShares = errors.New("minted shares round to zero")

	// ErrInsufficientShares indicates a withdrawal of more shares than the
	// participant owns.
	ErrInsufficientShares = errors.New("insufficient share balance")

	// ErrEmptyPool indicates pricing was requested while either reserve is zero.
	ErrEmptyPool = errors.New("empty reserves")

	// ErrZeroOutput indicates a swap whose computed output rounds down to zero.
	ErrZeroOutput = errors.New("swap output rounds to zero")

	// ErrUnknownAsset indicates an asset that is not one of the pool's pair.
	ErrUnknownAsset = errors.New("asset is not part of this pool")
)
