package poolregistry

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// --- PoolKey Implementation ---

// PoolKey is a fixed-size 32-byte identifier for a pool's asset pair.
//
// The key is the keccak256 hash of the pair's two asset addresses in
// canonical (ascending byte) order, so (A, B) and (B, A) derive the same key
// and any unordered pair maps to exactly one pool. The 32-byte shape also
// leaves room for protocols that identify pools by bytes32 hashes rather
// than addresses.
type PoolKey [32]byte

// Bytes returns the raw underlying byte slice.
// Output: A 32-byte slice.
func (p PoolKey) Bytes() []byte {
	return p[:]
}

// String returns the hex string representation of the key.
// Output: A standard hex string starting with "0x".
func (p PoolKey) String() string {
	return "0x" + hex.EncodeToString(p[:])
}

// MarshalJSON serializes the key as a hex string.
func (p PoolKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses a hex string into the key.
//
// Input:
//   - Hex string of even length
//   - Optional "0x" prefix
//
// Semantics:
//   - Decoded bytes are copied verbatim into the first N bytes of the PoolKey
//   - Remaining bytes are zero-padded
func (p *PoolKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimPrefix(s, "0x")

	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) > 32 {
		return errors.New("pool key too long")
	}

	// Wipe existing data to prevent dirty reads if reusing the struct
	*p = PoolKey{}
	copy(p[:], b)

	return nil
}

// SortAssets returns the pair in canonical ascending byte order. The
// canonical order is what makes key derivation commutative.
func SortAssets(a, b common.Address) (common.Address, common.Address) {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		return b, a
	}
	return a, b
}

// KeyForPair derives the canonical PoolKey for an unordered asset pair.
//
// Derivation:
//
//	key = keccak256(sorted0 || sorted1)
func KeyForPair(a, b common.Address) PoolKey {
	s0, s1 := SortAssets(a, b)

	var key PoolKey
	copy(key[:], crypto.Keccak256(s0.Bytes(), s1.Bytes()))
	return key
}

// Bytes32ToPoolKey wraps a raw 32-byte identifier as a PoolKey verbatim.
func Bytes32ToPoolKey(b [32]byte) PoolKey {
	return PoolKey(b)
}
