// Package domain holds the identity primitives shared across modules.
// Types validate at parse time so services never handle malformed values.
package domain

import (
	"encoding/hex"
	"fmt"
)

// Identity is a verified 32-byte public-key identity. Role fields, minter
// authorities and blacklist subjects are all identities; two identities are
// equal only when their bytes are equal.
type Identity [32]byte

// ParseIdentity decodes a 64-character hex string into an Identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if len(s) != hex.EncodedLen(len(id)) {
		return Identity{}, fmt.Errorf("identity must be %d hex characters, got %d", hex.EncodedLen(len(id)), len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return Identity{}, fmt.Errorf("invalid identity encoding: %w", err)
	}
	return id, nil
}

// String returns the lowercase hex representation.
func (i Identity) String() string {
	return hex.EncodeToString(i[:])
}

// IsNil reports whether the identity is the zero value.
func (i Identity) IsNil() bool {
	return i == Identity{}
}

// Bytes returns the raw key bytes.
func (i Identity) Bytes() []byte {
	return i[:]
}

// MarshalText implements encoding.TextMarshaler for JSON round-tripping.
func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Address is a 32-byte deterministically derived storage address. The
// namespace plus key tuple is the lookup path; there is no index structure.
type Address [32]byte

// ParseAddress decodes a 64-character hex string into an Address.
func ParseAddress(s string) (Address, error) {
	var a Address
	if len(s) != hex.EncodedLen(len(a)) {
		return Address{}, fmt.Errorf("address must be %d hex characters, got %d", hex.EncodedLen(len(a)), len(s))
	}
	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return Address{}, fmt.Errorf("invalid address encoding: %w", err)
	}
	return a, nil
}

// String returns the lowercase hex representation.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsNil reports whether the address is the zero value.
func (a Address) IsNil() bool {
	return a == Address{}
}

// Bytes returns the raw address bytes.
func (a Address) Bytes() []byte {
	return a[:]
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MaxAssetIDLen bounds the opaque ledger asset identifier.
const MaxAssetIDLen = 64

// AssetID identifies the underlying ledger asset of an instrument. It is
// opaque to this system beyond length and charset validation.
type AssetID string

// ParseAssetID validates and returns an AssetID.
func ParseAssetID(s string) (AssetID, error) {
	if s == "" {
		return "", fmt.Errorf("asset id cannot be empty")
	}
	if len(s) > MaxAssetIDLen {
		return "", fmt.Errorf("asset id exceeds %d characters", MaxAssetIDLen)
	}
	for _, r := range s {
		if !isAssetIDRune(r) {
			return "", fmt.Errorf("asset id contains invalid character %q", r)
		}
	}
	return AssetID(s), nil
}

func isAssetIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == ':' || r == '.':
		return true
	}
	return false
}

// String returns the string representation.
func (a AssetID) String() string {
	return string(a)
}

// IsNil reports whether the asset id is empty.
func (a AssetID) IsNil() bool {
	return a == ""
}

// MaxAccountIDLen bounds ledger account identifiers.
const MaxAccountIDLen = 128

// AccountID identifies a balance-holding account on the external ledger.
type AccountID string

// ParseAccountID validates and returns an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return "", fmt.Errorf("account id cannot be empty")
	}
	if len(s) > MaxAccountIDLen {
		return "", fmt.Errorf("account id exceeds %d characters", MaxAccountIDLen)
	}
	return AccountID(s), nil
}

// String returns the string representation.
func (a AccountID) String() string {
	return string(a)
}

// IsNil reports whether the account id is empty.
func (a AccountID) IsNil() bool {
	return a == ""
}
