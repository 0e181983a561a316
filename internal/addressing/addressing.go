// Package addressing derives the deterministic control-plane addresses that
// key every stored record. An address is the BLAKE2b-256 hash of a namespace
// and an ordered list of inputs, so any party holding the same inputs computes
// the same address without a lookup.
package addressing

import (
	"golang.org/x/crypto/blake2b"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Namespaces partition the address space per record kind. Identical inputs
// under different namespaces never collide.
const (
	NamespaceConfig    = "config"
	NamespaceMinter    = "minter"
	NamespaceBlacklist = "blacklist"
	NamespaceHook      = "transfer_hook"
	NamespaceProgram   = "program"
)

// MaxInputLen bounds a single derivation input.
const MaxInputLen = 1024

// separator delimits the namespace and each input inside the hash preimage.
// Inputs never contain NUL at a boundary-ambiguous position because each one
// is terminated, not joined.
const separator = 0x00

// Derive computes the address for a namespace and ordered inputs.
func Derive(namespace string, inputs ...[]byte) (domain.Address, error) {
	if namespace == "" {
		return domain.Address{}, dErrors.New(dErrors.CodeInvalidInput, "derivation namespace is required")
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return domain.Address{}, dErrors.Wrap(err, dErrors.CodeInternal, "init blake2b")
	}

	h.Write([]byte(namespace))
	h.Write([]byte{separator})
	for _, input := range inputs {
		if len(input) > MaxInputLen {
			return domain.Address{}, dErrors.Newf(dErrors.CodeInvalidInput,
				"derivation input exceeds %d bytes", MaxInputLen)
		}
		h.Write(input)
		h.Write([]byte{separator})
	}

	var addr domain.Address
	copy(addr[:], h.Sum(nil))
	return addr, nil
}

// ConfigAddress derives the configuration address for an asset.
func ConfigAddress(asset domain.AssetID) (domain.Address, error) {
	return Derive(NamespaceConfig, []byte(asset))
}

// MinterAddress derives a minter record address under a configuration.
func MinterAddress(config domain.Address, authority domain.Identity) (domain.Address, error) {
	return Derive(NamespaceMinter, config.Bytes(), authority.Bytes())
}

// BlacklistAddress derives a blacklist entry address under a configuration.
func BlacklistAddress(config domain.Address, user domain.Identity) (domain.Address, error) {
	return Derive(NamespaceBlacklist, config.Bytes(), user.Bytes())
}

// HookAddress derives the transfer hook configuration address for an asset.
func HookAddress(asset domain.AssetID) (domain.Address, error) {
	return Derive(NamespaceHook, []byte(asset))
}

// issuanceProgram is derived once; the inputs are constants Derive accepts.
var issuanceProgram, _ = Derive(NamespaceProgram, []byte("issuance"))

// IssuanceProgram is the fixed address identifying the issuance component.
// Hook configurations record it so a validator can tell which program governs
// the instrument it is validating for.
func IssuanceProgram() domain.Address {
	return issuanceProgram
}
