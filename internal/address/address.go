package address

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

var evmChains = map[string]struct{}{
	"ethereum":  {},
	"bsc":       {},
	"base":      {},
	"arbitrum":  {},
	"polygon":   {},
	"optimism":  {},
	"avalanche": {},
	"linea":     {},
	"blast":     {},
	"fantom":    {},
	"cronos":    {},
	"zksync":    {},
}

// Normalize returns the case-insensitive comparison key for an address.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsEVM reports whether the chain id names an EVM chain.
func IsEVM(chainID string) bool {
	_, ok := evmChains[strings.ToLower(chainID)]
	return ok
}

// Validate checks an address against the format of its chain. Chains without
// a known format only require a non-empty value.
func Validate(chainID, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("empty address")
	}

	switch {
	case IsEVM(chainID):
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s address: %s", chainID, addr)
		}
	case strings.EqualFold(chainID, "solana"):
		decoded, err := base58.Decode(addr)
		if err != nil {
			return fmt.Errorf("invalid solana address %s: %w", addr, err)
		}
		if len(decoded) != 32 {
			return fmt.Errorf("invalid solana address length %d: %s", len(decoded), addr)
		}
	}
	return nil
}
