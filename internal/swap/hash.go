// File: internal/swap/hash.go
package swap

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"albash_solutions_backend/internal/common"
)

// ComputeContractHash derives the deterministic digest of contract
// terms. encoding/json sorts map keys at every nesting level, so the
// serialization is canonical: identical terms always produce identical
// hashes, with no time or randomness in the digest input.
func ComputeContractHash(terms common.JSONMap) (string, error) {
	canonical, err := json.Marshal(terms)
	if err != nil {
		return "", fmt.Errorf("failed to serialize contract terms for hashing: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
