// File: internal/swap/hash_test.go
package swap

import (
	"testing"

	"albash_solutions_backend/internal/common"

	"github.com/stretchr/testify/assert"
)

func TestComputeContractHash_Deterministic(t *testing.T) {
	terms := common.JSONMap{
		"offered":     "vintage camera",
		"requested":   "mountain bike",
		"cash_top_up": 50,
	}

	h1, err := ComputeContractHash(terms)
	assert.NoError(t, err)
	h2, err := ComputeContractHash(terms)
	assert.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // sha256 hex
}

func TestComputeContractHash_KeyOrderIndependent(t *testing.T) {
	a := common.JSONMap{"x": "1", "y": "2"}
	b := common.JSONMap{"y": "2", "x": "1"}

	ha, err := ComputeContractHash(a)
	assert.NoError(t, err)
	hb, err := ComputeContractHash(b)
	assert.NoError(t, err)

	assert.Equal(t, ha, hb)
}

func TestComputeContractHash_SensitiveToContent(t *testing.T) {
	h1, err := ComputeContractHash(common.JSONMap{"item": "camera"})
	assert.NoError(t, err)
	h2, err := ComputeContractHash(common.JSONMap{"item": "bike"})
	assert.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestComputeContractHash_NilTerms(t *testing.T) {
	h, err := ComputeContractHash(nil)
	assert.NoError(t, err)
	assert.Len(t, h, 64)
}
