// File: internal/listing/model_test.go
package listing

import (
	"encoding/json"
	"testing"

	"albash_solutions_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElasticsearchDoc_IncludesOptionalFieldsWhenSet(t *testing.T) {
	value := 150.0
	tokenRef := "tok-123"
	l := &Listing{
		BaseModel:      common.BaseModel{ID: uuid.New()},
		UserID:         uuid.New(),
		Title:          "Vintage camera",
		Slug:           "vintage-camera",
		Description:    "A working Leica M3.",
		ListingType:    TypePhysical,
		EstimatedValue: &value,
		TokenReference: &tokenRef,
		Tags:           pq.StringArray{"camera", "vintage"},
		Status:         StatusActive,
	}

	docJSON, err := l.ElasticsearchDoc()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(docJSON), &doc))
	assert.Equal(t, "Vintage camera", doc["title"])
	assert.Equal(t, "physical", doc["listing_type"])
	assert.Equal(t, l.UserID.String(), doc["user_id"])
	assert.Equal(t, "active", doc["status"])
	assert.Equal(t, 150.0, doc["estimated_value"])
	assert.Equal(t, "tok-123", doc["token_reference"])
	assert.ElementsMatch(t, []interface{}{"camera", "vintage"}, doc["tags"])
}

func TestElasticsearchDoc_OmitsUnsetOptionalFields(t *testing.T) {
	l := &Listing{
		BaseModel:   common.BaseModel{ID: uuid.New()},
		UserID:      uuid.New(),
		Title:       "Old books",
		Slug:        "old-books",
		Description: "A box of paperbacks.",
		ListingType: TypePhysical,
		Status:      StatusActive,
	}

	docJSON, err := l.ElasticsearchDoc()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(docJSON), &doc))
	assert.NotContains(t, doc, "estimated_value")
	assert.NotContains(t, doc, "token_reference")
}
