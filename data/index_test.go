package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// The index key order is the pagination contract: equality on the provider,
// then the full keyset sort order with _id as final tie-breaker.
func TestClaimsIndexKeys(t *testing.T) {
	want := bson.D{
		{Key: "billingProvider.providerId", Value: 1},
		{Key: "serviceBeginDate", Value: 1},
		{Key: "serviceEndDate", Value: 1},
		{Key: "_id", Value: 1},
	}
	assert.Equal(t, want, ClaimsIndexKeys)
	assert.Equal(t, "idx_provider_id_service_begin_end_id", ClaimsIndexName)
}

func TestSupersededIndexNamesDoNotIncludeCanonical(t *testing.T) {
	require.NotEmpty(t, supersededIndexNames)
	for _, name := range supersededIndexNames {
		assert.NotEqual(t, ClaimsIndexName, name)
	}
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, isUnauthorized(mongo.CommandError{Code: 13, Name: "Unauthorized"}))
	assert.False(t, isUnauthorized(mongo.CommandError{Code: 27, Name: "IndexNotFound"}))
	assert.False(t, isUnauthorized(assert.AnError))
	assert.False(t, isUnauthorized(nil))
}

func TestIsIndexNotFound(t *testing.T) {
	assert.True(t, isIndexNotFound(mongo.CommandError{Code: 27, Name: "IndexNotFound"}))
	assert.False(t, isIndexNotFound(mongo.CommandError{Code: 13, Name: "Unauthorized"}))
	assert.False(t, isIndexNotFound(assert.AnError))
	assert.False(t, isIndexNotFound(nil))
}
