package data

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClaimsIndexName is the canonical compound index backing all page
// strategies. Without it every scan degrades to O(collection size).
const ClaimsIndexName = "idx_provider_id_service_begin_end_id"

// ErrInsufficientPrivilege marks index creation denied by the store.
var ErrInsufficientPrivilege = errors.New("insufficient privilege to manage indexes")

// ClaimsIndexKeys is the compound ordering key: equality on the provider,
// then the full keyset sort order. serviceEndDate is included so the
// date-range overlap filter can be answered from the index.
var ClaimsIndexKeys = bson.D{
	{Key: "billingProvider.providerId", Value: 1},
	{Key: "serviceBeginDate", Value: 1},
	{Key: "serviceEndDate", Value: 1},
	{Key: "_id", Value: 1},
}

// supersededIndexNames are earlier variants dropped when ensuring the
// canonical index, so only one definition exists at a time.
var supersededIndexNames = []string{
	"idx_provider_tin_service_begin_id",
	"idx_provider_id_service_begin_id",
}

const (
	codeUnauthorized  = 13
	codeIndexNotFound = 27
)

func isUnauthorized(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(codeUnauthorized)
}

func isIndexNotFound(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(codeIndexNotFound)
}

// EnsureClaimsIndex creates the canonical compound index if absent and drops
// superseded variants. Idempotent: safe to run repeatedly; dropping an index
// that does not exist is a no-op. Returns the index name.
func EnsureClaimsIndex(ctx context.Context, coll *mongo.Collection) (string, error) {
	view := coll.Indexes()

	for _, old := range supersededIndexNames {
		if _, err := view.DropOne(ctx, old); err != nil {
			if isIndexNotFound(err) {
				continue
			}
			if isUnauthorized(err) {
				return "", fmt.Errorf("drop index %s: %w", old, ErrInsufficientPrivilege)
			}
			return "", fmt.Errorf("drop index %s: %w", old, err)
		}
	}

	name, err := view.CreateOne(ctx, mongo.IndexModel{
		Keys:    ClaimsIndexKeys,
		Options: options.Index().SetName(ClaimsIndexName),
	})
	if err != nil {
		if isUnauthorized(err) {
			return "", fmt.Errorf("create index %s: %w", ClaimsIndexName, ErrInsufficientPrivilege)
		}
		return "", fmt.Errorf("create index %s: %w", ClaimsIndexName, err)
	}
	return name, nil
}
