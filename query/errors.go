package query

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors returned by the engine. Input-validation errors are detected
// before any store round trip; ErrStoreUnavailable marks connection and
// timeout failures from the underlying store.
var (
	ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidCursor     = errors.New("invalid pagination cursor")
	ErrInvalidPageSize   = errors.New("page size must be positive")
	ErrStoreUnavailable  = errors.New("document store unavailable")
)

// storeErr wraps a store failure with the name of the failing operation.
// Connection and timeout failures are folded into ErrStoreUnavailable so
// callers can distinguish them from query-level failures.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
