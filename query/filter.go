// Package query implements keyset pagination over the claims collection:
// filter construction, the opaque boundary cursor, and the page retrieval
// strategies. All operations assume the compound index
// (billingProvider.providerId, serviceBeginDate, serviceEndDate, _id).
package query

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/povhealth/claimspager/claims"
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar string to UTC midnight. Longer
// strings are truncated to the date part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// DateRangeFilter returns the overlap condition for an optional service-date
// window: a claim matches when its coverage interval intersects [start, end].
// Empty strings mean an open bound. The returned map is empty when both
// bounds are open.
func DateRangeFilter(dateStart, dateEnd string) (bson.M, error) {
	filter := bson.M{}
	if dateStart != "" {
		d, err := ParseDate(dateStart)
		if err != nil {
			return nil, err
		}
		filter["serviceEndDate"] = bson.M{"$gte": d}
	}
	if dateEnd != "" {
		d, err := ParseDate(dateEnd)
		if err != nil {
			return nil, err
		}
		filter["serviceBeginDate"] = bson.M{"$lte": d}
	}
	return filter, nil
}

// BaseFilter builds the match predicate shared by every page strategy:
// exact billing-provider match plus the optional date-range overlap.
func BaseFilter(providerID, dateStart, dateEnd string) (bson.M, error) {
	filter, err := DateRangeFilter(dateStart, dateEnd)
	if err != nil {
		return nil, err
	}
	filter[claims.FieldProviderID] = providerID
	return filter, nil
}

// AfterFilter conjoins base with the keyset condition
// (serviceBeginDate, serviceEndDate, _id) > cursor. The store has no tuple
// comparison operator, so lexicographic order is spelled out as the
// three-branch disjunction; this matches the compound index order.
func AfterFilter(base bson.M, c Cursor) bson.M {
	return bson.M{
		"$and": bson.A{
			base,
			bson.M{
				"$or": bson.A{
					bson.M{"serviceBeginDate": bson.M{"$gt": c.ServiceBeginDate}},
					bson.M{
						"serviceBeginDate": c.ServiceBeginDate,
						"serviceEndDate":   bson.M{"$gt": c.ServiceEndDate},
					},
					bson.M{
						"serviceBeginDate": c.ServiceBeginDate,
						"serviceEndDate":   c.ServiceEndDate,
						"_id":              bson.M{"$gt": c.ID},
					},
				},
			},
		},
	}
}

// BeforeFilter is the mirror of AfterFilter: keyset condition
// (serviceBeginDate, serviceEndDate, _id) < cursor, used for previous-page
// retrieval together with a descending index scan.
func BeforeFilter(base bson.M, c Cursor) bson.M {
	return bson.M{
		"$and": bson.A{
			base,
			bson.M{
				"$or": bson.A{
					bson.M{"serviceBeginDate": bson.M{"$lt": c.ServiceBeginDate}},
					bson.M{
						"serviceBeginDate": c.ServiceBeginDate,
						"serviceEndDate":   bson.M{"$lt": c.ServiceEndDate},
					},
					bson.M{
						"serviceBeginDate": c.ServiceBeginDate,
						"serviceEndDate":   c.ServiceEndDate,
						"_id":              bson.M{"$lt": c.ID},
					},
				},
			},
		},
	}
}
