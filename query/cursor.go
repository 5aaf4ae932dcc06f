package query

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/povhealth/claimspager/claims"
)

// Cursor is a snapshot of the ordering key (serviceBeginDate, serviceEndDate,
// _id) taken from a page boundary record. It is opaque to callers and
// round-tripped between requests; the engine never stores it.
type Cursor struct {
	ServiceBeginDate time.Time
	ServiceEndDate   time.Time
	ID               primitive.ObjectID
}

// wireCursor is the transport form: ISO-8601 dates and a hex object id,
// wrapped in base64 so clients treat the whole thing as a token.
type wireCursor struct {
	ServiceBeginDate string `json:"serviceBeginDate"`
	ServiceEndDate   string `json:"serviceEndDate"`
	ID               string `json:"id"`
}

// CursorFromClaim builds a cursor from a page boundary record.
func CursorFromClaim(c claims.Claim) Cursor {
	return Cursor{
		ServiceBeginDate: c.ServiceBeginDate,
		ServiceEndDate:   c.ServiceEndDate,
		ID:               c.ID,
	}
}

// Encode serializes the cursor to its transport-safe token form.
func (c Cursor) Encode() string {
	w := wireCursor{
		ServiceBeginDate: c.ServiceBeginDate.UTC().Format(time.RFC3339Nano),
		ServiceEndDate:   c.ServiceEndDate.UTC().Format(time.RFC3339Nano),
		ID:               c.ID.Hex(),
	}
	b, _ := json.Marshal(w)
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeCursor parses a cursor token. Any structurally incomplete or
// unparsable token fails with ErrInvalidCursor; decode(encode(x)) == x for
// every cursor built from a real boundary record.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var w wireCursor
	if err := json.Unmarshal(raw, &w); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if w.ServiceBeginDate == "" || w.ServiceEndDate == "" || w.ID == "" {
		return Cursor{}, fmt.Errorf("%w: missing field", ErrInvalidCursor)
	}

	begin, err := time.Parse(time.RFC3339Nano, w.ServiceBeginDate)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: serviceBeginDate: %v", ErrInvalidCursor, err)
	}
	end, err := time.Parse(time.RFC3339Nano, w.ServiceEndDate)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: serviceEndDate: %v", ErrInvalidCursor, err)
	}
	id, err := primitive.ObjectIDFromHex(w.ID)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: id: %v", ErrInvalidCursor, err)
	}

	return Cursor{ServiceBeginDate: begin, ServiceEndDate: end, ID: id}, nil
}
