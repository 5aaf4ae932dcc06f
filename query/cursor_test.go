package query

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/povhealth/claimspager/claims"
)

func TestCursorRoundTrip(t *testing.T) {
	orig := Cursor{
		ServiceBeginDate: time.Date(2002, 1, 10, 0, 0, 0, 0, time.UTC),
		ServiceEndDate:   time.Date(2002, 1, 20, 0, 0, 0, 0, time.UTC),
		ID:               primitive.NewObjectID(),
	}

	decoded, err := DecodeCursor(orig.Encode())
	require.NoError(t, err)
	assert.True(t, decoded.ServiceBeginDate.Equal(orig.ServiceBeginDate))
	assert.True(t, decoded.ServiceEndDate.Equal(orig.ServiceEndDate))
	assert.Equal(t, orig.ID, decoded.ID)
}

func TestCursorRoundTripSubSecondPrecision(t *testing.T) {
	orig := Cursor{
		ServiceBeginDate: time.Date(2002, 1, 10, 13, 45, 30, 123000000, time.UTC),
		ServiceEndDate:   time.Date(2002, 1, 20, 8, 0, 0, 456000000, time.UTC),
		ID:               primitive.NewObjectID(),
	}

	decoded, err := DecodeCursor(orig.Encode())
	require.NoError(t, err)
	assert.True(t, decoded.ServiceBeginDate.Equal(orig.ServiceBeginDate))
	assert.True(t, decoded.ServiceEndDate.Equal(orig.ServiceEndDate))
}

func TestCursorFromClaim(t *testing.T) {
	doc := claims.Claim{
		ID:               primitive.NewObjectID(),
		ServiceBeginDate: time.Date(2002, 3, 1, 0, 0, 0, 0, time.UTC),
		ServiceEndDate:   time.Date(2002, 3, 5, 0, 0, 0, 0, time.UTC),
	}

	c := CursorFromClaim(doc)
	assert.Equal(t, doc.ServiceBeginDate, c.ServiceBeginDate)
	assert.Equal(t, doc.ServiceEndDate, c.ServiceEndDate)
	assert.Equal(t, doc.ID, c.ID)
}

func encodeWire(t *testing.T, payload string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestDecodeCursorInvalid(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"not json", encodeWire(t, "not json at all")},
		{"missing begin date", encodeWire(t, `{"serviceEndDate":"2002-01-20T00:00:00Z","id":"`+id+`"}`)},
		{"missing end date", encodeWire(t, `{"serviceBeginDate":"2002-01-10T00:00:00Z","id":"`+id+`"}`)},
		{"missing id", encodeWire(t, `{"serviceBeginDate":"2002-01-10T00:00:00Z","serviceEndDate":"2002-01-20T00:00:00Z"}`)},
		{"bad begin date", encodeWire(t, `{"serviceBeginDate":"01/10/2002","serviceEndDate":"2002-01-20T00:00:00Z","id":"`+id+`"}`)},
		{"bad end date", encodeWire(t, `{"serviceBeginDate":"2002-01-10T00:00:00Z","serviceEndDate":"nope","id":"`+id+`"}`)},
		{"bad id", encodeWire(t, `{"serviceBeginDate":"2002-01-10T00:00:00Z","serviceEndDate":"2002-01-20T00:00:00Z","id":"zzz"}`)},
		{"empty token", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCursor(tc.token)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}
