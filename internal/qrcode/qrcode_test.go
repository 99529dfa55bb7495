package qrcode

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkspot/internal/db"
	apperrors "parkspot/internal/errors"
)

func testBooking() *db.Booking {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return &db.Booking{
		ID:            "b-1001",
		UserID:        "u-42",
		ParkingLotID:  "lot-7",
		ParkingSlotID: "slot-FW-01",
		VehicleNumber: "KA01AB1234",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := testBooking()

	token, err := Encode(b)
	require.NoError(t, err)

	p, err := Decode(token)
	require.NoError(t, err)

	assert.Equal(t, b.ID, p.BookingID)
	assert.Equal(t, b.ParkingLotID, p.ParkingLotID)
	assert.Equal(t, b.ParkingSlotID, p.SlotID)
	assert.Equal(t, b.UserID, p.UserID)
	assert.Equal(t, b.VehicleNumber, p.VehicleNumber)
	assert.True(t, b.StartTime.Equal(p.StartTime))
	assert.True(t, b.EndTime.Equal(p.EndTime))
	assert.Greater(t, p.Timestamp, int64(0))
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "not json", token: "not-a-token"},
		{name: "empty string", token: ""},
		{name: "json array", token: "[1,2,3]"},
		{name: "empty object", token: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			assert.ErrorIs(t, err, apperrors.ErrMalformedToken)
		})
	}
}

func TestDecodeMissingField(t *testing.T) {
	b := testBooking()
	token, err := Encode(b)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(token), &fields))

	for _, field := range []string{"bookingId", "parkingLotId", "slotId", "userId", "vehicleNumber", "startTime", "endTime"} {
		t.Run(field, func(t *testing.T) {
			stripped := make(map[string]interface{}, len(fields))
			for k, v := range fields {
				if k != field {
					stripped[k] = v
				}
			}
			raw, err := json.Marshal(stripped)
			require.NoError(t, err)

			_, err = Decode(string(raw))
			assert.ErrorIs(t, err, apperrors.ErrMalformedToken)
		})
	}
}

func TestDecodeStaleToken(t *testing.T) {
	b := testBooking()
	token, err := Encode(b)
	require.NoError(t, err)

	// Fresh token, one second shy of the bound.
	_, err = decodeAt(token, time.Now().Add(MaxTokenAge-time.Second))
	assert.NoError(t, err)

	_, err = decodeAt(token, time.Now().Add(MaxTokenAge+time.Minute))
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestDecodeMissingTimestampIsExpired(t *testing.T) {
	b := testBooking()
	token, err := Encode(b)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(token), &fields))
	delete(fields, "timestamp")
	raw, err := json.Marshal(fields)
	require.NoError(t, err)

	// A token without a creation time reads as epoch-old and is rejected
	// as stale rather than malformed.
	_, err = Decode(string(raw))
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
