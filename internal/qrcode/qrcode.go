// Package qrcode implements the access token embedded in a booking's QR
// code. Only the payload is handled here; rendering the token as an image
// is left to the client.
package qrcode

import (
	"encoding/json"
	"time"

	"parkspot/internal/db"
	apperrors "parkspot/internal/errors"
)

// MaxTokenAge is the staleness bound on a token, independent of the
// booking window it is bound to.
const MaxTokenAge = 24 * time.Hour

// Payload is the data bound into the token. The token is not signed;
// integrity rests on the lookup against the stored booking, so it acts as
// a capability hint rather than a credential.
type Payload struct {
	BookingID     string    `json:"bookingId"`
	ParkingLotID  string    `json:"parkingLotId"`
	SlotID        string    `json:"slotId"`
	UserID        string    `json:"userId"`
	VehicleNumber string    `json:"vehicleNumber"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	Timestamp     int64     `json:"timestamp"`
}

// Encode serializes the booking's identifying fields into a token string.
// Timestamp is the token creation time in milliseconds since epoch.
func Encode(b *db.Booking) (string, error) {
	p := Payload{
		BookingID:     b.ID,
		ParkingLotID:  b.ParkingLotID,
		SlotID:        b.ParkingSlotID,
		UserID:        b.UserID,
		VehicleNumber: b.VehicleNumber,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Timestamp:     time.Now().UnixMilli(),
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode parses and validates a token. It fails with ErrMalformedToken on
// unparseable input or missing fields and with ErrTokenExpired when the
// token is older than MaxTokenAge.
func Decode(token string) (*Payload, error) {
	return decodeAt(token, time.Now())
}

func decodeAt(token string, now time.Time) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(token), &p); err != nil {
		return nil, apperrors.ErrMalformedToken
	}
	if p.BookingID == "" || p.ParkingLotID == "" || p.SlotID == "" ||
		p.UserID == "" || p.VehicleNumber == "" ||
		p.StartTime.IsZero() || p.EndTime.IsZero() {
		return nil, apperrors.ErrMalformedToken
	}
	issued := time.UnixMilli(p.Timestamp)
	if now.Sub(issued) > MaxTokenAge {
		return nil, apperrors.ErrTokenExpired
	}
	return &p, nil
}
