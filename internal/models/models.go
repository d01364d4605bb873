package models

import "time"

// Direction is the two-valued route tag for an offer. The wire values are
// what riders see on the board, inherited from the launch deployment.
type Direction string

const (
	DirectionToNOVA   Direction = "To NOVA"
	DirectionToCampus Direction = "To Blacksburg"
)

// Valid reports whether d is one of the two canonical directions.
func (d Direction) Valid() bool {
	return d == DirectionToNOVA || d == DirectionToCampus
}

// Identity is a verified community member as resolved by the identity gate.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// OfferSubmission carries the caller-supplied fields of a new offer.
// DriverID is deliberately absent: it always comes from the gate.
type OfferSubmission struct {
	Direction   Direction `json:"direction"`
	ScheduledAt time.Time `json:"date_time"`
	Pickup      string    `json:"pickup"`
	Dropoff     string    `json:"dropoff"`
	SeatsTotal  int       `json:"seats"`
	Price       *float64  `json:"price,omitempty"` // nil means "use the configured default"
	Notes       string    `json:"notes,omitempty"`
	Venmo       string    `json:"venmo,omitempty"`
}

// RideOffer is a driver's posted trip. SeatsLeft starts equal to SeatsTotal
// and only ever decreases through seat reservation.
type RideOffer struct {
	ID          string    `json:"id"`
	DriverID    string    `json:"driver_id"`
	Direction   Direction `json:"direction"`
	ScheduledAt time.Time `json:"date_time"`
	Pickup      string    `json:"pickup"`
	Dropoff     string    `json:"dropoff"`
	SeatsTotal  int       `json:"seats"`
	SeatsLeft   int       `json:"seats_left"`
	Price       float64   `json:"price"`
	Notes       string    `json:"notes,omitempty"`
	Venmo       string    `json:"venmo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// OfferEvent is the message published to Kafka when an offer is created.
type OfferEvent struct {
	Type  string    `json:"type"`
	Offer RideOffer `json:"offer"`
}

const EventOfferCreated = "offer_created"
