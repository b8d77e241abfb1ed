package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Booking struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Treatment   string             `bson:"treatment" json:"treatment"`
	Date        string             `bson:"date" json:"date"`
	Patient     string             `bson:"patient" json:"patient"` // patient email
	PatientName string             `bson:"patientName,omitempty" json:"patientName,omitempty"`
	Slot        string             `bson:"slot" json:"slot"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
}

// BookingKey is the uniqueness key of a booking. The slot is deliberately
// not part of it: one patient gets one slot per treatment per day.
type BookingKey struct {
	Treatment string
	Date      string
	Patient   string
}

func (b Booking) Key() BookingKey {
	return BookingKey{Treatment: b.Treatment, Date: b.Date, Patient: b.Patient}
}
