package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Service is a treatment offered by the clinic together with the slot
// labels it can be booked at, e.g. "08.00 AM - 08.30 AM".
// A fully booked service still serializes "slots": []; only a service
// without slots at all omits the key.
type Service struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Slots []string           `bson:"slots,omitempty" json:"slots,omitzero"`
	Price float64            `bson:"price,omitempty" json:"price,omitempty"`
}
