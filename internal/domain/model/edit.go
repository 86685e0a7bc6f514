package model

import "time"

// Edit operation labels.
const (
	OpRegister        = "Register"
	OpSelfUpdateUser  = "Self-Edit Update User"
	OpAdminUpdateUser = "Admin Update User"
	OpDeleteUser      = "Delete"
	OpNewCoaster      = "New Coaster"
)

// Edit is an immutable audit record of a mutating operation: who did what,
// when, to which document, with what payload. Written once, never updated.
type Edit struct {
	ID         string      `bson:"_id" json:"_id"`
	TimeStamp  time.Time   `bson:"timeStamp" json:"timeStamp"`
	Op         string      `bson:"op" json:"op"`
	Collection string      `bson:"collection" json:"collection"`
	Target     string      `bson:"target" json:"target"`
	Update     interface{} `bson:"update,omitempty" json:"update,omitempty"`
	Auth       *Principal  `bson:"auth,omitempty" json:"auth,omitempty"`
}
