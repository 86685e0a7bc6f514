package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can register with. Permission grants for each live in the
// Role collection, not in code.
const (
	RoleGuest                 = "Guest"
	RoleRideOperator          = "Ride Operator"
	RoleMaintenanceSupervisor = "Maintenance Supervisor"
)

// Permission names granted through roles.
const (
	PermViewData     = "canViewData"
	PermEditAnyUser  = "canEditAnyUser"
	PermEditCoasters = "canEditCoasters"
)

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email         string             `bson:"email" json:"email"`
	Password      string             `bson:"password" json:"-"` // bcrypt hash
	FullName      string             `bson:"fullName" json:"fullName"`
	GivenName     string             `bson:"givenName" json:"givenName"`
	FamilyName    string             `bson:"familyName" json:"familyName"`
	Role          string             `bson:"role" json:"role"`
	CreatedOn     time.Time          `bson:"createdOn" json:"createdOn"`
	LastUpdatedOn *time.Time         `bson:"lastUpdatedOn,omitempty" json:"lastUpdatedOn,omitempty"`
	LastUpdatedBy string             `bson:"lastUpdatedBy,omitempty" json:"lastUpdatedBy,omitempty"`
}

// Principal is the authenticated identity threaded through handlers once
// the session cookie has been verified. Never mutated after construction.
type Principal struct {
	ID          string          `json:"_id"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions"`
}

func (p Principal) HasPermission(name string) bool {
	return p.Permissions[name]
}
