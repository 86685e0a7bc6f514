package model

// Role maps a role name to its granted permissions. Looked up by name when
// a session token is issued.
type Role struct {
	Name        string          `bson:"name" json:"name"`
	Permissions map[string]bool `bson:"permissions" json:"permissions"`
}
