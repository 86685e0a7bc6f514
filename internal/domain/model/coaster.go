package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coaster is a catalog entry. Length, height, drop and speed are free-form
// strings because the source data carries units ("94 mph", "310 ft").
type Coaster struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Park         string             `bson:"park" json:"park"`
	Slug         string             `bson:"slug" json:"slug"`
	OpeningYear  int                `bson:"openingYear" json:"openingYear"`
	Manufacturer string             `bson:"manufacturer" json:"manufacturer"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`
	Length       string             `bson:"length" json:"length"`
	Height       string             `bson:"height" json:"height"`
	Drop         string             `bson:"drop,omitempty" json:"drop,omitempty"`
	Speed        string             `bson:"speed" json:"speed"`
	Inversions   int                `bson:"inversions" json:"inversions"`
	GForce       *int               `bson:"gForce,omitempty" json:"gForce,omitempty"`
	CreatedOn    time.Time          `bson:"createdOn" json:"createdOn"`
}
