package models

import (
	"time"
)

// Photo is one gallery image. Key is the media host public id; the position
// of a Photo inside Event.Photos is the display order and is significant.
type Photo struct {
	Key         string        `bson:"key" json:"key"`
	Src         string        `bson:"src" json:"src"`
	Alt         string        `bson:"alt,omitempty" json:"alt,omitempty"`
	Title       string        `bson:"title,omitempty" json:"title,omitempty"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	Width       int           `bson:"width" json:"width"`
	Height      int           `bson:"height" json:"height"`
	SrcSet      []SrcSetEntry `bson:"-" json:"srcSet,omitempty"`
}

// SrcSetEntry is a responsive delivery variant attached to a Photo on read.
// It is never persisted.
type SrcSetEntry struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Event represents a scheduled gathering
type Event struct {
	ID              string    `bson:"_id" json:"id"`
	Date            time.Time `bson:"date" json:"date"`
	Title           string    `bson:"title" json:"title"`
	Type            string    `bson:"type,omitempty" json:"type,omitempty"`
	Location        string    `bson:"location,omitempty" json:"location,omitempty"`
	LocationDetails string    `bson:"locationDetails,omitempty" json:"locationDetails,omitempty"`
	LocationLink    string    `bson:"locationLink,omitempty" json:"locationLink,omitempty"`
	Image           string    `bson:"image,omitempty" json:"image,omitempty"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	JoinLink        string    `bson:"joinLink,omitempty" json:"joinLink,omitempty"`
	Duration        int       `bson:"duration,omitempty" json:"duration,omitempty"` // minutes
	Price           string    `bson:"price,omitempty" json:"price,omitempty"`
	Quantity        int       `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Draft           bool      `bson:"draft,omitempty" json:"draft,omitempty"`
	Photos          []Photo   `bson:"photos" json:"photos"`
}

// EventInput is the client-supplied shape for create/update. Date and
// Timezone together describe a local wall-clock instant; the service layer
// converts them into the stored absolute time.
type EventInput struct {
	Date            string `json:"date" binding:"required"` // "2006-01-02 15:04" local time
	Timezone        string `json:"timezone"`                // IANA name, defaults to UTC
	Title           string `json:"title" binding:"required"`
	Type            string `json:"type"`
	Location        string `json:"location"`
	LocationDetails string `json:"locationDetails"`
	LocationLink    string `json:"locationLink"`
	Image           string `json:"image"`
	Description     string `json:"description"`
	JoinLink        string `json:"joinLink"`
	Duration        int    `json:"duration"`
	Price           string `json:"price"`
	Quantity        int    `json:"quantity"`
	Draft           bool   `json:"draft"`
}
