package domain

import (
	"math"
	"time"
)

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lon float64 `json:"lon" bson:"lon"`
}

// Valid reports whether both components are finite and inside WGS84 bounds.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Lair is a published listing. OwnerID is the Identity that created it and
// the only one allowed to mutate it.
type Lair struct {
	ID          Identity    `json:"id"`
	OwnerID     Identity    `json:"account_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Location    Coordinates `json:"location"`
	CreatedAt   time.Time   `json:"created_at"`
}
