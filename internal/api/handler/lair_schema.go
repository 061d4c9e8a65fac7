package handler

import (
	"time"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

type locationRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

type createLairRequest struct {
	Title       string          `json:"title"       validate:"required,max=1000"`
	Description string          `json:"description" validate:"required,max=100000"`
	Image       string          `json:"image"       validate:"required,max=2048"`
	Location    locationRequest `json:"location"    validate:"required"`
}

type lairResponse struct {
	ID          string             `json:"id"`
	AccountID   string             `json:"account_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Location    domain.Coordinates `json:"location"`
	CreatedAt   string             `json:"created_at"`
	Links       lairLinks          `json:"_links"`
}

type lairLinks struct {
	Self string `json:"self"`
}

func toLairResponse(l *domain.Lair) lairResponse {
	return lairResponse{
		ID:          l.ID.String(),
		AccountID:   l.OwnerID.String(),
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Location:    l.Location,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		Links:       lairLinks{Self: "/lair/" + l.ID.String()},
	}
}
