package model

import "time"

// Product is a catalog entry with a hosted image and its derived thumbnail.
// This is a pure domain model with no database-specific dependencies or tags.
// The storage keys are persisted alongside the public URLs so remote assets
// can be deleted later without parsing anything back out of the URL.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Image          string    `json:"image"`
	ImageKey       string    `json:"image_key"`
	ThumbnailImage string    `json:"thumbnail_image"`
	ThumbnailKey   string    `json:"thumbnail_key"`
	CategoryID     string    `json:"category_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
