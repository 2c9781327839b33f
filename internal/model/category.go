package model

import "time"

// Category groups products. Existence is validated before a product may
// reference it.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
