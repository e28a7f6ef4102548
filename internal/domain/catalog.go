package domain

import "time"

// Service categories, a fixed small set mirrored by the admin form.
const (
	CategoryVisibility = "Visibilité"
	CategorySales      = "Ventes"
	CategorySocial     = "Social"
)

// Content types.
const (
	ContentVideo     = "video"
	ContentFormation = "formation"
)

// Service is a catalog item sold by field reps.
type Service struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Content is a training video or formation shown read-only in the field app.
type Content struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	URL          string    `json:"url"`
	Description  string    `json:"description,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	Modules      int       `json:"modules,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ServiceInput is the create/update payload for a catalog service.
type ServiceInput struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
}

// ContentInput is the create/update payload for a content entry.
type ContentInput struct {
	Title        string `json:"title"`
	Type         string `json:"type"`
	URL          string `json:"url"`
	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Modules      int    `json:"modules,omitempty"`
}

// ValidCategory reports whether c is one of the fixed service categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryVisibility, CategorySales, CategorySocial:
		return true
	}
	return false
}

// ValidContentType reports whether t is a supported content type.
func ValidContentType(t string) bool {
	return t == ContentVideo || t == ContentFormation
}
