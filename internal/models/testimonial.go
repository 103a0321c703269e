package models

import "time"

// Testimonial is a quote shown on the marketing site. Both language bodies
// are authored by hand; testimonials do not go through the translation
// pipeline.
type Testimonial struct {
	ID        string    `db:"id" json:"id"`
	Author    string    `db:"author" json:"author"`
	Role      string    `db:"role" json:"role"`
	BodyES    string    `db:"body_es" json:"body_es"`
	BodyEN    string    `db:"body_en" json:"body_en"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
