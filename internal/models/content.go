package models

import (
	"time"

	"github.com/lib/pq"
)

// News is a bilingual news record. Every *_es field is authored in Spanish;
// the *_en counterpart is either supplied explicitly or derived by the
// translation pipeline.
type News struct {
	ID              string         `db:"id" json:"id"`
	TitleES         string         `db:"title_es" json:"title_es"`
	TitleEN         string         `db:"title_en" json:"title_en"`
	BodyES          string         `db:"body_es" json:"body_es"`
	BodyEN          string         `db:"body_en" json:"body_en"`
	CategoryES      string         `db:"category_es" json:"category_es"`
	CategoryEN      string         `db:"category_en" json:"category_en"`
	TagsES          pq.StringArray `db:"tags_es" json:"tags_es"`
	TagsEN          pq.StringArray `db:"tags_en" json:"tags_en"`
	Date            time.Time      `db:"date" json:"date"`
	Author          string         `db:"author" json:"author"`
	LocationCity    string         `db:"location_city" json:"location_city"`
	LocationCountry string         `db:"location_country" json:"location_country"`
	CoverImageURL   string         `db:"cover_image_url" json:"cover_image_url"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`

	Images []ContentImage `db:"-" json:"images,omitempty"`
}

// Event extends the shared bilingual content shape with a phrase and credits.
type Event struct {
	ID              string         `db:"id" json:"id"`
	TitleES         string         `db:"title_es" json:"title_es"`
	TitleEN         string         `db:"title_en" json:"title_en"`
	BodyES          string         `db:"body_es" json:"body_es"`
	BodyEN          string         `db:"body_en" json:"body_en"`
	CategoryES      string         `db:"category_es" json:"category_es"`
	CategoryEN      string         `db:"category_en" json:"category_en"`
	TagsES          pq.StringArray `db:"tags_es" json:"tags_es"`
	TagsEN          pq.StringArray `db:"tags_en" json:"tags_en"`
	PhraseES        string         `db:"phrase_es" json:"phrase_es"`
	PhraseEN        string         `db:"phrase_en" json:"phrase_en"`
	CreditsES       string         `db:"credits_es" json:"credits_es"`
	CreditsEN       string         `db:"credits_en" json:"credits_en"`
	Date            time.Time      `db:"date" json:"date"`
	Author          string         `db:"author" json:"author"`
	LocationCity    string         `db:"location_city" json:"location_city"`
	LocationCountry string         `db:"location_country" json:"location_country"`
	CoverImageURL   string         `db:"cover_image_url" json:"cover_image_url"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`

	Images []ContentImage `db:"-" json:"images,omitempty"`
}

// ContentImage is one entry of an ordered gallery attached to a news or
// event record. Order is zero-based and contiguous per parent; galleries are
// replaced wholesale, never merged.
type ContentImage struct {
	ID       string `db:"id" json:"id"`
	ParentID string `db:"parent_id" json:"parent_id"`
	ImageURL string `db:"image_url" json:"image_url"`
	Order    int    `db:"position" json:"order"`
}

// ContentFilter captures the list query surface shared by news and events.
type ContentFilter struct {
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

// Normalize clamps pagination to the supported window.
func (f *ContentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 50 {
		f.Limit = 50
	}
}
