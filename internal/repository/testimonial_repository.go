package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/escalando-ong/cms-api/internal/models"
)

// TestimonialRepository provides database access for testimonials.
type TestimonialRepository struct {
	db *sqlx.DB
}

// NewTestimonialRepository creates a new instance of TestimonialRepository.
func NewTestimonialRepository(db *sqlx.DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

// List returns all testimonials, newest first.
func (r *TestimonialRepository) List(ctx context.Context) ([]models.Testimonial, error) {
	const query = `SELECT id, author, role, body_es, body_en, image_url, created_at, updated_at FROM testimonials ORDER BY created_at DESC`
	var items []models.Testimonial
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	return items, nil
}

// FindByID returns a testimonial by identifier.
func (r *TestimonialRepository) FindByID(ctx context.Context, id string) (*models.Testimonial, error) {
	const query = `SELECT id, author, role, body_es, body_en, image_url, created_at, updated_at FROM testimonials WHERE id = $1 LIMIT 1`
	var item models.Testimonial
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find testimonial by id: %w", err)
	}
	return &item, nil
}

// Create inserts a new testimonial.
func (r *TestimonialRepository) Create(ctx context.Context, item *models.Testimonial) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	const query = `INSERT INTO testimonials (id, author, role, body_es, body_en, image_url, created_at, updated_at) VALUES (:id, :author, :role, :body_es, :body_en, :image_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create testimonial: %w", err)
	}
	return nil
}

// Update writes mutable testimonial fields.
func (r *TestimonialRepository) Update(ctx context.Context, item *models.Testimonial) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE testimonials SET author = :author, role = :role, body_es = :body_es, body_en = :body_en, image_url = :image_url, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update testimonial: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a testimonial.
func (r *TestimonialRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete testimonial: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
