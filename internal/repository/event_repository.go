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

const eventColumns = `id, title_es, title_en, body_es, body_en, category_es, category_en, tags_es, tags_en, phrase_es, phrase_en, credits_es, credits_en, date, author, location_city, location_country, cover_image_url, created_at, updated_at`

// EventRepository provides database access for event records and their
// galleries.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events matching the filter plus the total count.
func (r *EventRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.Event, int, error) {
	filter.Normalize()

	where, args, err := BuildWhere(ContentPredicates(filter))
	if err != nil {
		return nil, 0, fmt.Errorf("build event filter: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	listQuery := fmt.Sprintf("SELECT %s FROM events WHERE 1=1%s ORDER BY date DESC LIMIT %d OFFSET %d", eventColumns, where, filter.Limit, offset)

	var items []models.Event
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM events WHERE 1=1" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	return items, total, nil
}

// FindByID returns one event joined with its ordered gallery.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1 LIMIT 1", eventColumns)
	var item models.Event
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find event by id: %w", err)
	}

	images, err := r.findImages(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Images = images

	return &item, nil
}

// Create inserts an event and its gallery in one transaction.
func (r *EventRepository) Create(ctx context.Context, item *models.Event, imageURLs []string) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create event: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO events (id, title_es, title_en, body_es, body_en, category_es, category_en, tags_es, tags_en, phrase_es, phrase_en, credits_es, credits_en, date, author, location_city, location_country, cover_image_url, created_at, updated_at)
		VALUES (:id, :title_es, :title_en, :body_es, :body_en, :category_es, :category_en, :tags_es, :tags_en, :phrase_es, :phrase_en, :credits_es, :credits_en, :date, :author, :location_city, :location_country, :cover_image_url, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	images, err := insertGallery(ctx, tx, "event_images", "event_id", item.ID, imageURLs)
	if err != nil {
		return err
	}
	item.Images = images

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create event: %w", err)
	}
	return nil
}

// Update writes the full merged record, replacing the gallery only when new
// URLs are supplied.
func (r *EventRepository) Update(ctx context.Context, item *models.Event, imageURLs []string) error {
	item.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update event: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE events SET title_es = :title_es, title_en = :title_en, body_es = :body_es, body_en = :body_en, category_es = :category_es, category_en = :category_en, tags_es = :tags_es, tags_en = :tags_en, phrase_es = :phrase_es, phrase_en = :phrase_en, credits_es = :credits_es, credits_en = :credits_en, date = :date, author = :author, location_city = :location_city, location_country = :location_country, cover_image_url = :cover_image_url, updated_at = :updated_at WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if len(imageURLs) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_images WHERE event_id = $1`, item.ID); err != nil {
			return fmt.Errorf("clear event gallery: %w", err)
		}
		images, err := insertGallery(ctx, tx, "event_images", "event_id", item.ID, imageURLs)
		if err != nil {
			return err
		}
		item.Images = images
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update event: %w", err)
	}
	return nil
}

// Delete removes the gallery first, then the record.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete event: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_images WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete event gallery: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete event: %w", err)
	}
	return nil
}

func (r *EventRepository) findImages(ctx context.Context, eventID string) ([]models.ContentImage, error) {
	const query = `SELECT id, event_id AS parent_id, image_url, position FROM event_images WHERE event_id = $1 ORDER BY position ASC`
	var images []models.ContentImage
	if err := r.db.SelectContext(ctx, &images, query, eventID); err != nil {
		return nil, fmt.Errorf("find event gallery: %w", err)
	}
	return images, nil
}
