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

const newsColumns = `id, title_es, title_en, body_es, body_en, category_es, category_en, tags_es, tags_en, date, author, location_city, location_country, cover_image_url, created_at, updated_at`

// NewsRepository provides database access for news records and their
// galleries.
type NewsRepository struct {
	db *sqlx.DB
}

// NewNewsRepository creates a new instance of NewsRepository.
func NewNewsRepository(db *sqlx.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// List returns news matching the filter plus the total count. Galleries are
// not joined on list queries.
func (r *NewsRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.News, int, error) {
	filter.Normalize()

	where, args, err := BuildWhere(ContentPredicates(filter))
	if err != nil {
		return nil, 0, fmt.Errorf("build news filter: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	listQuery := fmt.Sprintf("SELECT %s FROM news WHERE 1=1%s ORDER BY date DESC LIMIT %d OFFSET %d", newsColumns, where, filter.Limit, offset)

	var items []models.News
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM news WHERE 1=1" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}

	return items, total, nil
}

// FindByID returns one news record joined with its ordered gallery.
func (r *NewsRepository) FindByID(ctx context.Context, id string) (*models.News, error) {
	query := fmt.Sprintf("SELECT %s FROM news WHERE id = $1 LIMIT 1", newsColumns)
	var item models.News
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find news by id: %w", err)
	}

	images, err := r.findImages(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Images = images

	return &item, nil
}

// Create inserts a news record and its gallery in one transaction.
func (r *NewsRepository) Create(ctx context.Context, item *models.News, imageURLs []string) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create news: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO news (id, title_es, title_en, body_es, body_en, category_es, category_en, tags_es, tags_en, date, author, location_city, location_country, cover_image_url, created_at, updated_at)
		VALUES (:id, :title_es, :title_en, :body_es, :body_en, :category_es, :category_en, :tags_es, :tags_en, :date, :author, :location_city, :location_country, :cover_image_url, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create news: %w", err)
	}

	images, err := insertGallery(ctx, tx, "news_images", "news_id", item.ID, imageURLs)
	if err != nil {
		return err
	}
	item.Images = images

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create news: %w", err)
	}
	return nil
}

// Update writes the full merged record. When imageURLs is non-empty the
// gallery is replaced wholesale in the same transaction; otherwise it is left
// untouched.
func (r *NewsRepository) Update(ctx context.Context, item *models.News, imageURLs []string) error {
	item.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update news: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE news SET title_es = :title_es, title_en = :title_en, body_es = :body_es, body_en = :body_en, category_es = :category_es, category_en = :category_en, tags_es = :tags_es, tags_en = :tags_en, date = :date, author = :author, location_city = :location_city, location_country = :location_country, cover_image_url = :cover_image_url, updated_at = :updated_at WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if len(imageURLs) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM news_images WHERE news_id = $1`, item.ID); err != nil {
			return fmt.Errorf("clear news gallery: %w", err)
		}
		images, err := insertGallery(ctx, tx, "news_images", "news_id", item.ID, imageURLs)
		if err != nil {
			return err
		}
		item.Images = images
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update news: %w", err)
	}
	return nil
}

// Delete removes the gallery first, then the record. Foreign keys require
// that ordering.
func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete news: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM news_images WHERE news_id = $1`, id); err != nil {
		return fmt.Errorf("delete news gallery: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete news: %w", err)
	}
	return nil
}

func (r *NewsRepository) findImages(ctx context.Context, newsID string) ([]models.ContentImage, error) {
	const query = `SELECT id, news_id AS parent_id, image_url, position FROM news_images WHERE news_id = $1 ORDER BY position ASC`
	var images []models.ContentImage
	if err := r.db.SelectContext(ctx, &images, query, newsID); err != nil {
		return nil, fmt.Errorf("find news gallery: %w", err)
	}
	return images, nil
}

// insertGallery bulk-inserts gallery rows with position = slice index.
func insertGallery(ctx context.Context, tx *sqlx.Tx, table, parentColumn, parentID string, urls []string) ([]models.ContentImage, error) {
	images := make([]models.ContentImage, 0, len(urls))
	query := fmt.Sprintf(`INSERT INTO %s (id, %s, image_url, position) VALUES ($1, $2, $3, $4)`, table, parentColumn)
	for idx, url := range urls {
		img := models.ContentImage{
			ID:       uuid.NewString(),
			ParentID: parentID,
			ImageURL: url,
			Order:    idx,
		}
		if _, err := tx.ExecContext(ctx, query, img.ID, img.ParentID, img.ImageURL, img.Order); err != nil {
			return nil, fmt.Errorf("insert gallery row %d: %w", idx, err)
		}
		images = append(images, img)
	}
	return images, nil
}
