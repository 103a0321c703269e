package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/escalando-ong/cms-api/internal/models"
	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
)

type newsRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.News, int, error)
	FindByID(ctx context.Context, id string) (*models.News, error)
	Create(ctx context.Context, item *models.News, imageURLs []string) error
	Update(ctx context.Context, item *models.News, imageURLs []string) error
	Delete(ctx context.Context, id string) error
}

// CreateNewsRequest is the payload for creating a news record. Spanish fields
// are mandatory; English fields are optional and suppress auto-translation
// when present.
type CreateNewsRequest struct {
	TitleES         string    `json:"title_es" validate:"required"`
	TitleEN         string    `json:"title_en"`
	BodyES          string    `json:"body_es" validate:"required"`
	BodyEN          string    `json:"body_en"`
	CategoryES      string    `json:"category_es" validate:"required"`
	CategoryEN      string    `json:"category_en"`
	TagsES          []string  `json:"tags_es" validate:"required,min=1"`
	TagsEN          []string  `json:"tags_en"`
	Date            time.Time `json:"date" validate:"required"`
	Author          string    `json:"author" validate:"required"`
	LocationCity    string    `json:"location_city" validate:"required"`
	LocationCountry string    `json:"location_country" validate:"required"`
	CoverImageURL   string    `json:"cover_image_url" validate:"omitempty,url"`
	Images          []string  `json:"images" validate:"omitempty,dive,url"`
}

// UpdateNewsRequest is the partial payload for updating a news record. Nil
// fields are left untouched; a nil Images slice keeps the current gallery.
type UpdateNewsRequest struct {
	TitleES         *string    `json:"title_es"`
	TitleEN         *string    `json:"title_en"`
	BodyES          *string    `json:"body_es"`
	BodyEN          *string    `json:"body_en"`
	CategoryES      *string    `json:"category_es"`
	CategoryEN      *string    `json:"category_en"`
	TagsES          []string   `json:"tags_es"`
	TagsEN          []string   `json:"tags_en"`
	Date            *time.Time `json:"date"`
	Author          *string    `json:"author"`
	LocationCity    *string    `json:"location_city"`
	LocationCountry *string    `json:"location_country"`
	CoverImageURL   *string    `json:"cover_image_url" validate:"omitempty,url"`
	Images          []string   `json:"images" validate:"omitempty,dive,url"`
}

// NewsService implements the bilingual news workflow: validation, translation
// sync, persistence, cache invalidation and audit recording.
type NewsService struct {
	repo     newsRepository
	sync     *SyncEngine
	audit    *AuditService
	cache    *CacheService
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewNewsService creates a NewsService.
func NewNewsService(repo newsRepository, sync *SyncEngine, audit *AuditService, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *NewsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsService{repo: repo, sync: sync, audit: audit, cache: cache, metrics: metrics, validate: validate, logger: logger}
}

type newsListPayload struct {
	Items      []models.News     `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

// List returns news matching the filter, serving from cache when possible.
func (s *NewsService) List(ctx context.Context, filter models.ContentFilter) ([]models.News, models.Pagination, error) {
	filter.Normalize()
	key := listCacheKey("news", filter)

	var cached newsListPayload
	if s.cache.Get(ctx, key, &cached) {
		return cached.Items, cached.Pagination, nil
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list news")
	}
	pagination := buildPagination(filter, total)

	s.cache.Set(ctx, key, newsListPayload{Items: items, Pagination: pagination})
	return items, pagination, nil
}

// Get returns one news record with its gallery.
func (s *NewsService) Get(ctx context.Context, id string) (*models.News, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "news not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news")
	}
	return item, nil
}

// Create validates the payload, resolves translations and persists the record
// with its gallery. Each auto-translated field produces one audit entry
// before the create entry itself.
func (s *NewsService) Create(ctx context.Context, actorID *string, req CreateNewsRequest) (*models.News, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid news payload")
	}

	syncReq := SyncRequest{
		Pairs: []Pair{
			{Name: "title", IncomingES: &req.TitleES, IncomingEN: optionalString(req.TitleEN)},
			{Name: "body", IncomingES: &req.BodyES, IncomingEN: optionalString(req.BodyEN)},
			{Name: "category", IncomingES: &req.CategoryES, IncomingEN: optionalString(req.CategoryEN)},
		},
		Tags: &TagsPair{IncomingES: req.TagsES, IncomingEN: emptyAsNil(req.TagsEN)},
	}
	res, err := s.sync.Resolve(ctx, syncReq)
	if err != nil {
		return nil, translationError(err)
	}

	item := &models.News{
		TitleES:         res.Pairs["title"].ES,
		TitleEN:         res.Pairs["title"].EN,
		BodyES:          res.Pairs["body"].ES,
		BodyEN:          res.Pairs["body"].EN,
		CategoryES:      res.Pairs["category"].ES,
		CategoryEN:      res.Pairs["category"].EN,
		TagsES:          pq.StringArray(res.Tags.ES),
		TagsEN:          pq.StringArray(res.Tags.EN),
		Date:            req.Date,
		Author:          req.Author,
		LocationCity:    req.LocationCity,
		LocationCountry: req.LocationCountry,
		CoverImageURL:   req.CoverImageURL,
	}

	if err := s.repo.Create(ctx, item, req.Images); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create news")
	}

	s.recordTranslations(ctx, actorID, "news", res.Changes())
	s.audit.Log(ctx, actorID, "news", models.AuditActionCreate, item)
	s.cache.Invalidate(ctx, "news:*")

	return item, nil
}

// Update merges the partial payload over the stored record. When nothing
// effectively changes the write and every audit entry are skipped.
func (s *NewsService) Update(ctx context.Context, actorID *string, id string, req UpdateNewsRequest) (*models.News, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid news payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "news not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news")
	}

	syncReq := SyncRequest{
		Pairs: []Pair{
			{Name: "title", IncomingES: req.TitleES, IncomingEN: req.TitleEN, StoredES: existing.TitleES, StoredEN: existing.TitleEN},
			{Name: "body", IncomingES: req.BodyES, IncomingEN: req.BodyEN, StoredES: existing.BodyES, StoredEN: existing.BodyEN},
			{Name: "category", IncomingES: req.CategoryES, IncomingEN: req.CategoryEN, StoredES: existing.CategoryES, StoredEN: existing.CategoryEN},
		},
		Tags: &TagsPair{IncomingES: req.TagsES, IncomingEN: req.TagsEN, StoredES: existing.TagsES, StoredEN: existing.TagsEN},
	}
	res, err := s.sync.Resolve(ctx, syncReq)
	if err != nil {
		return nil, translationError(err)
	}

	merged := *existing
	merged.TitleES = res.Pairs["title"].ES
	merged.TitleEN = res.Pairs["title"].EN
	merged.BodyES = res.Pairs["body"].ES
	merged.BodyEN = res.Pairs["body"].EN
	merged.CategoryES = res.Pairs["category"].ES
	merged.CategoryEN = res.Pairs["category"].EN
	merged.TagsES = pq.StringArray(res.Tags.ES)
	merged.TagsEN = pq.StringArray(res.Tags.EN)
	if req.Date != nil {
		merged.Date = *req.Date
	}
	if req.Author != nil {
		merged.Author = *req.Author
	}
	if req.LocationCity != nil {
		merged.LocationCity = *req.LocationCity
	}
	if req.LocationCountry != nil {
		merged.LocationCountry = *req.LocationCountry
	}
	if req.CoverImageURL != nil {
		merged.CoverImageURL = *req.CoverImageURL
	}

	if len(req.Images) == 0 && newsUnchanged(existing, &merged) {
		return existing, nil
	}

	if err := s.repo.Update(ctx, &merged, req.Images); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "news not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update news")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload news")
	}

	s.recordTranslations(ctx, actorID, "news", res.Changes())
	s.audit.Log(ctx, actorID, "news", models.AuditActionUpdate, updated)
	s.cache.Invalidate(ctx, "news:*")

	return updated, nil
}

// Delete removes the record and its gallery.
func (s *NewsService) Delete(ctx context.Context, actorID *string, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "news not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete news")
	}

	s.audit.Log(ctx, actorID, "news", models.AuditActionDelete, map[string]string{"id": id})
	s.cache.Invalidate(ctx, "news:*")
	return nil
}

func (s *NewsService) recordTranslations(ctx context.Context, actorID *string, resource string, changes []models.TranslationChange) {
	for _, change := range changes {
		if s.metrics != nil {
			s.metrics.RecordTranslation()
		}
		s.audit.Log(ctx, actorID, resource, models.AuditActionTranslate, change)
	}
}

func newsUnchanged(a, b *models.News) bool {
	return a.TitleES == b.TitleES && a.TitleEN == b.TitleEN &&
		a.BodyES == b.BodyES && a.BodyEN == b.BodyEN &&
		a.CategoryES == b.CategoryES && a.CategoryEN == b.CategoryEN &&
		stringSlicesEqual(a.TagsES, b.TagsES) && stringSlicesEqual(a.TagsEN, b.TagsEN) &&
		a.Date.Equal(b.Date) && a.Author == b.Author &&
		a.LocationCity == b.LocationCity && a.LocationCountry == b.LocationCountry &&
		a.CoverImageURL == b.CoverImageURL
}

// optionalString treats the empty string as absent. Create payloads carry
// plain strings, so an omitted English field arrives as "".
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func emptyAsNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func translationError(err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrTranslation.Code, appErrors.ErrTranslation.Status, appErrors.ErrTranslation.Message)
}

func listCacheKey(resource string, f models.ContentFilter) string {
	from, to := "", ""
	if f.DateFrom != nil {
		from = f.DateFrom.UTC().Format(time.RFC3339)
	}
	if f.DateTo != nil {
		to = f.DateTo.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s:list:p=%d:l=%d:q=%s:from=%s:to=%s", resource, f.Page, f.Limit, f.Search, from, to)
}

func buildPagination(f models.ContentFilter, total int) models.Pagination {
	pages := 0
	if f.Limit > 0 {
		pages = (total + f.Limit - 1) / f.Limit
	}
	return models.Pagination{Page: f.Page, PageSize: f.Limit, TotalCount: total, TotalPages: pages}
}
