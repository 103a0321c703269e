package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/escalando-ong/cms-api/internal/models"
	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, item *models.Event, imageURLs []string) error
	Update(ctx context.Context, item *models.Event, imageURLs []string) error
	Delete(ctx context.Context, id string) error
}

// CreateEventRequest is the payload for creating an event. Events carry two
// extra localizable fields over news: a highlight phrase and credits.
type CreateEventRequest struct {
	TitleES         string    `json:"title_es" validate:"required"`
	TitleEN         string    `json:"title_en"`
	BodyES          string    `json:"body_es" validate:"required"`
	BodyEN          string    `json:"body_en"`
	CategoryES      string    `json:"category_es" validate:"required"`
	CategoryEN      string    `json:"category_en"`
	TagsES          []string  `json:"tags_es" validate:"required,min=1"`
	TagsEN          []string  `json:"tags_en"`
	PhraseES        string    `json:"phrase_es"`
	PhraseEN        string    `json:"phrase_en"`
	CreditsES       string    `json:"credits_es" validate:"required"`
	CreditsEN       string    `json:"credits_en"`
	Date            time.Time `json:"date" validate:"required"`
	Author          string    `json:"author" validate:"required"`
	LocationCity    string    `json:"location_city" validate:"required"`
	LocationCountry string    `json:"location_country" validate:"required"`
	CoverImageURL   string    `json:"cover_image_url" validate:"omitempty,url"`
	Images          []string  `json:"images" validate:"omitempty,dive,url"`
}

// UpdateEventRequest is the partial payload for updating an event.
type UpdateEventRequest struct {
	TitleES         *string    `json:"title_es"`
	TitleEN         *string    `json:"title_en"`
	BodyES          *string    `json:"body_es"`
	BodyEN          *string    `json:"body_en"`
	CategoryES      *string    `json:"category_es"`
	CategoryEN      *string    `json:"category_en"`
	TagsES          []string   `json:"tags_es"`
	TagsEN          []string   `json:"tags_en"`
	PhraseES        *string    `json:"phrase_es"`
	PhraseEN        *string    `json:"phrase_en"`
	CreditsES       *string    `json:"credits_es"`
	CreditsEN       *string    `json:"credits_en"`
	Date            *time.Time `json:"date"`
	Author          *string    `json:"author"`
	LocationCity    *string    `json:"location_city"`
	LocationCountry *string    `json:"location_country"`
	CoverImageURL   *string    `json:"cover_image_url" validate:"omitempty,url"`
	Images          []string   `json:"images" validate:"omitempty,dive,url"`
}

// EventService implements the bilingual event workflow.
type EventService struct {
	repo     eventRepository
	sync     *SyncEngine
	audit    *AuditService
	cache    *CacheService
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewEventService creates an EventService.
func NewEventService(repo eventRepository, sync *SyncEngine, audit *AuditService, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, sync: sync, audit: audit, cache: cache, metrics: metrics, validate: validate, logger: logger}
}

type eventListPayload struct {
	Items      []models.Event    `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

// List returns events matching the filter, serving from cache when possible.
func (s *EventService) List(ctx context.Context, filter models.ContentFilter) ([]models.Event, models.Pagination, error) {
	filter.Normalize()
	key := listCacheKey("events", filter)

	var cached eventListPayload
	if s.cache.Get(ctx, key, &cached) {
		return cached.Items, cached.Pagination, nil
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	pagination := buildPagination(filter, total)

	s.cache.Set(ctx, key, eventListPayload{Items: items, Pagination: pagination})
	return items, pagination, nil
}

// Get returns one event with its gallery.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return item, nil
}

// Create validates the payload, resolves translations and persists the event.
func (s *EventService) Create(ctx context.Context, actorID *string, req CreateEventRequest) (*models.Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	syncReq := SyncRequest{
		Pairs: []Pair{
			{Name: "title", IncomingES: &req.TitleES, IncomingEN: optionalString(req.TitleEN)},
			{Name: "body", IncomingES: &req.BodyES, IncomingEN: optionalString(req.BodyEN)},
			{Name: "category", IncomingES: &req.CategoryES, IncomingEN: optionalString(req.CategoryEN)},
			{Name: "phrase", IncomingES: &req.PhraseES, IncomingEN: optionalString(req.PhraseEN)},
			{Name: "credits", IncomingES: &req.CreditsES, IncomingEN: optionalString(req.CreditsEN)},
		},
		Tags: &TagsPair{IncomingES: req.TagsES, IncomingEN: emptyAsNil(req.TagsEN)},
	}
	res, err := s.sync.Resolve(ctx, syncReq)
	if err != nil {
		return nil, translationError(err)
	}

	item := &models.Event{
		TitleES:         res.Pairs["title"].ES,
		TitleEN:         res.Pairs["title"].EN,
		BodyES:          res.Pairs["body"].ES,
		BodyEN:          res.Pairs["body"].EN,
		CategoryES:      res.Pairs["category"].ES,
		CategoryEN:      res.Pairs["category"].EN,
		TagsES:          pq.StringArray(res.Tags.ES),
		TagsEN:          pq.StringArray(res.Tags.EN),
		PhraseES:        res.Pairs["phrase"].ES,
		PhraseEN:        res.Pairs["phrase"].EN,
		CreditsES:       res.Pairs["credits"].ES,
		CreditsEN:       res.Pairs["credits"].EN,
		Date:            req.Date,
		Author:          req.Author,
		LocationCity:    req.LocationCity,
		LocationCountry: req.LocationCountry,
		CoverImageURL:   req.CoverImageURL,
	}

	if err := s.repo.Create(ctx, item, req.Images); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.recordTranslations(ctx, actorID, "events", res.Changes())
	s.audit.Log(ctx, actorID, "events", models.AuditActionCreate, item)
	s.cache.Invalidate(ctx, "events:*")

	return item, nil
}

// Update merges the partial payload over the stored event. A payload that
// changes nothing skips the write and the audit trail entirely.
func (s *EventService) Update(ctx context.Context, actorID *string, id string, req UpdateEventRequest) (*models.Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	syncReq := SyncRequest{
		Pairs: []Pair{
			{Name: "title", IncomingES: req.TitleES, IncomingEN: req.TitleEN, StoredES: existing.TitleES, StoredEN: existing.TitleEN},
			{Name: "body", IncomingES: req.BodyES, IncomingEN: req.BodyEN, StoredES: existing.BodyES, StoredEN: existing.BodyEN},
			{Name: "category", IncomingES: req.CategoryES, IncomingEN: req.CategoryEN, StoredES: existing.CategoryES, StoredEN: existing.CategoryEN},
			{Name: "phrase", IncomingES: req.PhraseES, IncomingEN: req.PhraseEN, StoredES: existing.PhraseES, StoredEN: existing.PhraseEN},
			{Name: "credits", IncomingES: req.CreditsES, IncomingEN: req.CreditsEN, StoredES: existing.CreditsES, StoredEN: existing.CreditsEN},
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
	merged.PhraseES = res.Pairs["phrase"].ES
	merged.PhraseEN = res.Pairs["phrase"].EN
	merged.CreditsES = res.Pairs["credits"].ES
	merged.CreditsEN = res.Pairs["credits"].EN
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

	if len(req.Images) == 0 && eventUnchanged(existing, &merged) {
		return existing, nil
	}

	if err := s.repo.Update(ctx, &merged, req.Images); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload event")
	}

	s.recordTranslations(ctx, actorID, "events", res.Changes())
	s.audit.Log(ctx, actorID, "events", models.AuditActionUpdate, updated)
	s.cache.Invalidate(ctx, "events:*")

	return updated, nil
}

// Delete removes the event and its gallery.
func (s *EventService) Delete(ctx context.Context, actorID *string, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}

	s.audit.Log(ctx, actorID, "events", models.AuditActionDelete, map[string]string{"id": id})
	s.cache.Invalidate(ctx, "events:*")
	return nil
}

func (s *EventService) recordTranslations(ctx context.Context, actorID *string, resource string, changes []models.TranslationChange) {
	for _, change := range changes {
		if s.metrics != nil {
			s.metrics.RecordTranslation()
		}
		s.audit.Log(ctx, actorID, resource, models.AuditActionTranslate, change)
	}
}

func eventUnchanged(a, b *models.Event) bool {
	return a.TitleES == b.TitleES && a.TitleEN == b.TitleEN &&
		a.BodyES == b.BodyES && a.BodyEN == b.BodyEN &&
		a.CategoryES == b.CategoryES && a.CategoryEN == b.CategoryEN &&
		stringSlicesEqual(a.TagsES, b.TagsES) && stringSlicesEqual(a.TagsEN, b.TagsEN) &&
		a.PhraseES == b.PhraseES && a.PhraseEN == b.PhraseEN &&
		a.CreditsES == b.CreditsES && a.CreditsEN == b.CreditsEN &&
		a.Date.Equal(b.Date) && a.Author == b.Author &&
		a.LocationCity == b.LocationCity && a.LocationCountry == b.LocationCountry &&
		a.CoverImageURL == b.CoverImageURL
}
