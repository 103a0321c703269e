package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escalando-ong/cms-api/internal/models"
	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
)

type testimonialRepository interface {
	List(ctx context.Context) ([]models.Testimonial, error)
	FindByID(ctx context.Context, id string) (*models.Testimonial, error)
	Create(ctx context.Context, item *models.Testimonial) error
	Update(ctx context.Context, item *models.Testimonial) error
	Delete(ctx context.Context, id string) error
}

// CreateTestimonialRequest is the payload for creating a testimonial. Both
// language bodies are authored by hand.
type CreateTestimonialRequest struct {
	Author   string `json:"author" validate:"required"`
	Role     string `json:"role" validate:"required"`
	BodyES   string `json:"body_es" validate:"required"`
	BodyEN   string `json:"body_en" validate:"required"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

// UpdateTestimonialRequest is the partial payload for updating a testimonial.
type UpdateTestimonialRequest struct {
	Author   *string `json:"author"`
	Role     *string `json:"role"`
	BodyES   *string `json:"body_es"`
	BodyEN   *string `json:"body_en"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

// TestimonialService implements testimonial CRUD with audit recording.
type TestimonialService struct {
	repo     testimonialRepository
	audit    *AuditService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewTestimonialService creates a TestimonialService.
func NewTestimonialService(repo testimonialRepository, audit *AuditService, validate *validator.Validate, logger *zap.Logger) *TestimonialService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TestimonialService{repo: repo, audit: audit, validate: validate, logger: logger}
}

// List returns every testimonial, newest first.
func (s *TestimonialService) List(ctx context.Context) ([]models.Testimonial, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list testimonials")
	}
	return items, nil
}

// Get returns one testimonial.
func (s *TestimonialService) Get(ctx context.Context, id string) (*models.Testimonial, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "testimonial not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load testimonial")
	}
	return item, nil
}

// Create validates and persists a testimonial.
func (s *TestimonialService) Create(ctx context.Context, actorID *string, req CreateTestimonialRequest) (*models.Testimonial, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid testimonial payload")
	}

	item := &models.Testimonial{
		Author:   req.Author,
		Role:     req.Role,
		BodyES:   req.BodyES,
		BodyEN:   req.BodyEN,
		ImageURL: req.ImageURL,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create testimonial")
	}

	s.audit.Log(ctx, actorID, "testimonials", models.AuditActionCreate, item)
	return item, nil
}

// Update merges the partial payload over the stored testimonial.
func (s *TestimonialService) Update(ctx context.Context, actorID *string, id string, req UpdateTestimonialRequest) (*models.Testimonial, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid testimonial payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	if req.Author != nil {
		merged.Author = *req.Author
	}
	if req.Role != nil {
		merged.Role = *req.Role
	}
	if req.BodyES != nil {
		merged.BodyES = *req.BodyES
	}
	if req.BodyEN != nil {
		merged.BodyEN = *req.BodyEN
	}
	if req.ImageURL != nil {
		merged.ImageURL = *req.ImageURL
	}

	if err := s.repo.Update(ctx, &merged); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "testimonial not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update testimonial")
	}

	s.audit.Log(ctx, actorID, "testimonials", models.AuditActionUpdate, &merged)
	return &merged, nil
}

// Delete removes a testimonial.
func (s *TestimonialService) Delete(ctx context.Context, actorID *string, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "testimonial not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete testimonial")
	}

	s.audit.Log(ctx, actorID, "testimonials", models.AuditActionDelete, map[string]string{"id": id})
	return nil
}
