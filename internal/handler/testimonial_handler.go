package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escalando-ong/cms-api/internal/service"
	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
	"github.com/escalando-ong/cms-api/pkg/response"
)

// TestimonialHandler exposes testimonial endpoints.
type TestimonialHandler struct {
	testimonials *service.TestimonialService
}

// NewTestimonialHandler constructs TestimonialHandler.
func NewTestimonialHandler(testimonials *service.TestimonialService) *TestimonialHandler {
	return &TestimonialHandler{testimonials: testimonials}
}

// List godoc
// @Summary List testimonials
// @Tags Testimonials
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /testimonials [get]
func (h *TestimonialHandler) List(c *gin.Context) {
	items, err := h.testimonials.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get one testimonial
// @Tags Testimonials
// @Produce json
// @Param id path string true "Testimonial ID"
// @Success 200 {object} response.Envelope
// @Router /testimonials/{id} [get]
func (h *TestimonialHandler) Get(c *gin.Context) {
	item, err := h.testimonials.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create testimonial
// @Tags Testimonials
// @Accept json
// @Produce json
// @Param payload body service.CreateTestimonialRequest true "Testimonial payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /testimonials [post]
func (h *TestimonialHandler) Create(c *gin.Context) {
	var req service.CreateTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.testimonials.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update testimonial
// @Tags Testimonials
// @Accept json
// @Produce json
// @Param id path string true "Testimonial ID"
// @Param payload body service.UpdateTestimonialRequest true "Partial testimonial payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /testimonials/{id} [put]
func (h *TestimonialHandler) Update(c *gin.Context) {
	var req service.UpdateTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.testimonials.Update(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete testimonial
// @Tags Testimonials
// @Param id path string true "Testimonial ID"
// @Success 204
// @Security BearerAuth
// @Router /testimonials/{id} [delete]
func (h *TestimonialHandler) Delete(c *gin.Context) {
	if err := h.testimonials.Delete(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
