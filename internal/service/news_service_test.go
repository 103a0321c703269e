package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escalando-ong/cms-api/internal/models"
	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
)

type newsRepoStub struct {
	items       map[string]*models.News
	updateCalls int
	lastImages  []string
}

func newNewsRepoStub() *newsRepoStub {
	return &newsRepoStub{items: map[string]*models.News{}}
}

func (r *newsRepoStub) List(ctx context.Context, filter models.ContentFilter) ([]models.News, int, error) {
	var out []models.News
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (r *newsRepoStub) FindByID(ctx context.Context, id string) (*models.News, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *item
	return &clone, nil
}

func (r *newsRepoStub) Create(ctx context.Context, item *models.News, imageURLs []string) error {
	if item.ID == "" {
		item.ID = "news-1"
	}
	r.lastImages = imageURLs
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *newsRepoStub) Update(ctx context.Context, item *models.News, imageURLs []string) error {
	if _, ok := r.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	r.updateCalls++
	r.lastImages = imageURLs
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *newsRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type auditRepoStub struct {
	entries []models.AuditLog
}

func (a *auditRepoStub) Create(ctx context.Context, entry *models.AuditLog) error {
	a.entries = append(a.entries, *entry)
	return nil
}

func (a *auditRepoStub) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	return a.entries, nil
}

func (a *auditRepoStub) byAction(action string) []models.AuditLog {
	var out []models.AuditLog
	for _, e := range a.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func newTestNewsService(repo *newsRepoStub, auditRepo *auditRepoStub, translator *translatorStub) *NewsService {
	audit := NewAuditService(auditRepo, nil)
	cache := NewCacheService(nil, nil, 0, nil, false)
	return NewNewsService(repo, NewSyncEngine(translator), audit, cache, nil, nil, nil)
}

func validCreateNewsRequest() CreateNewsRequest {
	return CreateNewsRequest{
		TitleES:         "Hola",
		BodyES:          "Adiós",
		CategoryES:      "comunidad",
		TagsES:          []string{"salud"},
		Date:            time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Author:          "Ana",
		LocationCity:    "Bogotá",
		LocationCountry: "Colombia",
	}
}

func TestNewsCreateTranslatesAndAudits(t *testing.T) {
	repo := newNewsRepoStub()
	auditRepo := &auditRepoStub{}
	svc := newTestNewsService(repo, auditRepo, &translatorStub{})

	actor := "user-1"
	item, err := svc.Create(context.Background(), &actor, validCreateNewsRequest())
	require.NoError(t, err)

	assert.Equal(t, "Hello", item.TitleEN)
	assert.Equal(t, "Goodbye", item.BodyEN)
	assert.Equal(t, "en:comunidad", item.CategoryEN)
	assert.Equal(t, []string{"en:salud"}, []string(item.TagsEN))

	// title, body, category and the tag list each produce one entry.
	assert.Len(t, auditRepo.byAction(models.AuditActionTranslate), 4)
	require.Len(t, auditRepo.byAction(models.AuditActionCreate), 1)
	require.NotNil(t, auditRepo.byAction(models.AuditActionCreate)[0].UserID)
	assert.Equal(t, "user-1", *auditRepo.byAction(models.AuditActionCreate)[0].UserID)
}

func TestNewsCreateExplicitEnglishSkipsTranslation(t *testing.T) {
	repo := newNewsRepoStub()
	auditRepo := &auditRepoStub{}
	translator := &translatorStub{}
	svc := newTestNewsService(repo, auditRepo, translator)

	req := validCreateNewsRequest()
	req.TitleEN = "Manual title"
	req.BodyEN = "Manual body"
	req.CategoryEN = "community"
	req.TagsEN = []string{"health"}

	item, err := svc.Create(context.Background(), nil, req)
	require.NoError(t, err)

	assert.Equal(t, "Manual title", item.TitleEN)
	assert.EqualValues(t, 0, translator.calls)
	assert.Empty(t, auditRepo.byAction(models.AuditActionTranslate))
}

func TestNewsCreateValidationError(t *testing.T) {
	svc := newTestNewsService(newNewsRepoStub(), &auditRepoStub{}, &translatorStub{})

	req := validCreateNewsRequest()
	req.TitleES = ""

	_, err := svc.Create(context.Background(), nil, req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestNewsCreateTranslationFailureWritesNothing(t *testing.T) {
	repo := newNewsRepoStub()
	auditRepo := &auditRepoStub{}
	svc := newTestNewsService(repo, auditRepo, &translatorStub{err: assert.AnError})

	_, err := svc.Create(context.Background(), nil, validCreateNewsRequest())
	require.Error(t, err)
	assert.Empty(t, repo.items)
	assert.Empty(t, auditRepo.entries)
}

func TestNewsUpdateNoChangeSkipsWriteAndAudit(t *testing.T) {
	repo := newNewsRepoStub()
	auditRepo := &auditRepoStub{}
	translator := &translatorStub{}
	svc := newTestNewsService(repo, auditRepo, translator)

	repo.items["n1"] = &models.News{
		ID: "n1", TitleES: "Hola", TitleEN: "Hello",
		BodyES: "Texto", BodyEN: "Text",
		TagsES: []string{"salud"}, TagsEN: []string{"health"},
	}

	same := "Hola"
	_, err := svc.Update(context.Background(), nil, "n1", UpdateNewsRequest{TitleES: &same})
	require.NoError(t, err)

	assert.Zero(t, repo.updateCalls)
	assert.Empty(t, auditRepo.entries)
	assert.EqualValues(t, 0, translator.calls)
}

func TestNewsUpdateChangedSpanishRetranslates(t *testing.T) {
	repo := newNewsRepoStub()
	auditRepo := &auditRepoStub{}
	svc := newTestNewsService(repo, auditRepo, &translatorStub{})

	repo.items["n1"] = &models.News{
		ID: "n1", TitleES: "Hola", TitleEN: "Hello",
		TagsES: []string{"salud"}, TagsEN: []string{"health"},
	}

	next := "Adiós"
	item, err := svc.Update(context.Background(), nil, "n1", UpdateNewsRequest{TitleES: &next})
	require.NoError(t, err)

	assert.Equal(t, "Adiós", item.TitleES)
	assert.Equal(t, "Goodbye", item.TitleEN)
	assert.Equal(t, 1, repo.updateCalls)
	assert.Len(t, auditRepo.byAction(models.AuditActionTranslate), 1)
	assert.Len(t, auditRepo.byAction(models.AuditActionUpdate), 1)
}

func TestNewsUpdateReplacesGalleryOnlyWhenProvided(t *testing.T) {
	repo := newNewsRepoStub()
	svc := newTestNewsService(repo, &auditRepoStub{}, &translatorStub{})

	repo.items["n1"] = &models.News{ID: "n1", TitleES: "Hola", TitleEN: "Hello"}

	next := "Adiós"
	_, err := svc.Update(context.Background(), nil, "n1", UpdateNewsRequest{TitleES: &next})
	require.NoError(t, err)
	assert.Empty(t, repo.lastImages)

	_, err = svc.Update(context.Background(), nil, "n1", UpdateNewsRequest{
		Images: []string{"https://cdn.escalando.org/a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.escalando.org/a.jpg"}, repo.lastImages)
}

func TestNewsUpdateNotFound(t *testing.T) {
	svc := newTestNewsService(newNewsRepoStub(), &auditRepoStub{}, &translatorStub{})

	_, err := svc.Update(context.Background(), nil, "missing", UpdateNewsRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestNewsDeleteMissingIsNotAudited(t *testing.T) {
	auditRepo := &auditRepoStub{}
	svc := newTestNewsService(newNewsRepoStub(), auditRepo, &translatorStub{})

	err := svc.Delete(context.Background(), nil, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, auditRepo.entries)
}

func TestNewsDeleteAudits(t *testing.T) {
	repo := newNewsRepoStub()
	auditRepo := &auditRepoStub{}
	svc := newTestNewsService(repo, auditRepo, &translatorStub{})

	repo.items["n1"] = &models.News{ID: "n1"}

	require.NoError(t, svc.Delete(context.Background(), nil, "n1"))
	assert.Empty(t, repo.items)
	assert.Len(t, auditRepo.byAction(models.AuditActionDelete), 1)
}
