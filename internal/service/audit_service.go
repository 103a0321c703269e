package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/escalando-ong/cms-api/internal/models"
	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
	"github.com/escalando-ong/cms-api/pkg/export"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// AuditService is the append-only recorder for every mutating action.
// Writing is best-effort: a failed append is logged and never blocks the
// primary operation's response.
type AuditService struct {
	repo   auditRepository
	logger *zap.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Log appends one entry. The changes payload is marshalled as-is.
func (s *AuditService) Log(ctx context.Context, userID *string, resource, action string, changes interface{}) {
	payload, err := json.Marshal(changes)
	if err != nil {
		s.logger.Warn("failed to encode audit payload", zap.String("resource", resource), zap.String("action", action), zap.Error(err))
		return
	}

	entry := &models.AuditLog{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Changes:  payload,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("resource", resource), zap.String("action", action), zap.Error(err))
	}
}

// Recent returns the latest 100 entries, newest first.
func (s *AuditService) Recent(ctx context.Context) ([]models.AuditLog, error) {
	entries, err := s.repo.ListRecent(ctx, 100)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	return entries, nil
}

// Export renders the recent window as a downloadable document.
func (s *AuditService) Export(ctx context.Context, format string) ([]byte, string, error) {
	entries, err := s.Recent(ctx)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"created_at", "user_id", "resource", "action", "changes"},
		Rows:    make([]map[string]string, 0, len(entries)),
	}
	for _, e := range entries {
		userID := ""
		if e.UserID != nil {
			userID = *e.UserID
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"created_at": e.CreatedAt.UTC().Format(time.RFC3339),
			"user_id":    userID,
			"resource":   e.Resource,
			"action":     e.Action,
			"changes":    string(e.Changes),
		})
	}

	switch format {
	case "csv", "":
		data, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return data, "text/csv", nil
	case "pdf":
		data, err := export.NewPDFExporter().Render(dataset, "Audit log")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
