package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escalando-ong/cms-api/internal/models"
	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
)

func TestAuditLogIsBestEffort(t *testing.T) {
	repo := &auditRepoStub{}
	svc := NewAuditService(repo, nil)

	// A payload json.Marshal cannot encode must not panic or error out.
	svc.Log(context.Background(), nil, "news", models.AuditActionCreate, make(chan int))
	assert.Empty(t, repo.entries)

	svc.Log(context.Background(), nil, "news", models.AuditActionCreate, map[string]string{"id": "n1"})
	assert.Len(t, repo.entries, 1)
}

func TestAuditExportCSV(t *testing.T) {
	repo := &auditRepoStub{}
	svc := NewAuditService(repo, nil)

	actor := "u1"
	svc.Log(context.Background(), &actor, "news", models.AuditActionCreate, map[string]string{"id": "n1"})

	data, contentType, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(data)
	assert.True(t, strings.HasPrefix(body, "created_at,user_id,resource,action,changes"))
	assert.Contains(t, body, "news")
	assert.Contains(t, body, "create")
}

func TestAuditExportPDF(t *testing.T) {
	repo := &auditRepoStub{}
	svc := NewAuditService(repo, nil)
	svc.Log(context.Background(), nil, "events", models.AuditActionDelete, map[string]string{"id": "e1"})

	data, contentType, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestAuditExportUnknownFormat(t *testing.T) {
	svc := NewAuditService(&auditRepoStub{}, nil)

	_, _, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
