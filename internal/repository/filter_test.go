package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escalando-ong/cms-api/internal/models"
)

func TestBuildWhereEmpty(t *testing.T) {
	where, args, err := BuildWhere(nil)
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhereSearchFansOutAsOrGroup(t *testing.T) {
	preds := ContentPredicates(models.ContentFilter{Search: "Salud"})
	where, args, err := BuildWhere(preds)
	require.NoError(t, err)

	assert.Equal(t, " AND (LOWER(title_es) LIKE $1 OR LOWER(title_en) LIKE $2 OR LOWER(category_es) LIKE $3 OR LOWER(author) LIKE $4 OR $5 = ANY(tags_es))", where)
	require.Len(t, args, 5)
	assert.Equal(t, "%salud%", args[0])
	assert.Equal(t, "Salud", args[4])
}

func TestBuildWhereDateRangeAndsWithSearch(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	preds := ContentPredicates(models.ContentFilter{Search: "x", DateFrom: &from, DateTo: &to})
	where, args, err := BuildWhere(preds)
	require.NoError(t, err)

	assert.Contains(t, where, "date >= $6")
	assert.Contains(t, where, "date <= $7")
	assert.Len(t, args, 7)
}

func TestBuildWhereRejectsUnknownField(t *testing.T) {
	_, _, err := BuildWhere([]Predicate{{Field: "password_hash", Op: OpContains, Value: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported filter")
}

func TestBuildWhereRejectsMismatchedOperator(t *testing.T) {
	_, _, err := BuildWhere([]Predicate{{Field: "date", Op: OpContains, Value: "x"}})
	require.Error(t, err)
}

func TestContentPredicatesEmptyFilter(t *testing.T) {
	assert.Empty(t, ContentPredicates(models.ContentFilter{}))
}

func TestContentFilterNormalizeClampsLimit(t *testing.T) {
	f := models.ContentFilter{Page: -2, Limit: 500}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 50, f.Limit)

	f = models.ContentFilter{}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.Limit)
}
