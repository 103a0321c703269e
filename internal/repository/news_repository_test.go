package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escalando-ong/cms-api/internal/models"
)

func newNewsMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func newsRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "title_es", "title_en", "body_es", "body_en", "category_es", "category_en", "tags_es", "tags_en", "date", "author", "location_city", "location_country", "cover_image_url", "created_at", "updated_at"}).
		AddRow("n1", "Hola", "Hello", "Cuerpo", "Body", "comunidad", "community", "{salud}", "{health}", now, "Ana", "Bogotá", "Colombia", "", now, now)
}

func TestNewsRepositoryList(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectQuery("SELECT id, .+ FROM news WHERE 1=1 ORDER BY date DESC LIMIT 10 OFFSET 0").
		WillReturnRows(newsRow())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM news WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.ContentFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryListWithSearchAndDates(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, .+ FROM news WHERE 1=1 AND \(LOWER\(title_es\) LIKE \$1 OR .+\) AND date >= \$6 AND date <= \$7 ORDER BY date DESC`).
		WithArgs("%salud%", "%salud%", "%salud%", "%salud%", "salud", from, to).
		WillReturnRows(newsRow())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM news WHERE 1=1 AND`).
		WithArgs("%salud%", "%salud%", "%salud%", "%salud%", "salud", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.ContentFilter{Search: "salud", DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryFindByIDLoadsOrderedGallery(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectQuery("SELECT id, .+ FROM news WHERE id = \\$1 LIMIT 1").
		WithArgs("n1").
		WillReturnRows(newsRow())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, news_id AS parent_id, image_url, position FROM news_images WHERE news_id = $1 ORDER BY position ASC")).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id", "image_url", "position"}).
			AddRow("i1", "n1", "https://cdn/a.jpg", 0).
			AddRow("i2", "n1", "https://cdn/b.jpg", 1))

	item, err := repo.FindByID(context.Background(), "n1")
	require.NoError(t, err)
	require.Len(t, item.Images, 2)
	assert.Equal(t, 0, item.Images[0].Order)
	assert.Equal(t, 1, item.Images[1].Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectQuery("SELECT id, .+ FROM news WHERE id = \\$1 LIMIT 1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNewsRepositoryCreateInsertsGalleryInOrder(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO news ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO news_images ").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn/a.jpg", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO news_images ").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn/b.jpg", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item := &models.News{TitleES: "Hola", TagsES: pq.StringArray{"salud"}, TagsEN: pq.StringArray{"health"}}
	err := repo.Create(context.Background(), item, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Len(t, item.Images, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryUpdateReplacesGalleryWhenProvided(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE news SET ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM news_images WHERE news_id = $1")).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO news_images ").
		WithArgs(sqlmock.AnyArg(), "n1", "https://cdn/new.jpg", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item := &models.News{ID: "n1", TitleES: "Hola", TagsES: pq.StringArray{}, TagsEN: pq.StringArray{}}
	err := repo.Update(context.Background(), item, []string{"https://cdn/new.jpg"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryUpdateKeepsGalleryWhenOmitted(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE news SET ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item := &models.News{ID: "n1", TitleES: "Hola", TagsES: pq.StringArray{}, TagsEN: pq.StringArray{}}
	err := repo.Update(context.Background(), item, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE news SET ").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	item := &models.News{ID: "missing", TagsES: pq.StringArray{}, TagsEN: pq.StringArray{}}
	err := repo.Update(context.Background(), item, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNewsRepositoryDeleteRemovesGalleryFirst(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM news_images WHERE news_id = $1")).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM news WHERE id = $1")).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "n1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newNewsMock(t)
	defer cleanup()
	repo := NewNewsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM news_images WHERE news_id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM news WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
