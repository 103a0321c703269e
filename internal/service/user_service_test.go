package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/escalando-ong/cms-api/internal/models"
	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
)

type userRepoStub struct {
	users map[string]*models.User
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{users: map[string]*models.User{}}
}

func (r *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (r *userRepoStub) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *userRepoStub) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return &pq.Error{Code: "23505"}
		}
	}
	if user.ID == "" {
		user.ID = "u1"
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *userRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func newTestUserService(repo *userRepoStub, auditRepo *auditRepoStub) *UserService {
	return NewUserService(repo, NewAuditService(auditRepo, nil), nil, nil)
}

func TestUserCreateHashesPassword(t *testing.T) {
	repo := newUserRepoStub()
	svc := newTestUserService(repo, &auditRepoStub{})

	user, err := svc.Create(context.Background(), nil, CreateUserRequest{
		Email:    "nuevo@escalando.org",
		Password: "clave-segura",
		FullName: "Nuevo Editor",
		Role:     "EDITOR",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "clave-segura", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("clave-segura")))
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo := newUserRepoStub()
	repo.users["u0"] = &models.User{ID: "u0", Email: "dup@escalando.org"}
	svc := newTestUserService(repo, &auditRepoStub{})

	_, err := svc.Create(context.Background(), nil, CreateUserRequest{
		Email:    "dup@escalando.org",
		Password: "clave-segura",
		FullName: "Duplicado",
		Role:     "ADMIN",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailExists.Code, appErrors.FromError(err).Code)
}

func TestUserCreateRejectsUnknownRole(t *testing.T) {
	svc := newTestUserService(newUserRepoStub(), &auditRepoStub{})

	_, err := svc.Create(context.Background(), nil, CreateUserRequest{
		Email:    "x@escalando.org",
		Password: "clave-segura",
		FullName: "X",
		Role:     "SUPERUSER",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserUpdatePartial(t *testing.T) {
	repo := newUserRepoStub()
	repo.users["u1"] = &models.User{ID: "u1", Email: "a@escalando.org", FullName: "A", Role: models.RoleEditor}
	svc := newTestUserService(repo, &auditRepoStub{})

	name := "Renombrado"
	user, err := svc.Update(context.Background(), nil, "u1", UpdateUserRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renombrado", user.FullName)
	assert.Equal(t, "a@escalando.org", user.Email)
}

func TestUserDeleteMissing(t *testing.T) {
	svc := newTestUserService(newUserRepoStub(), &auditRepoStub{})

	err := svc.Delete(context.Background(), nil, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
