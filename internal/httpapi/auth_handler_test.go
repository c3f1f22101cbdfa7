package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/user"
)

type fakeUserRepo struct {
	createFunc     func(ctx context.Context, u *user.User) error
	getByEmailFunc func(ctx context.Context, email string) (*user.User, error)
	getByIDFunc    func(ctx context.Context, id string) (*user.User, error)
	setActiveFunc  func(ctx context.Context, id string, active bool) (*user.User, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	if f.createFunc != nil {
		return f.createFunc(ctx, u)
	}
	u.ID = testUserID
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	if f.getByIDFunc != nil {
		return f.getByIDFunc(ctx, id)
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if f.getByEmailFunc != nil {
		return f.getByEmailFunc(ctx, email)
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserRepo) GetDetail(ctx context.Context, id string) (*user.Detail, error) {
	return nil, user.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]user.Summary, error) {
	return nil, nil
}

func (f *fakeUserRepo) SetActive(ctx context.Context, id string, active bool) (*user.User, error) {
	if f.setActiveFunc != nil {
		return f.setActiveFunc(ctx, id, active)
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserRepo) Resolve(ctx context.Context, userID string) (auth.Identity, error) {
	u, err := f.GetByID(ctx, userID)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role, Active: u.IsActive}, nil
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour)
}

func TestRegister_Success(t *testing.T) {
	var created *user.User
	repo := &fakeUserRepo{
		createFunc: func(_ context.Context, u *user.User) error {
			u.ID = testUserID
			created = u
			return nil
		},
	}
	h := NewAuthHandler(repo, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
		`{"email":"Jane@Example.com","password":"hunter22","firstName":"Jane","lastName":"Doe"}`))
	rr := httptest.NewRecorder()

	h.Register(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, created)
	assert.Equal(t, "jane@example.com", created.Email, "email is normalized")
	assert.Equal(t, auth.RoleCustomer, created.Role)
	assert.True(t, auth.CheckPassword(created.PasswordHash, "hunter22"))

	data := decodeEnvelope(t, rr)["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
}

func TestRegister_ShortPassword(t *testing.T) {
	h := NewAuthHandler(&fakeUserRepo{}, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
		`{"email":"jane@example.com","password":"abc","firstName":"Jane","lastName":"Doe"}`))
	rr := httptest.NewRecorder()

	h.Register(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{
		createFunc: func(context.Context, *user.User) error { return user.ErrEmailTaken },
	}
	h := NewAuthHandler(repo, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(
		`{"email":"jane@example.com","password":"hunter22","firstName":"Jane","lastName":"Doe"}`))
	rr := httptest.NewRecorder()

	h.Register(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email already registered", decodeEnvelope(t, rr)["message"])
}

func TestLogin_Success(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)

	repo := &fakeUserRepo{
		getByEmailFunc: func(_ context.Context, email string) (*user.User, error) {
			assert.Equal(t, "jane@example.com", email)
			return &user.User{ID: testUserID, Email: email, PasswordHash: hash, Role: auth.RoleCustomer, IsActive: true}, nil
		},
	}
	h := NewAuthHandler(repo, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(
		`{"email":"Jane@example.com","password":"hunter22"}`))
	rr := httptest.NewRecorder()

	h.Login(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeEnvelope(t, rr)["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)

	repo := &fakeUserRepo{
		getByEmailFunc: func(_ context.Context, email string) (*user.User, error) {
			return &user.User{ID: testUserID, Email: email, PasswordHash: hash, IsActive: true}, nil
		},
	}
	h := NewAuthHandler(repo, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(
		`{"email":"jane@example.com","password":"wrong"}`))
	rr := httptest.NewRecorder()

	h.Login(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid credentials", decodeEnvelope(t, rr)["message"])
}

func TestLogin_UnknownEmail(t *testing.T) {
	h := NewAuthHandler(&fakeUserRepo{}, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(
		`{"email":"nobody@example.com","password":"hunter22"}`))
	rr := httptest.NewRecorder()

	h.Login(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid credentials", decodeEnvelope(t, rr)["message"])
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)

	repo := &fakeUserRepo{
		getByEmailFunc: func(_ context.Context, email string) (*user.User, error) {
			return &user.User{ID: testUserID, Email: email, PasswordHash: hash, IsActive: false}, nil
		},
	}
	h := NewAuthHandler(repo, testTokens())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(
		`{"email":"jane@example.com","password":"hunter22"}`))
	rr := httptest.NewRecorder()

	h.Login(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
