package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	identities map[string]Identity
}

func (f *fakeResolver) Resolve(_ context.Context, userID string) (Identity, error) {
	id, ok := f.identities[userID]
	if !ok {
		return Identity{}, errors.New("user not found")
	}
	return id, nil
}

func okHandler(captured *Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFromContext(r.Context()); ok && captured != nil {
			*captured = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	token, err := tm.Generate("user-1", RoleCustomer)
	require.NoError(t, err)

	resolver := &fakeResolver{identities: map[string]Identity{
		"user-1": {ID: "user-1", Email: "jane@example.com", Role: RoleCustomer, Active: true},
	}}

	var seen Identity
	srv := Authenticate(tm, resolver)(okHandler(&seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", seen.ID)
	assert.Equal(t, RoleCustomer, seen.Role)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	srv := Authenticate(tm, &fakeResolver{})(okHandler(nil))

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	srv := Authenticate(tm, &fakeResolver{})(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticate_DeactivatedUser(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	token, err := tm.Generate("user-1", RoleCustomer)
	require.NoError(t, err)

	resolver := &fakeResolver{identities: map[string]Identity{
		"user-1": {ID: "user-1", Role: RoleCustomer, Active: false},
	}}
	srv := Authenticate(tm, resolver)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthorize_AllowsListedRole(t *testing.T) {
	srv := Authorize(RoleAdmin, RoleTechnician)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{ID: "u1", Role: RoleTechnician, Active: true}))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthorize_RejectsOtherRole(t *testing.T) {
	srv := Authorize(RoleAdmin)(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{ID: "u1", Role: RoleCustomer, Active: true}))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAuthorize_RequiresAuthentication(t *testing.T) {
	srv := Authorize(RoleAdmin)(okHandler(nil))

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
