package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/homeloto/retail-api/internal/config"
	"github.com/homeloto/retail-api/internal/repository"
)

type mapStore map[string]string

func (s mapStore) PasswordHash(_ context.Context, email string) (string, error) {
	hash, ok := s[email]
	if !ok {
		return "", repository.ErrUserNotFound
	}
	return hash, nil
}

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()
	store := mapStore{}
	p := NewLocal(store)
	p.cost = bcrypt.MinCost

	account, err := p.CreateAccount(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Empty(t, account.UID)
	require.NotEmpty(t, account.PasswordHash)
	store["a@example.com"] = account.PasswordHash
	store["firebase@example.com"] = ""

	_, err = p.VerifyPassword(ctx, "a@example.com", "secret123")
	assert.NoError(t, err)

	_, err = p.VerifyPassword(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.VerifyPassword(ctx, "missing@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.VerifyPassword(ctx, "firebase@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type fakeUsers struct {
	err     error
	deleted *[]string
}

func (f fakeUsers) DeleteUser(_ context.Context, uid string) error {
	if f.err != nil {
		return f.err
	}
	if f.deleted != nil {
		*f.deleted = append(*f.deleted, uid)
	}
	return nil
}

func (f fakeUsers) CreateUser(_ context.Context, _ *firebaseauth.UserToCreate) (*firebaseauth.UserRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &firebaseauth.UserRecord{UserInfo: &firebaseauth.UserInfo{UID: "uid-1", Email: "a@example.com"}}, nil
}

func TestFirebaseCreateAccount(t *testing.T) {
	p := newFirebase(fakeUsers{}, http.DefaultClient, "key", "http://unused")
	account, err := p.CreateAccount(context.Background(), "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", account.UID)

	p = newFirebase(fakeUsers{err: errors.New("backend down")}, http.DefaultClient, "key", "http://unused")
	_, err = p.CreateAccount(context.Background(), "a@example.com", "secret123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailExists)
}

func TestFirebaseDeleteAccount(t *testing.T) {
	var deleted []string
	p := newFirebase(fakeUsers{deleted: &deleted}, http.DefaultClient, "key", "http://unused")
	require.NoError(t, p.DeleteAccount(context.Background(), "uid-1"))
	assert.Equal(t, []string{"uid-1"}, deleted)

	p = newFirebase(fakeUsers{err: errors.New("backend down")}, http.DefaultClient, "key", "http://unused")
	assert.Error(t, p.DeleteAccount(context.Background(), "uid-1"))
}

func TestFirebaseVerifyPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req signInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.ReturnSecureToken)

		w.Header().Set("Content-Type", "application/json")
		switch req.Password {
		case "good":
			_, _ = w.Write([]byte(`{"localId":"uid-9","email":"` + req.Email + `","idToken":"x"}`))
		case "bad":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"INTERNAL"}}`))
		}
	}))
	defer srv.Close()

	p := newFirebase(fakeUsers{}, srv.Client(), "test-key", srv.URL+"/v1/")

	account, err := p.VerifyPassword(context.Background(), "a@example.com", "good")
	require.NoError(t, err)
	assert.Equal(t, "uid-9", account.UID)
	assert.Equal(t, "a@example.com", account.Email)

	_, err = p.VerifyPassword(context.Background(), "a@example.com", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.VerifyPassword(context.Background(), "a@example.com", "boom")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewLocalByDefault(t *testing.T) {
	p, err := New(context.Background(), &config.AuthConfig{Provider: config.AuthProviderLocal}, mapStore{})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, p)

	_, err = New(context.Background(), &config.AuthConfig{Provider: "ldap"}, mapStore{})
	assert.Error(t, err)
}
