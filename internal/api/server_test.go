package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeloto/retail-api/internal/cache"
	"github.com/homeloto/retail-api/internal/config"
	"github.com/homeloto/retail-api/internal/db/dbtest"
	"github.com/homeloto/retail-api/internal/domain"
	"github.com/homeloto/retail-api/internal/identity"
	"github.com/homeloto/retail-api/internal/media"
	"github.com/homeloto/retail-api/internal/render"
	"github.com/homeloto/retail-api/internal/repository"
	"github.com/homeloto/retail-api/internal/repository/dao"
)

const (
	testUserAgent = "pos-terminal/1.0"
	mediaBaseURL  = "http://media.test/media"
)

type outbox struct {
	mu       sync.Mutex
	subjects []string
}

func (o *outbox) Async(_, subject, _ string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subjects = append(o.subjects, subject)
}

type testServer struct {
	t      *testing.T
	server *Server
	outbox *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	conn := dbtest.SQLite(t)
	require.NoError(t, dao.InitTables(conn))

	store, err := media.NewLocal(t.TempDir(), mediaBaseURL)
	require.NoError(t, err)
	renderer, err := render.New("RUB")
	require.NoError(t, err)

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Port:               "8080",
			BaseURL:            "localhost:8080",
			JWTSigningKey:      "test-signing-key-0123456789",
			TokenTTL:           time.Hour,
			AllowedCORSDomains: []string{"http://localhost:3000"},
		},
		Gin:     &config.GinConfig{Mode: gin.TestMode},
		Mail:    &config.MailConfig{AdminNotify: "admin@example.com"},
		Lottery: &config.LotteryConfig{TicketPrice: 100, Currency: "RUB"},
	}

	box := &outbox{}
	users := repository.NewUserRepository(dao.NewUserDAO(conn))
	s := NewServer(conf, Dependencies{
		DB:       conn,
		Sessions: cache.NewMemoryStore(),
		Identity: identity.NewLocal(users),
		Media:    store,
		MediaDir: store.Dir(),
		Mailer:   box,
		Renderer: renderer,
		Location: time.UTC,
	})

	return &testServer{t: t, server: s, outbox: box}
}

func (ts *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", testUserAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	ts.server.Router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signup registers and logs in a user, then grants role directly in the database.
func (ts *testServer) signup(email string, role domain.Role) (domain.User, string) {
	ts.t.Helper()
	creds := map[string]string{"email": email, "password": "secret123"}

	rec := ts.do(http.MethodPost, "/api/v1/auth/register", "", creds)
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[domain.User](ts.t, rec)

	if role != domain.RoleNone {
		_, err := ts.server.users.UpdateRole(context.Background(), user.ID, role)
		require.NoError(ts.t, err)
	}

	rec = ts.do(http.MethodPost, "/api/v1/auth/login", "", creds)
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}](ts.t, rec)

	return login.User, login.Token
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "new@example.com", "password": "weak"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	user, token := ts.signup("new@example.com", domain.RoleNone)
	assert.Equal(t, domain.RoleNone, user.Role)
	assert.Contains(t, ts.outbox.subjects, "HOMELOTO: new user awaiting activation")

	rec = ts.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "new@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "new@example.com", "password": "secret999"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "wrong email or password", decode[map[string]any](t, rec)["message"])

	rec = ts.do(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new@example.com", decode[domain.User](t, rec).Email)

	t.Run("inactive users are held at the role gate", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/v1/draws", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("role changes apply to issued tokens", func(t *testing.T) {
		_, err := ts.server.users.UpdateRole(context.Background(), user.ID, domain.RoleCashier)
		require.NoError(t, err)

		rec := ts.do(http.MethodGet, "/api/v1/draws", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = ts.do(http.MethodGet, "/api/v1/users", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("token is bound to the user agent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", "other-client")
		rec := httptest.NewRecorder()
		ts.server.Router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	rec = ts.do(http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodGet, "/api/v1/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminManagesRoles(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.signup("admin@example.com", domain.RoleAdmin)
	user, _ := ts.signup("c@example.com", domain.RoleNone)

	rec := ts.do(http.MethodPatch, fmt.Sprintf("/api/v1/users/%d/role", user.ID), adminToken, map[string]string{"role": "cashier"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.RoleCashier, decode[domain.User](t, rec).Role)

	rec = ts.do(http.MethodPatch, fmt.Sprintf("/api/v1/users/%d/role", user.ID), adminToken, map[string]string{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPatch, "/api/v1/users/9999/role", adminToken, map[string]string{"role": "cashier"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.User](t, rec), 2)
}

func TestRetailFlow(t *testing.T) {
	ts := newTestServer(t)
	_, orgToken := ts.signup("org@example.com", domain.RoleOrganizer)
	_, cashToken := ts.signup("c@example.com", domain.RoleCashier)

	newDraw := map[string]any{
		"draw_id":        "105",
		"date":           "2026-10-20",
		"jackpot":        1_000_000,
		"ticket_count":   20,
		"broadcast_link": "https://live.example.com/105",
	}
	rec := ts.do(http.MethodPost, "/api/v1/draws", orgToken, newDraw)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(http.MethodPost, "/api/v1/draws", orgToken, newDraw)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = ts.do(http.MethodPost, "/api/v1/draws", cashToken, newDraw)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/draws?status=open", cashToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Draw](t, rec), 1)

	rec = ts.do(http.MethodPut, "/api/v1/me/settings", cashToken, map[string]string{"shop_address": " Main st 1 "})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Main st 1", decode[map[string]string](t, rec)["shop_address"])

	rec = ts.do(http.MethodGet, "/api/v1/draws/105/tickets?status=available", cashToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	available := decode[[]domain.Ticket](t, rec)
	require.Len(t, available, 20)
	first := available[0]
	assert.Equal(t, "105-001", first.ID)

	// Sale with an idempotency key, then the retried request.
	sale := map[string]any{"draw_id": "105", "ticket_ids": []string{"105-001", "105-002"}, "payment_method": "cash"}
	rec = ts.do(http.MethodPost, "/api/v1/sales", cashToken, sale, "Idempotency-Key", "till-1-0001")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tr := decode[domain.Transaction](t, rec)
	assert.EqualValues(t, 200, tr.Amount)
	require.Len(t, tr.TicketURLs, 2)
	assert.True(t, strings.HasPrefix(tr.ReceiptURL, mediaBaseURL+"/homeloto_receipts/"))

	rec = ts.do(http.MethodPost, "/api/v1/sales", cashToken, sale, "Idempotency-Key", "till-1-0001")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, tr.ID, decode[domain.Transaction](t, rec).ID)

	rec = ts.do(http.MethodPost, "/api/v1/sales", cashToken, sale)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/sales", cashToken, map[string]any{"draw_id": "105", "ticket_ids": []string{"105-003"}, "payment_method": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/sales/history", cashToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Transaction](t, rec), 1)

	// Images are served from the local media directory.
	rec = ts.do(http.MethodGet, "/api/v1/transactions/"+tr.ID+"/print", cashToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	printed := decode[map[string]any](t, rec)
	assert.Equal(t, tr.ReceiptURL, printed["receipt_url"])

	rec = ts.do(http.MethodGet, strings.TrimPrefix(tr.TicketURLs[0], "http://media.test"), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = ts.do(http.MethodGet, "/api/v1/transactions/"+tr.ID+"/receipt.png", cashToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = ts.do(http.MethodGet, "/api/v1/tickets/105-002/image.png", cashToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/transactions/19990101000000/print", cashToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Resolve with the numbers of the first ticket.
	rec = ts.do(http.MethodPost, "/api/v1/draws/105/resolve", orgToken, map[string]any{"numbers": []int{1, 2, 3}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/draws/105/resolve", orgToken, map[string]any{"numbers": first.Numbers})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[domain.DrawResult](t, rec)
	assert.Equal(t, 2, result.TicketsChecked)
	assert.GreaterOrEqual(t, result.Winners, 1)

	rec = ts.do(http.MethodPost, "/api/v1/draws/105/resolve", orgToken, map[string]any{"numbers": first.Numbers})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/draws/105/winners?matches=7", orgToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	winners := decode[[]domain.Ticket](t, rec)
	require.Len(t, winners, 1)
	assert.Equal(t, "105-001", winners[0].ID)

	rec = ts.do(http.MethodGet, "/api/v1/draws/105/winners?matches=eight", orgToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/tickets/105-001/check", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	check := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1_000_000, check["win_amount"])
	assert.Equal(t, true, check["payable"])
	assert.NotContains(t, check, "sold_by")

	// Payout by scanning the receipt QR.
	rec = ts.do(http.MethodGet, "/api/v1/transactions/CHECK:"+tr.ID+"/tickets", cashToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Ticket](t, rec), 2)

	rec = ts.do(http.MethodPost, "/api/v1/payouts", cashToken, map[string]string{"ticket_id": "105-001", "transaction_id": tr.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.TicketPaid, decode[domain.Ticket](t, rec).Status)

	rec = ts.do(http.MethodPost, "/api/v1/payouts", cashToken, map[string]string{"ticket_id": "105-001"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/payouts", cashToken, map[string]string{"ticket_id": "105-010"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/payouts", cashToken, map[string]string{"ticket_id": "105-999"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Reports.
	rec = ts.do(http.MethodGet, "/api/v1/reports/sellers", orgToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.SellerTotal{{Email: "c@example.com", Count: 2, Total: 200}}, decode[[]domain.SellerTotal](t, rec))

	rec = ts.do(http.MethodGet, "/api/v1/reports/sellers/c@example.com/transactions", orgToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Transaction](t, rec), 1)

	rec = ts.do(http.MethodGet, "/api/v1/reports/draws/105", orgToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[domain.DrawSummary](t, rec)
	assert.EqualValues(t, 18, summary.ByStatus[domain.TicketAvailable])
	assert.EqualValues(t, 1_000_000, summary.PaidAmount)

	rec = ts.do(http.MethodGet, "/api/v1/reports/sellers", cashToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealthcheck(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
