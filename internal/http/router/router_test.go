package router_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagnosis/carshop-bookings/internal/domain"
	"github.com/diagnosis/carshop-bookings/internal/http/router"
	"github.com/diagnosis/carshop-bookings/internal/repo/memory"
	"github.com/diagnosis/carshop-bookings/pkg/auth"
	mw "github.com/diagnosis/carshop-bookings/pkg/middleware"
)

type memIdempotency struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memIdempotency) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memIdempotency) SetNX(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value
	return true, nil
}

func (m *memIdempotency) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memIdempotency) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type testServer struct {
	*httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T, opts router.Options) *testServer {
	t.Helper()
	if opts.Store == nil {
		opts.Store = memory.NewStore()
	}
	if opts.Issuer == nil {
		opts.Issuer = auth.NewIssuer("router-test-secret", time.Hour)
	}
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"http://localhost:5173"}
	}
	srv := httptest.NewServer(router.New(opts))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, client: srv.Client()}
}

func (s *testServer) call(t *testing.T, method, path, body string, header http.Header, cookies ...*http.Cookie) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func tokenCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no token cookie in response")
	return nil
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, router.Options{})

	resp, body := s.call(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Server is running"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, router.Options{})

	// Seed bookings for two customers.
	for _, email := range []string{"a@x.com", "b@x.com", "a@x.com"} {
		resp, _ := s.call(t, http.MethodPost, "/bookings", `{"email":"`+email+`","service":"Brake check"}`, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, _ := s.call(t, http.MethodGet, "/bookings?email=a@x.com", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := s.call(t, http.MethodPost, "/jwt", `{"email":"a@x.com"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))
	cookie := tokenCookie(t, resp)
	assert.True(t, cookie.HttpOnly)

	resp, body = s.call(t, http.MethodGet, "/bookings?email=a@x.com", "", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var own []domain.Booking
	require.NoError(t, json.Unmarshal(body, &own))
	require.Len(t, own, 2)
	for _, b := range own {
		assert.Equal(t, "a@x.com", b.Email)
	}

	resp, body = s.call(t, http.MethodGet, "/bookings?email=b@x.com", "", nil, cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Forbidden Access"}`, string(body))

	tampered := *cookie
	tampered.Value = "x" + cookie.Value[1:]
	resp, _ = s.call(t, http.MethodGet, "/bookings?email=a@x.com", "", nil, &tampered)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	for i := 0; i < 2; i++ {
		resp, body = s.call(t, http.MethodPost, "/logout", `{"email":"a@x.com"}`, nil, cookie)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true}`, string(body))
		assert.Contains(t, resp.Header.Get("Set-Cookie"), "Max-Age=0")
	}
}

func TestNonStringEmailCannotListBookings(t *testing.T) {
	s := newTestServer(t, router.Options{})

	resp, _ := s.call(t, http.MethodPost, "/bookings", `{"email":"victim@x.com","status":"pending"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, login := range []string{`{"email":123}`, `{"email":null}`, `{}`, `{"email":""}`} {
		resp, _ = s.call(t, http.MethodPost, "/jwt", login, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, login)
		cookie := tokenCookie(t, resp)

		for _, target := range []string{"/bookings", "/bookings?email=", "/bookings?email=victim@x.com"} {
			resp, body := s.call(t, http.MethodGet, target, "", nil, cookie)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode, login+" "+target)
			assert.NotContains(t, string(body), "victim@x.com")
		}
	}
}

func TestServicePriceStoredAsSent(t *testing.T) {
	s := newTestServer(t, router.Options{})

	resp, body := s.call(t, http.MethodPost, "/services", `{"title":"Electrical System","price":"20.00"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var ins domain.InsertResult
	require.NoError(t, json.Unmarshal(body, &ins))

	resp, body = s.call(t, http.MethodGet, "/services/"+ins.InsertedID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"_id":"`+ins.InsertedID+`","title":"Electrical System","price":"20.00"}`, string(body))

	resp, body = s.call(t, http.MethodPost, "/services", `{"title":"NoPrice"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &ins))
	_, body = s.call(t, http.MethodGet, "/services/"+ins.InsertedID, "", nil)
	assert.JSONEq(t, `{"_id":"`+ins.InsertedID+`","title":"NoPrice"}`, string(body))
}

func TestServiceCatalog(t *testing.T) {
	s := newTestServer(t, router.Options{})

	resp, body := s.call(t, http.MethodPost, "/services", `{"title":"Engine Diagnostics","price":120,"img":"https://img/1.png"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ins domain.InsertResult
	require.NoError(t, json.Unmarshal(body, &ins))

	resp, body = s.call(t, http.MethodGet, "/services/"+ins.InsertedID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"_id":"`+ins.InsertedID+`","title":"Engine Diagnostics","price":120,"img":"https://img/1.png"}`, string(body))

	resp, body = s.call(t, http.MethodGet, "/services", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []domain.Service
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)
}

func TestDeleteUnknownBooking(t *testing.T) {
	s := newTestServer(t, router.Options{})

	resp, body := s.call(t, http.MethodDelete, "/bookings/65f1a2b3c4d5e6f708192a3b", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":0}`, string(body))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, router.Options{})

	resp, _ := s.call(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIdempotentBookingCreate(t *testing.T) {
	store := memory.NewStore()
	s := newTestServer(t, router.Options{
		Store:       store,
		Idempotency: &memIdempotency{values: map[string]string{}},
	})

	header := http.Header{mw.IdempotencyHeader: []string{"booking-42"}}
	first, body1 := s.call(t, http.MethodPost, "/bookings", `{"email":"a@x.com"}`, header)
	second, body2 := s.call(t, http.MethodPost, "/bookings", `{"email":"a@x.com"}`, header)

	require.Equal(t, http.StatusOK, first.StatusCode)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, string(body1), string(body2))
	assert.Equal(t, "true", second.Header.Get("Idempotent-Replayed"))

	list, err := store.Bookings().List(context.Background(), domain.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLoginIsNeverReplayed(t *testing.T) {
	s := newTestServer(t, router.Options{
		Idempotency: &memIdempotency{values: map[string]string{}},
	})

	header := http.Header{mw.IdempotencyHeader: []string{"login"}}
	for i := 0; i < 2; i++ {
		resp, _ := s.call(t, http.MethodPost, "/jwt", `{"email":"a@x.com"}`, header)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Idempotent-Replayed"))
		tokenCookie(t, resp)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, router.Options{AllowedOrigins: []string{"https://car-shop-47788.web.app"}})

	header := http.Header{
		"Origin":                        []string{"https://car-shop-47788.web.app"},
		"Access-Control-Request-Method": []string{http.MethodDelete},
	}
	resp, _ := s.call(t, http.MethodOptions, "/bookings/abc", "", header)
	assert.Equal(t, "https://car-shop-47788.web.app", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
