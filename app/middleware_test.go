package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/blogcms/internal/userservice"
)

func newUnitApplication() *application {
	return &application{
		config: testConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRecoverPanic(t *testing.T) {
	app := newUnitApplication()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	middleware := app.recoverPanic(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestAuthenticate(t *testing.T) {
	app, db, _ := newTestApplication(t)

	token := createTestUser(t, app, db, testUser{Name: "Alice", Email: "alice@example.com", Activated: true})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "No Authentication Header",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not A Bearer Token",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Authentication Header",
			authHeader:     "Bearer invalid-token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown Token",
			authHeader:     "Bearer ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Authentication Header",
			authHeader:     "Bearer " + token,
			expectedStatus: http.StatusOK,
			expectedUser:   "Alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *userservice.User

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = app.getUserContext(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			res := httptest.NewRecorder()
			app.authenticate(handler).ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)
			assert.Contains(t, res.Header().Values("Vary"), "Authorization")

			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, "Bearer", res.Header().Get("WWW-Authenticate"))
				return
			}

			if tt.expectedUser == "" {
				assert.True(t, seen.IsAnonymous())
			} else {
				assert.Equal(t, tt.expectedUser, seen.Name)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	app := newUnitApplication()

	tests := []struct {
		name           string
		user           *userservice.User
		expectedStatus int
	}{
		{name: "Anonymous", user: userservice.AnonymousUser, expectedStatus: http.StatusUnauthorized},
		{name: "No User In Context", expectedStatus: http.StatusUnauthorized},
		{
			name:           "Not Activated",
			user:           &userservice.User{ID: 1, Name: "Carol", Permissions: userservice.Permissions{userservice.PermissionWriteBlog}},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Missing Permission",
			user:           &userservice.User{ID: 2, Name: "Bob", Activated: true},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Permitted",
			user:           &userservice.User{ID: 3, Name: "Alice", Activated: true, Permissions: userservice.Permissions{userservice.PermissionWriteBlog}},
			expectedStatus: http.StatusOK,
		},
	}

	middleware := app.requirePermission(okHandler, userservice.PermissionWriteBlog)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/blogs", nil)
			if tt.user != nil {
				req = app.createUserContext(req, tt.user)
			}

			res := httptest.NewRecorder()
			middleware.ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)
		})
	}
}

func TestEnableCORS(t *testing.T) {
	app := newUnitApplication()
	app.config.TrustedOrigins = []string{"http://example.com"}

	middleware := app.enableCORS(okHandler)

	tests := []struct {
		name                       string
		origin                     string
		method                     string
		accessControlRequestMethod string
		expectedStatus             int
		expectedAllowOrigin        string
		expectedAllowMethods       string
	}{
		{
			name:                "Valid Origin and Method",
			origin:              "http://example.com",
			method:              http.MethodGet,
			expectedStatus:      http.StatusOK,
			expectedAllowOrigin: "http://example.com",
		},
		{
			name:                       "Valid Origin and Preflight Request",
			origin:                     "http://example.com",
			method:                     http.MethodOptions,
			accessControlRequestMethod: http.MethodPatch,
			expectedStatus:             http.StatusOK,
			expectedAllowOrigin:        "http://example.com",
			expectedAllowMethods:       http.MethodPatch,
		},
		{
			name:           "Invalid Origin",
			origin:         "http://invalid.com",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
		},
		{
			name:                       "Invalid Origin Preflight",
			origin:                     "http://invalid.com",
			method:                     http.MethodOptions,
			accessControlRequestMethod: http.MethodDelete,
			expectedStatus:             http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/blogs", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.accessControlRequestMethod != "" {
				req.Header.Set("Access-Control-Request-Method", tt.accessControlRequestMethod)
				req.Header.Set("Access-Control-Request-Headers", "Authorization")
			}

			res := httptest.NewRecorder()
			middleware.ServeHTTP(res, req)

			assert.Equal(t, tt.expectedStatus, res.Code)
			assert.Equal(t, tt.expectedAllowOrigin, res.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedAllowMethods, res.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestRateLimit(t *testing.T) {
	app := newUnitApplication()
	app.config.LimiterEnabled = true
	app.config.LimiterRPS = 2
	app.config.LimiterBurst = 4

	server := httptest.NewServer(app.rateLimit(okHandler))
	defer server.Close()

	tests := []struct {
		name           string
		requests       int
		expectedStatus int
	}{
		{
			name:           "Within Limit",
			requests:       4,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Over Limit",
			requests:       6,
			expectedStatus: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lastStatusCode int

			for i := 0; i < tt.requests; i++ {
				res, err := http.Get(server.URL)
				assert.NoError(t, err)
				res.Body.Close()

				lastStatusCode = res.StatusCode
			}

			assert.Equal(t, tt.expectedStatus, lastStatusCode)
		})
	}
}

func TestRateLimitDisabled(t *testing.T) {
	app := newUnitApplication()
	app.config.LimiterEnabled = false
	app.config.LimiterBurst = 1

	middleware := app.rateLimit(okHandler)

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := httptest.NewRecorder()
		middleware.ServeHTTP(res, req)
		assert.Equal(t, http.StatusOK, res.Code)
	}
}
