package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogcms/internal/blogservice"
	"github.com/sushihentaime/blogcms/internal/common"
	"github.com/sushihentaime/blogcms/internal/userservice"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Test_1234!"

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// fakeImages stands in for the image provider so handler tests never leave the process.
type fakeImages struct {
	mu    sync.Mutex
	calls int
	url   string
	err   error
}

func (f *fakeImages) UploadDataURI(ctx context.Context, dataURI, folder string) (string, error) {
	return f.upload(folder)
}

func (f *fakeImages) UploadStream(ctx context.Context, r io.Reader, filename, folder string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	return f.upload(folder)
}

func (f *fakeImages) upload(folder string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s/%s/%d.jpg", f.url, folder, f.calls), nil
}

func (f *fakeImages) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() *Config {
	return &Config{
		Port:           "4000",
		Environment:    "testing",
		Version:        "1.0.0",
		TrustedOrigins: []string{"http://localhost:3000"},
		ImageProvider:  "cloudinary",
		LimiterEnabled: false,
		LimiterRPS:     2,
		LimiterBurst:   4,
		CacheTTL:       time.Minute,
	}
}

// newTestApplication wires the application against a throwaway PostgreSQL container. No broker
// is attached, so writes are not published.
func newTestApplication(t *testing.T) (*application, *sql.DB, *fakeImages) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := common.NewCache(time.Minute, 2*time.Minute)
	images := &fakeImages{url: "https://res.example.com/demo"}

	app := &application{
		config:      testConfig(),
		logger:      logger,
		db:          db,
		userService: userservice.NewUserService(db, nil, cache, logger),
		blogService: blogservice.NewBlogService(db, cache, nil, images, logger),
	}

	return app, db, images
}

type testUser struct {
	Name        string
	Email       string
	Activated   bool
	Permissions []userservice.Permission
}

// createTestUser inserts a user directly and logs them in, returning the access token.
func createTestUser(t *testing.T, app *application, db *sql.DB, u testUser) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	var userID int
	err = db.QueryRow("INSERT INTO users (name, email, password, activated) VALUES ($1, $2, $3, $4) RETURNING id", u.Name, u.Email, hash, u.Activated).Scan(&userID)
	require.NoError(t, err)

	for _, p := range u.Permissions {
		_, err = db.Exec("INSERT INTO user_permissions (user_id, permission) VALUES ($1, $2)", userID, string(p))
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token, err := app.userService.LoginUser(ctx, u.Email, testPassword)
	require.NoError(t, err)

	return token.Plain
}

func createEditor(t *testing.T, app *application, db *sql.DB, name, email string) string {
	return createTestUser(t, app, db, testUser{
		Name:        name,
		Email:       email,
		Activated:   true,
		Permissions: []userservice.Permission{userservice.PermissionWriteBlog},
	})
}

func createTestBlog(t *testing.T, app *application, slug, category string) *blogservice.Blog {
	t.Helper()

	blog, err := app.blogService.CreateBlog(context.Background(), &blogservice.CreateBlogRequest{
		Title:    "Title " + slug,
		Slug:     slug,
		Content:  "# " + slug,
		Image:    "https://res.example.com/demo/" + slug + ".jpg",
		Category: category,
		Tags:     json.RawMessage(`["go"]`),
		Author:   "Alice",
	})
	require.NoError(t, err)

	return blog
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatalf("could not decode %q: %v", responseBody, err)
	}

	return res.StatusCode, res.Header, envelope
}

func (ts *testServer) do(t *testing.T, method, path string, token string, body io.Reader, contentType string) (int, http.Header, envelope) {
	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) doJSON(t *testing.T, method, path string, token string, payload any) (int, http.Header, envelope) {
	if payload == nil {
		return ts.do(t, method, path, token, nil, "")
	}

	var body []byte
	switch p := payload.(type) {
	case string:
		body = []byte(p)
	default:
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
	}

	return ts.do(t, method, path, token, bytes.NewReader(body), "application/json")
}

func (ts *testServer) post(t *testing.T, path string, token string, payload any) (int, http.Header, envelope) {
	return ts.doJSON(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) get(t *testing.T, path string, token string) (int, http.Header, envelope) {
	return ts.doJSON(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) put(t *testing.T, path string, token string, payload any) (int, http.Header, envelope) {
	return ts.doJSON(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) patch(t *testing.T, path string, token string) (int, http.Header, envelope) {
	return ts.doJSON(t, http.MethodPatch, path, token, nil)
}

func (ts *testServer) delete(t *testing.T, path string, token string) (int, http.Header, envelope) {
	return ts.doJSON(t, http.MethodDelete, path, token, nil)
}

func (ts *testServer) upload(t *testing.T, path string, token string, field, filename string, data []byte) (int, http.Header, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	return ts.do(t, http.MethodPost, path, token, &buf, mw.FormDataContentType())
}

// blogField reads a string field from the "blog" object of a response.
func blogField(t *testing.T, env envelope, field string) any {
	t.Helper()

	blog, ok := env["blog"].(map[string]any)
	if !ok {
		t.Fatalf("response has no blog: %s", env.JSON())
	}

	return blog[field]
}
