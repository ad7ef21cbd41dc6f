// Package blogclient is a typed client for the blog API and an observable store that
// keeps the last fetched state for admin tooling.
package blogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sushihentaime/blogcms/internal/blogservice"
)

type (
	Blog         = blogservice.Blog
	MonthlyStat  = blogservice.MonthlyStat
	CategoryStat = blogservice.CategoryStat
	VisitStat    = blogservice.VisitStat
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response. Fields is set for per-field validation failures.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		return fmt.Sprintf("%d: %s", e.Status, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BlogInput is the body of a create request. Author is taken from the bearer token.
type BlogInput struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	Image       string   `json:"image"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// BlogPatch is the body of an edit request; nil fields are left unchanged.
type BlogPatch struct {
	Title       *string   `json:"title,omitempty"`
	Slug        *string   `json:"slug,omitempty"`
	Description *string   `json:"description,omitempty"`
	Content     *string   `json:"content,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type BlogResponse struct {
	Message string `json:"message"`
	Blog    Blog   `json:"blog"`
}

type BlogsResponse struct {
	Message string `json:"message"`
	Blogs   []Blog `json:"blogs"`
}

type UploadResponse struct {
	Message   string `json:"message"`
	SecureURL string `json:"secure_url"`
}

type MonthlyStatsResponse struct {
	Message string        `json:"message"`
	Stats   []MonthlyStat `json:"stats"`
}

type CategoryStatsResponse struct {
	Message string         `json:"message"`
	Stats   []CategoryStat `json:"stats"`
}

type VisitStatsResponse struct {
	Message string      `json:"message"`
	Stats   []VisitStat `json:"stats"`
}

type TotalResponse struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
}

type TokenResponse struct {
	Message string `json:"message"`
	Token   struct {
		Token  string    `json:"token"`
		Expiry time.Time `json:"expiry"`
	} `json:"authentication_token"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	contentType := ""
	if payload != nil {
		contentType = "application/json"
	}

	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(data, out)
}

// decodeError reads {"error": "msg"} or {"error": {"field": "msg"}}.
func decodeError(status int, data []byte) error {
	apiErr := &APIError{Status: status}

	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Error) == 0 {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	if err := json.Unmarshal(body.Error, &apiErr.Message); err == nil {
		return apiErr
	}

	if err := json.Unmarshal(body.Error, &apiErr.Fields); err == nil {
		apiErr.Message = "validation failed"
		return apiErr
	}

	apiErr.Message = string(body.Error)
	return apiErr
}

func blogPath(id string) string {
	return "/v1/blogs/" + url.PathEscape(id)
}

func (c *Client) CreateBlog(ctx context.Context, in BlogInput) (*BlogResponse, error) {
	var resp BlogResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/blogs", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) EditBlog(ctx context.Context, id string, patch BlogPatch) (*BlogResponse, error) {
	var resp BlogResponse
	if err := c.doJSON(ctx, http.MethodPut, blogPath(id), patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ToggleFeatured(ctx context.Context, id string) (*BlogResponse, error) {
	var resp BlogResponse
	if err := c.doJSON(ctx, http.MethodPatch, blogPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteBlog(ctx context.Context, id string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodDelete, blogPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetBlog(ctx context.Context, id string) (*BlogResponse, error) {
	var resp BlogResponse
	if err := c.doJSON(ctx, http.MethodGet, blogPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetBlogs(ctx context.Context) (*BlogsResponse, error) {
	var resp BlogsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/blogs", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetBlogsByCategory(ctx context.Context, category string) (*BlogsResponse, error) {
	var resp BlogsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/categories/"+url.PathEscape(category)+"/blogs", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetFeaturedBlogs(ctx context.Context) (*BlogsResponse, error) {
	var resp BlogsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/featured-blogs", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadImage sends r as the multipart field "image".
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var resp UploadResponse
	if err := c.do(ctx, http.MethodPost, "/v1/images", &buf, w.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) MonthlyStats(ctx context.Context) (*MonthlyStatsResponse, error) {
	var resp MonthlyStatsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats/month", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CategoryStats(ctx context.Context) (*CategoryStatsResponse, error) {
	var resp CategoryStatsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats/category", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) TotalBlogs(ctx context.Context) (*TotalResponse, error) {
	var resp TotalResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats/total", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VisitStats(ctx context.Context) (*VisitStatsResponse, error) {
	var resp VisitStatsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats/visits", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RecordVisit(ctx context.Context, page string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/visits", map[string]string{"page": page}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*MessageResponse, error) {
	var resp MessageResponse
	payload := map[string]string{"name": name, "email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/users/register", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Activate(ctx context.Context, token string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodPut, "/v1/users/activate", map[string]string{"token": token}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var resp TokenResponse
	payload := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/users/login", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/users/logout", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
