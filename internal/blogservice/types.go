package blogservice

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sushihentaime/blogcms/internal/common"
	"github.com/sushihentaime/blogcms/internal/imageservice"
)

type Blog struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=200"`
	Description string `json:"description" validate:"max=500"`
	// Content is stored in Markdown format.
	Content    string    `json:"content"`
	Image      string    `json:"image" validate:"required"`
	Author     string    `json:"author" validate:"required"`
	Tags       []string  `json:"tags" validate:"dive,required,max=50"`
	Category   string    `json:"category" validate:"max=100"`
	IsFeatured bool      `json:"is_featured"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Version    int       `json:"version"`
}

type MonthlyStat struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type VisitStat struct {
	Page  string `json:"page"`
	Count int    `json:"count"`
}

// CreateBlogRequest carries the fields a client may set on a new blog. Author is filled
// from the requester identity, never from the request body. Tags is either a JSON array
// of strings or a string holding one.
type CreateBlogRequest struct {
	Title       string
	Slug        string
	Description string
	Content     string
	Image       string
	Category    string
	Tags        json.RawMessage
	Author      string
}

// EditBlogRequest fields are optional; nil leaves the stored value unchanged.
type EditBlogRequest struct {
	Title       *string
	Slug        *string
	Description *string
	Content     *string
	Image       *string
	Category    *string
	Tags        json.RawMessage
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m      blogStore
	c      *common.Cache
	mb     common.MessageProducer
	images imageservice.Provider
	logger *slog.Logger
	now    func() time.Time
}
