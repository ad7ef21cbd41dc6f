package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogcms/internal/common"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateSlug  = errors.New("duplicate slug")
	ErrEditConflict   = errors.New("edit conflict")
)

// blogStore is the persistence the service needs; *BlogModel is the PostgreSQL implementation.
type blogStore interface {
	insert(ctx context.Context, blog *Blog) error
	getBlogById(ctx context.Context, id string) (*Blog, error)
	updateBlog(ctx context.Context, blog *Blog) error
	toggleFeatured(ctx context.Context, id string) (*Blog, error)
	deleteBlog(ctx context.Context, id string) error
	getBlogs(ctx context.Context) ([]Blog, error)
	getBlogsByCategory(ctx context.Context, category string) ([]Blog, error)
	getFeaturedBlogs(ctx context.Context) ([]Blog, error)
	countByMonth(ctx context.Context, from, to time.Time) ([]MonthlyStat, error)
	countByCategory(ctx context.Context) ([]CategoryStat, error)
	count(ctx context.Context) (int, error)
	insertVisit(ctx context.Context, page string) error
	countVisitsByPage(ctx context.Context) ([]VisitStat, error)
}

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

const blogColumns = `id, title, slug, description, content, image, author, tags, category, is_featured, created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(row rowScanner, blog *Blog) error {
	return row.Scan(
		&blog.ID,
		&blog.Title,
		&blog.Slug,
		&blog.Description,
		&blog.Content,
		&blog.Image,
		&blog.Author,
		pq.Array(&blog.Tags),
		&blog.Category,
		&blog.IsFeatured,
		&blog.CreatedAt,
		&blog.UpdatedAt,
		&blog.Version,
	)
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (title, slug, description, content, image, author, tags, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_featured, created_at, updated_at, version`

	args := []any{
		blog.Title,
		blog.Slug,
		blog.Description,
		blog.Content,
		blog.Image,
		blog.Author,
		pq.Array(blog.Tags),
		blog.Category,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.ID, &blog.IsFeatured, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case common.UniqueViolation(err, "blogs_slug_key"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) getBlogById(ctx context.Context, id string) (*Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs
		WHERE id = $1`

	var blog Blog
	err := scanBlog(m.db.QueryRowContext(ctx, query, id), &blog)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

// updateBlog writes every mutable field. The version check turns a concurrent edit into ErrEditConflict.
func (m *BlogModel) updateBlog(ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, slug = $2, description = $3, content = $4, image = $5, tags = $6, category = $7,
			updated_at = NOW(), version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING updated_at, version`

	args := []any{
		blog.Title,
		blog.Slug,
		blog.Description,
		blog.Content,
		blog.Image,
		pq.Array(blog.Tags),
		blog.Category,
		blog.ID,
		blog.Version,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return m.missingOrConflict(ctx, blog.ID)
		case common.UniqueViolation(err, "blogs_slug_key"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	return nil
}

// missingOrConflict tells apart the two reasons a versioned update matches no row.
func (m *BlogModel) missingOrConflict(ctx context.Context, id string) error {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM blogs WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRecordNotFound
	}
	return ErrEditConflict
}

// toggleFeatured negates the stored flag in a single statement.
func (m *BlogModel) toggleFeatured(ctx context.Context, id string) (*Blog, error) {
	query := `
		UPDATE blogs
		SET is_featured = NOT is_featured, updated_at = NOW(), version = version + 1
		WHERE id = $1
		RETURNING ` + blogColumns

	var blog Blog
	err := scanBlog(m.db.QueryRowContext(ctx, query, id), &blog)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, id string) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *BlogModel) queryBlogs(ctx context.Context, query string, args ...any) ([]Blog, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		var blog Blog
		if err := scanBlog(rows, &blog); err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

// getBlogs returns every blog, newest first.
func (m *BlogModel) getBlogs(ctx context.Context) ([]Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs
		ORDER BY created_at DESC, id`

	return m.queryBlogs(ctx, query)
}

func (m *BlogModel) getBlogsByCategory(ctx context.Context, category string) ([]Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs
		WHERE category = $1
		ORDER BY created_at DESC, id`

	return m.queryBlogs(ctx, query, category)
}

func (m *BlogModel) getFeaturedBlogs(ctx context.Context) ([]Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs
		WHERE is_featured
		ORDER BY created_at DESC, id`

	return m.queryBlogs(ctx, query)
}

// countByMonth groups blogs created in [from, to) by calendar month, ascending.
func (m *BlogModel) countByMonth(ctx context.Context, from, to time.Time) ([]MonthlyStat, error) {
	query := `
		SELECT EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS month, COUNT(*)
		FROM blogs
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY month
		ORDER BY month ASC`

	rows, err := m.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []MonthlyStat{}
	for rows.Next() {
		var s MonthlyStat
		if err := rows.Scan(&s.Month, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (m *BlogModel) countByCategory(ctx context.Context) ([]CategoryStat, error) {
	query := `
		SELECT category, COUNT(*) AS total
		FROM blogs
		GROUP BY category
		ORDER BY total DESC, category ASC`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []CategoryStat{}
	for rows.Next() {
		var s CategoryStat
		if err := rows.Scan(&s.Category, &s.Count); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (m *BlogModel) count(ctx context.Context) (int, error) {
	var total int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&total)
	return total, err
}
