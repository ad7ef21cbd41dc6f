package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sushihentaime/blogcms/internal/common"
	"github.com/sushihentaime/blogcms/internal/imageservice"
)

func NewBlogService(db *sql.DB, cache *common.Cache, mb common.MessageProducer, images imageservice.Provider, logger *slog.Logger) *BlogService {
	return newService(newBlogModel(db), cache, mb, images, logger)
}

func newService(m blogStore, cache *common.Cache, mb common.MessageProducer, images imageservice.Provider, logger *slog.Logger) *BlogService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &BlogService{
		m:      m,
		c:      cache,
		mb:     mb,
		images: images,
		logger: logger,
		now:    time.Now,
	}
}

func blogNotFound() error {
	return common.NotFound("blog not found")
}

// validID reports whether id can name a blog at all; anything else is treated as absent.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// translate maps model errors to domain errors.
func translate(err error) error {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return blogNotFound()
	case errors.Is(err, ErrDuplicateSlug):
		return common.InvalidFields(map[string]string{"slug": "a blog with this slug already exists"})
	case errors.Is(err, ErrEditConflict):
		return common.Conflict("unable to update the blog due to an edit conflict, please try again")
	default:
		return err
	}
}

// CreateBlog stores a new blog authored by req.Author.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	if req.Author == "" {
		return nil, common.Unauthorized("unauthorized: author not found")
	}

	tags, err := parseTags(req.Tags)
	if err != nil {
		return nil, err
	}

	if req.Image == "" {
		return nil, common.InvalidInput("image URL is required")
	}

	blog := &Blog{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Content:     sanitizeMarkdown(req.Content),
		Image:       req.Image,
		Author:      req.Author,
		Tags:        tags,
		Category:    req.Category,
	}

	v := common.NewValidator()
	validateBlog(v, blog)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if imageservice.IsDataURI(blog.Image) {
		url, err := s.upload(func() (string, error) {
			return s.images.UploadDataURI(ctx, blog.Image, imageservice.FolderBlogs)
		})
		if err != nil {
			return nil, err
		}
		blog.Image = url
	}

	if err := s.m.insert(ctx, blog); err != nil {
		return nil, translate(err)
	}

	s.invalidate()
	s.publish(ctx, common.BlogCreatedKey, blog)

	return blog, nil
}

// GetBlogByID returns a blog post by its ID.
func (s *BlogService) GetBlogByID(ctx context.Context, id string) (*Blog, error) {
	if !validID(id) {
		return nil, blogNotFound()
	}

	if s.c != nil {
		if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
			blog := cached.(Blog)
			return &blog, nil
		}
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	if s.c != nil {
		s.c.Set(common.CacheKeyBlog(id), *blog)
	}

	return blog, nil
}

// EditBlog applies the supplied fields to the stored blog. An inline data-URI image is
// uploaded first and replaced by the provider's secure URL.
func (s *BlogService) EditBlog(ctx context.Context, id string, req *EditBlogRequest) (*Blog, error) {
	if !validID(id) {
		return nil, blogNotFound()
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Slug != nil {
		blog.Slug = *req.Slug
	}
	if req.Description != nil {
		blog.Description = *req.Description
	}
	if req.Content != nil {
		blog.Content = sanitizeMarkdown(*req.Content)
	}
	if req.Category != nil {
		blog.Category = *req.Category
	}
	if req.Tags != nil {
		tags, err := parseTags(req.Tags)
		if err != nil {
			return nil, err
		}
		blog.Tags = tags
	}
	if req.Image != nil {
		blog.Image = *req.Image
	}

	v := common.NewValidator()
	validateBlog(v, blog)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if imageservice.IsDataURI(blog.Image) {
		url, err := s.upload(func() (string, error) {
			return s.images.UploadDataURI(ctx, blog.Image, imageservice.FolderBlogs)
		})
		if err != nil {
			return nil, err
		}
		blog.Image = url
	}

	if err := s.m.updateBlog(ctx, blog); err != nil {
		return nil, translate(err)
	}

	s.invalidate()
	s.publish(ctx, common.BlogUpdatedKey, blog)

	return blog, nil
}

// ToggleFeatured flips the stored featured flag and returns the updated blog.
func (s *BlogService) ToggleFeatured(ctx context.Context, id string) (*Blog, error) {
	if !validID(id) {
		return nil, blogNotFound()
	}

	blog, err := s.m.toggleFeatured(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	s.invalidate()
	s.publish(ctx, common.BlogUpdatedKey, blog)

	return blog, nil
}

// DeleteBlog removes a blog post.
func (s *BlogService) DeleteBlog(ctx context.Context, id string) error {
	if !validID(id) {
		return blogNotFound()
	}

	blog, err := s.m.getBlogById(ctx, id)
	if err != nil {
		return translate(err)
	}

	if err := s.m.deleteBlog(ctx, id); err != nil {
		return translate(err)
	}

	s.invalidate()
	s.publish(ctx, common.BlogDeletedKey, blog)

	return nil
}

// GetBlogs returns every blog post, newest first. No blogs is not an error.
func (s *BlogService) GetBlogs(ctx context.Context) ([]Blog, error) {
	if s.c != nil {
		if cached, ok := s.c.Get(common.CacheKeyBlogs()); ok {
			return append([]Blog{}, cached.([]Blog)...), nil
		}
	}

	blogs, err := s.m.getBlogs(ctx)
	if err != nil {
		return nil, err
	}

	if len(blogs) == 0 {
		s.logger.Info("no blogs found")
	}

	if s.c != nil {
		s.c.Set(common.CacheKeyBlogs(), append([]Blog{}, blogs...))
	}

	return blogs, nil
}

func (s *BlogService) GetBlogsByCategory(ctx context.Context, category string) ([]Blog, error) {
	blogs, err := s.m.getBlogsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	if len(blogs) == 0 {
		return nil, common.NotFound("no blogs found in category: " + category)
	}

	return blogs, nil
}

func (s *BlogService) GetFeaturedBlogs(ctx context.Context) ([]Blog, error) {
	blogs, err := s.m.getFeaturedBlogs(ctx)
	if err != nil {
		return nil, err
	}

	if len(blogs) == 0 {
		return nil, common.NotFound("no featured blogs found")
	}

	return blogs, nil
}

// UploadImage stores a standalone image upload and returns its secure URL.
func (s *BlogService) UploadImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	if r == nil {
		return "", common.InvalidInput("no file uploaded")
	}

	return s.upload(func() (string, error) {
		return s.images.UploadStream(ctx, r, filename, imageservice.FolderUploads)
	})
}

func (s *BlogService) upload(fn func() (string, error)) (string, error) {
	if s.images == nil {
		return "", common.Unexpected("image uploads are not configured", nil)
	}

	url, err := fn()
	if err != nil {
		switch {
		case errors.Is(err, imageservice.ErrInvalidDataURI),
			errors.Is(err, imageservice.ErrUnsupportedImage),
			errors.Is(err, imageservice.ErrImageTooLarge):
			return "", common.InvalidFields(map[string]string{"image": err.Error()})
		default:
			return "", common.UpstreamFailure("image upload failed", err)
		}
	}

	return url, nil
}

// GetMonthlyStats counts blogs created in the current calendar year (UTC) by month.
func (s *BlogService) GetMonthlyStats(ctx context.Context) ([]MonthlyStat, error) {
	year := s.now().UTC().Year()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	return s.m.countByMonth(ctx, from, to)
}

// GetCategoryStats counts blogs per category, largest first.
func (s *BlogService) GetCategoryStats(ctx context.Context) ([]CategoryStat, error) {
	return s.m.countByCategory(ctx)
}

func (s *BlogService) GetTotalBlogs(ctx context.Context) (int, error) {
	return s.m.count(ctx)
}
