package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sushihentaime/blogcms/internal/blogservice"
	"github.com/sushihentaime/blogcms/internal/imageservice"
)

// maxUploadBody leaves room for multipart framing around the largest accepted image.
const maxUploadBody = imageservice.MaxUploadSize + 1<<20

type createBlogRequest struct {
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Content     string          `json:"content"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Tags        json.RawMessage `json:"tags"`
	// Author is accepted so clients may echo a full blog back, but it is never trusted.
	Author string `json:"author"`
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input createBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &blogservice.CreateBlogRequest{
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
		Content:     input.Content,
		Image:       input.Image,
		Category:    input.Category,
		Tags:        input.Tags,
		Author:      app.requesterName(r),
	}

	blog, err := app.blogService.CreateBlog(r.Context(), req)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"message": "Blog created successfully", "blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	blog, err := app.blogService.GetBlogByID(r.Context(), app.readParam(r, "id"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Blog fetched successfully", "blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type editBlogRequest struct {
	Title       *string         `json:"title"`
	Slug        *string         `json:"slug"`
	Description *string         `json:"description"`
	Content     *string         `json:"content"`
	Image       *string         `json:"image"`
	Category    *string         `json:"category"`
	Tags        json.RawMessage `json:"tags"`
	Author      *string         `json:"author"`
}

func (app *application) editBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input editBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	req := &blogservice.EditBlogRequest{
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
		Content:     input.Content,
		Image:       input.Image,
		Category:    input.Category,
		Tags:        input.Tags,
	}

	blog, err := app.blogService.EditBlog(r.Context(), app.readParam(r, "id"), req)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Blog updated successfully", "blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) toggleFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	blog, err := app.blogService.ToggleFeatured(r.Context(), app.readParam(r, "id"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Blog featured status updated", "blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	err := app.blogService.DeleteBlog(r.Context(), app.readParam(r, "id"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Blog deleted successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getAllBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := app.blogService.GetBlogs(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Blogs fetched successfully", "blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := app.blogService.GetBlogsByCategory(r.Context(), app.readParam(r, "category"))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Blogs fetched successfully", "blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getFeaturedBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := app.blogService.GetFeaturedBlogs(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Featured blogs fetched successfully", "blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) uploadImageHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			app.writeErrorResponse(w, r, http.StatusRequestEntityTooLarge, "uploaded file is too large")
		default:
			app.writeErrorResponse(w, r, http.StatusBadRequest, "No file uploaded")
		}
		return
	}
	defer file.Close()

	url, err := app.blogService.UploadImage(r.Context(), file, header.Filename)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"message": "Image uploaded successfully", "secure_url": url}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
