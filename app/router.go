package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/blogcms/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/users/activate", app.activateUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/logout", app.requireAuthUser(app.logoutUserHandler))

	// blog service
	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.getAllBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs", app.requirePermission(app.createBlogHandler, userservice.PermissionWriteBlog))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id", app.requirePermission(app.editBlogHandler, userservice.PermissionWriteBlog))
	router.HandlerFunc(http.MethodPatch, "/v1/blogs/:id", app.requirePermission(app.toggleFeaturedHandler, userservice.PermissionWriteBlog))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/:id", app.requirePermission(app.deleteBlogHandler, userservice.PermissionWriteBlog))
	router.HandlerFunc(http.MethodGet, "/v1/categories/:category/blogs", app.getBlogsByCategoryHandler)
	router.HandlerFunc(http.MethodGet, "/v1/featured-blogs", app.getFeaturedBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/images", app.requirePermission(app.uploadImageHandler, userservice.PermissionWriteBlog))

	// stats
	router.HandlerFunc(http.MethodGet, "/v1/stats/month", app.monthlyStatsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/stats/category", app.categoryStatsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/stats/total", app.totalBlogsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/stats/visits", app.visitStatsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/visits", app.recordVisitHandler)

	// images stored by the local provider
	if app.config.ImageProvider == "local" && app.config.UploadDir != "" {
		router.ServeFiles("/uploads/*filepath", http.Dir(app.config.UploadDir))
	}

	return app.recoverPanic(app.enableCORS(app.logRequest(app.rateLimit(app.authenticate(router)))))
}
