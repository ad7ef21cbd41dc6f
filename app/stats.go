package main

import "net/http"

func (app *application) monthlyStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.blogService.GetMonthlyStats(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Monthly stats fetched successfully", "stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) categoryStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.blogService.GetCategoryStats(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Category stats fetched successfully", "stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) totalBlogsHandler(w http.ResponseWriter, r *http.Request) {
	total, err := app.blogService.GetTotalBlogs(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Total blogs fetched successfully", "total": total}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) visitStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.blogService.GetVisitStats(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "Visit stats fetched successfully", "stats": stats}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type recordVisitRequest struct {
	Page string `json:"page"`
}

func (app *application) recordVisitHandler(w http.ResponseWriter, r *http.Request) {
	var input recordVisitRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.blogService.RecordVisit(r.Context(), input.Page)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"message": "Visit recorded"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
