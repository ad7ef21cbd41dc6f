package main

import (
	"context"
	"net/http"
	"time"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := "available"
	database := "up"

	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := app.db.PingContext(ctx); err != nil {
			app.logError(r, err)
			status, database = "degraded", "down"
		}
	}

	env := envelope{
		"status": status,
		"system_info": map[string]string{
			"environment":    app.config.Environment,
			"version":        app.config.Version,
			"image_provider": app.config.ImageProvider,
			"database":       database,
		},
	}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.logger.Error(err.Error())
		http.Error(w, "the server encountered a problem and could not process your request", http.StatusInternalServerError)
	}
}
