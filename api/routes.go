package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/healthcheck", app.healthCheckHandler)
	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/users", app.registerUserHandler)
	mux.HandleFunc("GET /v1/users/confirm/{token}", app.confirmUserHandler)
	mux.HandleFunc("POST /v1/users/confirm/resend", app.resendConfirmationHandler)
	mux.HandleFunc("POST /v1/users/auth", app.authenticateUserHandler)
	mux.HandleFunc("DELETE /v1/users/auth", app.requireAuthenticatedUser(app.logoutUserHandler))

	mux.HandleFunc("GET /v1/tasks", app.requireAuthenticatedUser(app.requireConfirmedUser(app.getTasksHandler)))
	mux.HandleFunc("POST /v1/tasks", app.requireAuthenticatedUser(app.requireConfirmedUser(app.createTaskHandler)))
	mux.HandleFunc("DELETE /v1/tasks/{id}", app.requireAuthenticatedUser(app.requireConfirmedUser(app.deleteTaskHandler)))
	mux.HandleFunc("POST /v1/tasks/{id}/toggle", app.requireAuthenticatedUser(app.requireConfirmedUser(app.toggleTaskHandler)))
	mux.HandleFunc("PUT /v1/tasks/{id}", app.requireAuthenticatedUser(app.requireConfirmedUser(app.editTaskHandler)))

	handler := app.instrument(app.enableCORS(mux))
	if app.config.limiter.enabled {
		return app.rateLimit(handler)
	}
	return handler
}
