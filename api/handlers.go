package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "available",
		"environment": app.config.env,
		"version":     version,
	})
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	u, err := app.registerAccount(input.Email, input.Password)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	message := "Registration successful. Check your email to confirm your account."
	if !app.config.confirmationRequired {
		message = "Registration successful. You can log in now."
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": message,
		"user":    u,
	})
}

func (app *application) confirmUserHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if _, err := app.confirmAccount(token); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Email confirmed. You can log in now.",
	})
}

func (app *application) resendConfirmationHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	// The response is identical whether the email is unknown, already
	// confirmed or freshly reissued, so the endpoint can not be used to
	// enumerate accounts.
	if _, err := app.reissueConfirmation(input.Email); err != nil {
		if statusForError(err) == http.StatusInternalServerError {
			writeOperationError(w, err)
			return
		}
		app.logger.Debug("confirmation resend not applicable", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "If the address is registered and unconfirmed, a new confirmation link has been sent.",
	})
}

func (app *application) authenticateUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	u, err := app.authenticate(input.Email, input.Password)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	signed, s, err := app.issueSessionToken(u)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"token":      signed,
		"expires_at": s.ExpiresAt.Format(time.RFC3339),
	})
}

func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	app.destroySession(getSessionFromRequest(r))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
	})
}

func (app *application) getTasksHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f := taskFilter{
		status:   query.Get("status"),
		priority: query.Get("priority"),
		search:   query.Get("search"),
	}
	tasks, err := app.listTasks(getSessionFromRequest(r), f)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Content  string `json:"content"`
		Priority string `json:"priority"`
		DueDate  string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	t, err := app.createTask(getSessionFromRequest(r), input.Content, input.Priority, input.DueDate)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"task":    t,
	})
}

func taskIDFromRequest(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		return 0, errNotFound
	}
	return id, nil
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	if err := app.deleteTask(getSessionFromRequest(r), id); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
	})
}

func (app *application) toggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	done, err := app.toggleTaskDone(getSessionFromRequest(r), id)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"done": done,
	})
}

func (app *application) editTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromRequest(r)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	var input struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	t, err := app.editTaskContent(getSessionFromRequest(r), id, input.Content)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"content": t.Content,
	})
}
