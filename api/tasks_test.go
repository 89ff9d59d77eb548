package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDate(t *testing.T) {
	got, err := parseDueDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDueDate("2024-05-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseDueDate("2024-05-01T18:30")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC), *got)

	got, err = parseDueDate("2024-05-01T18:30:00Z")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC), *got)

	_, err = parseDueDate("mañana")
	var ve *validationError
	assert.ErrorAs(t, err, &ve)
}

func TestCreateTask(t *testing.T) {
	app, _ := newTestApplication(t)
	u := registerConfirmedUser(t, app, "ana@example.com", "secret123")
	s := &session{UserID: u.ID}

	tk, err := app.createTask(s, "buy milk", "Alta", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", tk.Content)
	assert.Equal(t, "Alta", tk.Priority)
	assert.False(t, tk.Done)
	assert.Equal(t, u.ID, tk.UserID)
	require.NotNil(t, tk.DueDate)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Unix(), tk.DueDate.Unix())
}

func TestCreateTaskDefaults(t *testing.T) {
	app, _ := newTestApplication(t)
	u := registerConfirmedUser(t, app, "ana@example.com", "secret123")
	s := &session{UserID: u.ID}

	tk, err := app.createTask(s, "buy milk", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Baja", tk.Priority)
	assert.Nil(t, tk.DueDate)
}

func TestCreateTaskRejectsEmptyContent(t *testing.T) {
	app, _ := newTestApplication(t)
	u := registerConfirmedUser(t, app, "ana@example.com", "secret123")
	s := &session{UserID: u.ID}

	for _, content := range []string{"", "   ", "\t\n"} {
		_, err := app.createTask(s, content, "Alta", "")
		var ve *validationError
		assert.ErrorAs(t, err, &ve)
	}

	// No partial task was persisted.
	n, err := app.storage.countTasks()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCreateTaskRejectsBadDueDate(t *testing.T) {
	app, _ := newTestApplication(t)
	u := registerConfirmedUser(t, app, "ana@example.com", "secret123")
	s := &session{UserID: u.ID}

	_, err := app.createTask(s, "buy milk", "Alta", "not-a-date")
	var ve *validationError
	require.ErrorAs(t, err, &ve)

	n, err := app.storage.countTasks()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCreateTaskEscapesContent(t *testing.T) {
	app, _ := newTestApplication(t)
	u := registerConfirmedUser(t, app, "ana@example.com", "secret123")
	s := &session{UserID: u.ID}

	tk, err := app.createTask(s, `<script>alert("x")</script>`, `"Alta"`, "")
	require.NoError(t, err)
	assert.NotContains(t, tk.Content, "<script>")
	assert.NotContains(t, tk.Priority, `"`)
}

func TestToggleTaskDoneIsItsOwnInverse(t *testing.T) {
	app, _ := newTestApplication(t)
	u := registerConfirmedUser(t, app, "ana@example.com", "secret123")
	s := &session{UserID: u.ID}

	tk, err := app.createTask(s, "buy milk", "", "")
	require.NoError(t, err)

	done, err := app.toggleTaskDone(s, tk.ID)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = app.toggleTaskDone(s, tk.ID)
	require.NoError(t, err)
	assert.False(t, done)

	got, err := app.storage.getTaskByID(tk.ID)
	require.NoError(t, err)
	assert.False(t, got.Done)
}

func TestEditTaskContent(t *testing.T) {
	app, _ := newTestApplication(t)
	u := registerConfirmedUser(t, app, "ana@example.com", "secret123")
	s := &session{UserID: u.ID}

	tk, err := app.createTask(s, "buy milk", "Alta", "2024-05-01")
	require.NoError(t, err)

	edited, err := app.editTaskContent(s, tk.ID, "buy oat milk")
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", edited.Content)
	// Only content changes.
	assert.Equal(t, "Alta", edited.Priority)
	assert.False(t, edited.Done)
	require.NotNil(t, edited.DueDate)

	_, err = app.editTaskContent(s, tk.ID, "  ")
	var ve *validationError
	assert.ErrorAs(t, err, &ve)
}

func TestTaskMutationsAcrossOwners(t *testing.T) {
	app, _ := newTestApplication(t)
	ana := registerConfirmedUser(t, app, "ana@example.com", "secret123")
	eva := registerConfirmedUser(t, app, "eva@example.com", "secret123")
	anaSession := &session{UserID: ana.ID}
	evaSession := &session{UserID: eva.ID}

	tk, err := app.createTask(anaSession, "buy milk", "Alta", "")
	require.NoError(t, err)

	// A foreign task id looks exactly like a missing one.
	err = app.deleteTask(evaSession, tk.ID)
	assert.ErrorIs(t, err, errNotFound)
	_, err = app.toggleTaskDone(evaSession, tk.ID)
	assert.ErrorIs(t, err, errNotFound)
	_, err = app.editTaskContent(evaSession, tk.ID, "mine now")
	assert.ErrorIs(t, err, errNotFound)

	got, err := app.storage.getTaskByID(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Content)
	assert.False(t, got.Done)
	assert.Equal(t, ana.ID, got.UserID)

	err = app.deleteTask(anaSession, tk.ID+1000)
	assert.ErrorIs(t, err, errNotFound)
}

func TestListTasksRejectsUnknownStatus(t *testing.T) {
	app, _ := newTestApplication(t)
	u := registerConfirmedUser(t, app, "ana@example.com", "secret123")
	s := &session{UserID: u.ID}

	_, err := app.listTasks(s, taskFilter{status: "finished"})
	var ve *validationError
	assert.ErrorAs(t, err, &ve)
}
