package main

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const defaultPriority = "Baja"

// Due dates accept a full timestamp or a bare date, which is read as
// midnight UTC.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, validationErrorf("due_date", "must be a date (2006-01-02) or an ISO timestamp")
}

func (app *application) listTasks(s *session, f taskFilter) ([]task, error) {
	v := newValidator()
	v.checkCond(f.status == "" || f.status == "all" || f.status == "completed" || f.status == "pending",
		"status", `must be one of "all", "completed" or "pending"`)
	if v.hasErrors() {
		return nil, v.toError()
	}
	tasks, err := app.storage.getTasksByOwner(s.UserID, f)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// createTask validates, sanitizes and stores a new task owned by the
// session's account. Nothing is written unless every input is valid. Stored
// content and priority are safe to embed in markup.
func (app *application) createTask(s *session, content, priority, dueDate string) (*task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationErrorf("content", "must not be empty")
	}
	priority = strings.TrimSpace(priority)
	if priority == "" {
		priority = defaultPriority
	}
	due, err := parseDueDate(dueDate)
	if err != nil {
		return nil, err
	}

	t := &task{
		UserID:   s.UserID,
		Content:  html.EscapeString(content),
		Done:     false,
		Priority: html.EscapeString(priority),
		DueDate:  due,
	}
	if err := app.storage.insertTask(t); err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	tasksCreatedTotal.Inc()
	return t, nil
}

// getOwnedTask fetches a task and enforces ownership. Tasks that do not
// exist and tasks that belong to someone else are reported identically, so a
// caller can not probe for foreign task ids.
func (app *application) getOwnedTask(s *session, taskID int) (*task, error) {
	t, err := app.storage.getTaskByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("looking up task: %w", err)
	}
	if t == nil || !owns(s, t) {
		return nil, errNotFound
	}
	return t, nil
}

func (app *application) deleteTask(s *session, taskID int) error {
	t, err := app.getOwnedTask(s, taskID)
	if err != nil {
		return err
	}
	if err := app.storage.deleteTask(t); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

// toggleTaskDone flips the completion state and returns the new value. It is
// always a toggle, never a set.
func (app *application) toggleTaskDone(s *session, taskID int) (bool, error) {
	t, err := app.getOwnedTask(s, taskID)
	if err != nil {
		return false, err
	}
	t.Done = !t.Done
	if err := app.storage.updateTask(t); err != nil {
		return false, fmt.Errorf("updating task: %w", err)
	}
	return t.Done, nil
}

// editTaskContent replaces the content of a task, leaving every other field
// untouched.
func (app *application) editTaskContent(s *session, taskID int, content string) (*task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationErrorf("content", "must not be empty")
	}
	t, err := app.getOwnedTask(s, taskID)
	if err != nil {
		return nil, err
	}
	t.Content = html.EscapeString(content)
	if err := app.storage.updateTask(t); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	return t, nil
}
