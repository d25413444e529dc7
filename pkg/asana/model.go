package asana

import (
	"fmt"
	"strings"
	"time"
)

// Project is a project membership of a task.
type Project struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Section is a column or heading inside a project.
type Section struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// EnumOption is one selectable value of an enum custom field.
type EnumOption struct {
	GID     string `json:"gid"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// CustomField is a custom field value attached to a task.
type CustomField struct {
	GID         string       `json:"gid"`
	Name        string       `json:"name"`
	Subtype     string       `json:"resource_subtype,omitempty"`
	EnumOptions []EnumOption `json:"enum_options,omitempty"`
}

// Option returns the enum option with exactly the given name.
func (f *CustomField) Option(name string) (*EnumOption, bool) {
	for i := range f.EnumOptions {
		if f.EnumOptions[i].Name == name {
			return &f.EnumOptions[i], true
		}
	}
	return nil, false
}

// Task is an Asana task with the fields the actions read.
type Task struct {
	GID          string        `json:"gid"`
	Name         string        `json:"name"`
	Completed    bool          `json:"completed"`
	Projects     []Project     `json:"projects"`
	CustomFields []CustomField `json:"custom_fields"`
}

// Project returns the task's project membership with exactly the given name.
func (t *Task) Project(name string) (*Project, bool) {
	for i := range t.Projects {
		if t.Projects[i].Name == name {
			return &t.Projects[i], true
		}
	}
	return nil, false
}

// CustomField returns the custom field with exactly the given name.
func (t *Task) CustomField(name string) (*CustomField, bool) {
	for i := range t.CustomFields {
		if t.CustomFields[i].Name == name {
			return &t.CustomFields[i], true
		}
	}
	return nil, false
}

// Story is an entry in a task's history. Comments are stories with type
// "comment"; system events are stories too.
type Story struct {
	GID       string    `json:"gid"`
	Text      string    `json:"text"`
	Type      string    `json:"type,omitempty"`
	Subtype   string    `json:"resource_subtype,omitempty"`
	IsPinned  bool      `json:"is_pinned"`
	CreatedAt time.Time `json:"created_at"`
}

// NewComment is the payload for a comment story.
type NewComment struct {
	Text     string `json:"text"`
	IsPinned bool   `json:"is_pinned"`
}

// TaskUpdate is a partial task update. Nil and empty fields are left alone.
type TaskUpdate struct {
	Completed    *bool             `json:"completed,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// CompletedUpdate marks a task complete or incomplete.
func CompletedUpdate(completed bool) TaskUpdate {
	return TaskUpdate{Completed: &completed}
}

// EnumUpdate sets an enum custom field to one of its options.
func EnumUpdate(fieldGID, optionGID string) TaskUpdate {
	return TaskUpdate{CustomFields: map[string]string{fieldGID: optionGID}}
}

type envelope[T any] struct {
	Data     T         `json:"data"`
	NextPage *nextPage `json:"next_page,omitempty"`
}

type nextPage struct {
	Offset string `json:"offset"`
	Path   string `json:"path"`
	URI    string `json:"uri"`
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
		Help    string `json:"help,omitempty"`
	} `json:"errors"`
}

// APIError is a non-2xx response from the Asana API.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("asana api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("asana api error: status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// Is reports 401 responses as ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == 401
}
