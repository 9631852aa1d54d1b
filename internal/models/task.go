package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Task - единственная сущность API.
type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// DefaultTasks возвращает задачи, с которыми стартует коллекция.
func DefaultTasks() []Task {
	return []Task{
		{ID: 1, Title: "Learn Ktor", Description: "Study Ktor framework for web development", Completed: false},
		{ID: 2, Title: "Build Task Manager", Description: "Create a simple task manager API", Completed: true},
	}
}

// taskPayload различает отсутствующие поля и нулевые значения.
type taskPayload struct {
	ID          *int    `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// DecodeTask читает задачу из тела запроса. id, title и description
// обязательны, completed по умолчанию false.
func DecodeTask(r io.Reader) (Task, error) {
	return decode(r, true)
}

// DecodeTaskFields читает поля задачи для обновления: id в теле
// необязателен, потому что его всё равно заменяет id из пути.
func DecodeTaskFields(r io.Reader) (Task, error) {
	return decode(r, false)
}

func decode(r io.Reader, requireID bool) (Task, error) {
	var p taskPayload

	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Task{}, errors.New("empty request body")
		}
		return Task{}, err
	}
	if dec.More() {
		return Task{}, errors.New("unexpected data after task object")
	}

	if requireID && p.ID == nil {
		return Task{}, missingField("id")
	}
	if p.Title == nil {
		return Task{}, missingField("title")
	}
	if p.Description == nil {
		return Task{}, missingField("description")
	}

	task := Task{
		Title:       *p.Title,
		Description: *p.Description,
	}
	if p.ID != nil {
		task.ID = *p.ID
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	return task, nil
}

func missingField(name string) error {
	return fmt.Errorf("field %q is required", name)
}
