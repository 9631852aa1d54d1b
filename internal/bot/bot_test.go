package bot

import (
	"context"
	"testing"

	"task-api/internal/manager"
	"task-api/internal/models"
	"task-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBot(t *testing.T) (*Bot, *manager.TaskManager) {
	t.Helper()
	tm := manager.NewTaskManagerWithStorage(storage.NewMemoryStorage())
	require.NoError(t, tm.Seed(context.Background(), models.DefaultTasks()))
	return &Bot{tasks: tm}, tm
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text        string
		wantCommand string
		wantArgs    string
	}{
		{"/list", "list", ""},
		{"/get 2", "get", "2"},
		{"/GET@task_bot   2 ", "get", "2"},
		{"/add 3 | a | b", "add", "3 | a | b"},
		{"hello", "", "hello"},
		{"", "", ""},
	}

	for _, tt := range tests {
		command, args := parseCommand(tt.text)
		assert.Equal(t, tt.wantCommand, command, tt.text)
		assert.Equal(t, tt.wantArgs, args, tt.text)
	}
}

func TestReplyList(t *testing.T) {
	b, _ := newTestBot(t)

	reply := b.Reply(context.Background(), "/list")
	assert.Equal(t, "Задачи:\n[ ] #1: Learn Ktor\n[x] #2: Build Task Manager", reply)
}

func TestReplyGet(t *testing.T) {
	b, _ := newTestBot(t)
	ctx := context.Background()

	assert.Equal(t, "[x] #2: Build Task Manager\nCreate a simple task manager API", b.Reply(ctx, "/get 2"))
	assert.Equal(t, "Ошибка: Task not found", b.Reply(ctx, "/get 9"))
	assert.Equal(t, "Ошибка: Invalid task ID", b.Reply(ctx, "/get nine"))
	assert.Equal(t, "Укажите номер задачи", b.Reply(ctx, "/get"))
}

func TestReplyAdd(t *testing.T) {
	b, tm := newTestBot(t)
	ctx := context.Background()

	assert.Equal(t, "Задача добавлена: [ ] #3: Buy milk", b.Reply(ctx, "/add 3 | Buy milk | 2 litres"))

	task, err := tm.GetTask(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.Task{ID: 3, Title: "Buy milk", Description: "2 litres"}, *task)

	assert.Equal(t, "Ошибка: Task with this ID already exists", b.Reply(ctx, "/add 1 | again | dup"))
	assert.Equal(t, "Ошибка: Invalid task ID", b.Reply(ctx, "/add x | a | b"))
	assert.Contains(t, b.Reply(ctx, "/add 4 only title"), "Формат")
}

func TestReplyDoneAndDelete(t *testing.T) {
	b, tm := newTestBot(t)
	ctx := context.Background()

	assert.Equal(t, "Задача #1 отмечена выполненной", b.Reply(ctx, "/done 1"))
	task, err := tm.GetTask(ctx, 1)
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "Learn Ktor", task.Title)

	assert.Equal(t, "Задача #2 удалена", b.Reply(ctx, "/delete 2"))
	assert.Equal(t, "Ошибка: Task not found", b.Reply(ctx, "/delete 2"))
	assert.Equal(t, "Ошибка: Task not found", b.Reply(ctx, "/done 2"))
}

func TestReplyEmptyAndUnknown(t *testing.T) {
	b := &Bot{tasks: manager.NewTaskManagerWithStorage(storage.NewMemoryStorage())}
	ctx := context.Background()

	assert.Equal(t, "Список задач пуст", b.Reply(ctx, "/list"))
	assert.Equal(t, helpText, b.Reply(ctx, "/help"))
	assert.Equal(t, helpText, b.Reply(ctx, "/start"))
	assert.Contains(t, b.Reply(ctx, "/foo"), "Неизвестная команда")
	assert.Contains(t, b.Reply(ctx, "just text"), "/help")
}
