package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"task-api/internal/apperrors"
	"task-api/internal/logger"
	"task-api/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

const helpText = `Команды:
/list - все задачи
/get <id> - одна задача
/add <id> | <title> | <description> - новая задача
/done <id> - отметить задачу выполненной
/delete <id> - удалить задачу
/help - эта справка`

// TaskService - операции над коллекцией, которые нужны боту.
type TaskService interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int) (*models.Task, error)
	AddTask(ctx context.Context, task models.Task) (*models.Task, error)
	UpdateTask(ctx context.Context, id int, task models.Task) (*models.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

type Bot struct {
	api   *tgbotapi.BotAPI
	tasks TaskService
}

func New(token string, tasks TaskService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания бота: %w", err)
	}

	logger.Info(context.Background(), "Бот авторизован", "username", api.Self.UserName)
	return &Bot{api: api, tasks: tasks}, nil
}

// Run читает обновления, пока не отменён ctx.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("ошибка получения updates: %w", err)
	}
	logger.Info(ctx, "Бот запущен и слушает сообщения")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logger.Info(ctx, "Бот остановлен")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	logger.Debug(ctx, "Получено сообщение", "chat", msg.Chat.ID, "text", msg.Text)

	reply := tgbotapi.NewMessage(msg.Chat.ID, b.Reply(ctx, msg.Text))
	if _, err := b.api.Send(reply); err != nil {
		logger.Error(ctx, err, "Ошибка отправки сообщения", "chat", msg.Chat.ID)
	}
}

// Reply строит ответ на текст сообщения.
func (b *Bot) Reply(ctx context.Context, text string) string {
	command, args := parseCommand(text)

	switch command {
	case "start", "help":
		return helpText
	case "list":
		return b.list(ctx)
	case "get":
		return b.withID(args, func(id int) string { return b.get(ctx, id) })
	case "add":
		return b.add(ctx, args)
	case "done":
		return b.withID(args, func(id int) string { return b.done(ctx, id) })
	case "delete":
		return b.withID(args, func(id int) string { return b.delete(ctx, id) })
	case "":
		return "Используйте команды, /help покажет список."
	default:
		return "Неизвестная команда. Используйте /help для списка команд."
	}
}

func (b *Bot) list(ctx context.Context) string {
	tasks, err := b.tasks.ListTasks(ctx)
	if err != nil {
		return errorText(err)
	}
	if len(tasks) == 0 {
		return "Список задач пуст"
	}

	var sb strings.Builder
	sb.WriteString("Задачи:\n")
	for _, task := range tasks {
		sb.WriteString(formatTask(task))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) get(ctx context.Context, id int) string {
	task, err := b.tasks.GetTask(ctx, id)
	if err != nil {
		return errorText(err)
	}
	return formatTask(*task) + "\n" + task.Description
}

// add ждёт аргументы вида "3 | title | description".
func (b *Bot) add(ctx context.Context, args string) string {
	parts := strings.SplitN(args, "|", 3)
	if len(parts) != 3 {
		return "Формат: /add <id> | <title> | <description>"
	}

	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return errorText(apperrors.NewInvalidIdentifierError(parts[0]))
	}

	task, err := b.tasks.AddTask(ctx, models.Task{
		ID:          id,
		Title:       strings.TrimSpace(parts[1]),
		Description: strings.TrimSpace(parts[2]),
	})
	if err != nil {
		return errorText(err)
	}
	return "Задача добавлена: " + formatTask(*task)
}

func (b *Bot) done(ctx context.Context, id int) string {
	task, err := b.tasks.GetTask(ctx, id)
	if err != nil {
		return errorText(err)
	}

	task.Completed = true
	if _, err := b.tasks.UpdateTask(ctx, id, *task); err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("Задача #%d отмечена выполненной", id)
}

func (b *Bot) delete(ctx context.Context, id int) string {
	if err := b.tasks.DeleteTask(ctx, id); err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("Задача #%d удалена", id)
}

func (b *Bot) withID(args string, fn func(id int) string) string {
	raw := strings.TrimSpace(args)
	if raw == "" {
		return "Укажите номер задачи"
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return errorText(apperrors.NewInvalidIdentifierError(raw))
	}
	return fn(id)
}

// parseCommand разбирает "/cmd@botname args" на "cmd" и "args".
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command, args, _ := strings.Cut(text[1:], " ")
	if i := strings.Index(command, "@"); i >= 0 {
		command = command[:i]
	}
	return strings.ToLower(command), strings.TrimSpace(args)
}

func formatTask(task models.Task) string {
	status := "[ ]"
	if task.Completed {
		status = "[x]"
	}
	return fmt.Sprintf("%s #%d: %s", status, task.ID, task.Title)
}

func errorText(err error) string {
	return "Ошибка: " + apperrors.GetUserMessage(err)
}
