package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"taskboard/internal/client"
	"taskboard/internal/logger"
	"taskboard/internal/models"
)

// TaskAPI is the part of client.Client the bot calls.
type TaskAPI interface {
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]string, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api   sender
	tasks TaskAPI
	now   func() time.Time
}

func NewBot(api sender, tasks TaskAPI) *Bot {
	return &Bot{api: api, tasks: tasks, now: time.Now}
}

// Run handles updates until ctx is cancelled or the channel closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user := ""
	if msg.From != nil {
		user = msg.From.UserName
	}
	logger.Debug(ctx, "message received", "user", user, "chat", msg.Chat.ID)

	var text string
	if msg.IsCommand() {
		text = b.reply(ctx, msg.Command(), msg.CommandArguments())
	} else if strings.TrimSpace(msg.Text) != "" {
		// Plain text is treated as /add.
		text = b.reply(ctx, "add", msg.Text)
	}
	if text == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = "Markdown"
	if _, err := b.api.Send(out); err != nil {
		logger.Error(ctx, err, "send reply failed", "chat", msg.Chat.ID)
	}
}

// reply runs one command and returns the Markdown answer.
func (b *Bot) reply(ctx context.Context, command, args string) string {
	args = strings.TrimSpace(args)

	switch command {
	case "start", "help":
		return helpText
	case "add":
		return b.add(ctx, args)
	case "list":
		return b.list(ctx, args)
	case "done":
		return b.setCompleted(ctx, args, true)
	case "undo":
		return b.setCompleted(ctx, args, false)
	case "delete":
		return b.delete(ctx, args)
	case "tags":
		return b.tags(ctx)
	}
	return "Unknown command. Send /help for the list of commands."
}

const helpText = `*Task board bot*

/list [pending|done] [#tag ...] - show tasks
/add title #tag - add a task
/done ID - mark a task completed
/undo ID - mark a task pending
/delete ID - delete a task
/tags - list tags in use
/help - this message

Any text that is not a command is added as a task.`

func (b *Bot) add(ctx context.Context, args string) string {
	if args == "" {
		return "Give the task after the command: /add Buy milk #shopping"
	}

	title, tags := parseAdd(args)
	form := client.TaskForm{Title: title, Tags: strings.Join(tags, ",")}
	if errs := form.Validate(b.now()); !errs.OK() {
		return errs["title"]
	}

	task, err := b.tasks.CreateTask(ctx, form.ToCreate())
	if err != nil {
		return failure(err)
	}

	text := fmt.Sprintf("Added *#%d* %s", task.ID, escape(task.Title))
	if len(task.Tags) > 0 {
		text += "\nTags: " + escape(strings.Join(task.Tags, ", "))
	}
	return text
}

func (b *Bot) list(ctx context.Context, args string) string {
	tasks, err := b.tasks.ListTasks(ctx, parseList(args))
	if err != nil {
		return failure(err)
	}
	if len(tasks) == 0 {
		return "No tasks"
	}

	var sb strings.Builder
	sb.WriteString("*Tasks:*\n\n")
	for _, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		fmt.Fprintf(&sb, "%s #%d %s", mark, t.ID, escape(t.Title))
		if t.DueDate != nil {
			fmt.Fprintf(&sb, " (due %s)", t.DueDate.Local().Format(time.DateOnly))
		}
		if len(t.Tags) > 0 {
			sb.WriteString(" " + escape("#"+strings.Join(t.Tags, " #")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *Bot) setCompleted(ctx context.Context, args string, completed bool) string {
	id, ok := parseTaskID(args)
	if !ok {
		return badIDText
	}
	if _, err := b.tasks.UpdateTask(ctx, id, models.UpdateTaskRequest{Completed: &completed}); err != nil {
		return failure(err)
	}
	if completed {
		return fmt.Sprintf("Task #%d marked completed", id)
	}
	return fmt.Sprintf("Task #%d marked pending", id)
}

func (b *Bot) delete(ctx context.Context, args string) string {
	id, ok := parseTaskID(args)
	if !ok {
		return badIDText
	}
	if err := b.tasks.DeleteTask(ctx, id); err != nil {
		return failure(err)
	}
	return fmt.Sprintf("Task #%d deleted", id)
}

func (b *Bot) tags(ctx context.Context) string {
	tags, err := b.tasks.ListTags(ctx)
	if err != nil {
		return failure(err)
	}
	if len(tags) == 0 {
		return "No tags yet"
	}
	return escape("#" + strings.Join(tags, " #"))
}

// parseAdd splits "Buy milk #home #shopping" into a title and tags.
func parseAdd(text string) (string, []string) {
	var words, tags []string
	for _, word := range strings.Fields(text) {
		if tag := strings.TrimPrefix(word, "#"); tag != word {
			if tag != "" {
				tags = append(tags, tag)
			}
			continue
		}
		words = append(words, word)
	}
	return strings.Join(words, " "), tags
}

// parseList reads "pending", "done" and tags from the /list arguments.
func parseList(args string) models.TaskFilter {
	var f models.TaskFilter
	for _, word := range strings.Fields(args) {
		switch word {
		case "pending":
			f.Completed = ptr(false)
		case "done", "completed":
			f.Completed = ptr(true)
		default:
			tag := strings.TrimPrefix(word, "#")
			if tag == "" {
				continue
			}
			f.Tags = append(f.Tags, tag)
		}
	}
	return f
}

const badIDText = "Give a task number, for example: /done 1"

func parseTaskID(args string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(args, "#"), 10, 64)
	return id, err == nil && id > 0
}

func failure(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return "Error: " + escape(apiErr.Error())
	}
	if errors.Is(err, client.ErrTransport) {
		return "Task server is unreachable, try again later"
	}
	return "Error: " + escape(err.Error())
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape protects user text from legacy Markdown parsing.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func ptr[T any](v T) *T {
	return &v
}
