package main

import (
	"context"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"taskboard/internal/client"
	"taskboard/internal/manager"
	"taskboard/internal/server"
	"taskboard/internal/storage"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	tm := manager.NewTaskManagerWithStorage(storage.NewMemoryStorage())
	srv := httptest.NewServer(server.NewRouter(tm, server.Options{}))
	t.Cleanup(srv.Close)

	s := &fakeSender{}
	return NewBot(s, client.New(srv.URL+"/api")), s
}

func TestParseAdd(t *testing.T) {
	tests := []struct {
		in    string
		title string
		tags  []string
	}{
		{"Buy milk #shopping", "Buy milk", []string{"shopping"}},
		{"#work Write   report #urgent", "Write report", []string{"work", "urgent"}},
		{"Plain task", "Plain task", nil},
		{"Lonely # hash", "Lonely hash", nil},
	}
	for _, tt := range tests {
		title, tags := parseAdd(tt.in)
		if title != tt.title || !slices.Equal(tags, tt.tags) {
			t.Errorf("parseAdd(%q) = %q %v, want %q %v", tt.in, title, tags, tt.title, tt.tags)
		}
	}
}

func TestParseList(t *testing.T) {
	f := parseList("pending #home work")
	if f.Completed == nil || *f.Completed {
		t.Errorf("Completed = %v, want false", f.Completed)
	}
	if !slices.Equal(f.Tags, []string{"home", "work"}) {
		t.Errorf("Tags = %v", f.Tags)
	}
	if f := parseList(""); f.Completed != nil || f.Tags != nil {
		t.Errorf("empty args gave %+v", f)
	}
}

func TestCommands(t *testing.T) {
	b, _ := newTestBot(t)
	ctx := context.Background()

	if got := b.reply(ctx, "add", "Buy milk #shopping"); !strings.Contains(got, "Added *#1* Buy milk") {
		t.Errorf("add reply = %q", got)
	}
	b.reply(ctx, "add", "snake_case task #work")

	list := b.reply(ctx, "list", "")
	if !strings.Contains(list, "[ ] #1 Buy milk #shopping") || !strings.Contains(list, `snake\_case`) {
		t.Errorf("list reply = %q", list)
	}

	if got := b.reply(ctx, "done", "1"); got != "Task #1 marked completed" {
		t.Errorf("done reply = %q", got)
	}
	if got := b.reply(ctx, "list", "done"); !strings.Contains(got, "[x] #1") || strings.Contains(got, "#2") {
		t.Errorf("done list = %q", got)
	}
	if got := b.reply(ctx, "list", "#work"); !strings.Contains(got, "#2") || strings.Contains(got, "#1 ") {
		t.Errorf("tag list = %q", got)
	}

	if got := b.reply(ctx, "delete", "1"); got != "Task #1 deleted" {
		t.Errorf("delete reply = %q", got)
	}
	if got := b.reply(ctx, "delete", "1"); !strings.Contains(got, `Task with ID "1" not found.`) {
		t.Errorf("second delete reply = %q", got)
	}
	if got := b.reply(ctx, "tags", ""); got != "#work" {
		t.Errorf("tags reply = %q", got)
	}
}

func TestCommandInputErrors(t *testing.T) {
	b, _ := newTestBot(t)
	ctx := context.Background()

	tests := []struct {
		command, args, want string
	}{
		{"add", "", "Give the task after the command"},
		{"add", "#onlytags", "Title is required"},
		{"done", "", badIDText},
		{"delete", "abc", badIDText},
		{"undo", "-3", badIDText},
		{"frobnicate", "", "Unknown command"},
	}
	for _, tt := range tests {
		if got := b.reply(ctx, tt.command, tt.args); !strings.Contains(got, tt.want) {
			t.Errorf("/%s %s = %q, want containing %q", tt.command, tt.args, got, tt.want)
		}
	}
}

func TestPlainTextAddsTask(t *testing.T) {
	b, s := newTestBot(t)
	msg := &tgbotapi.Message{
		Text: "Call plumber #home",
		Chat: &tgbotapi.Chat{ID: 42},
	}

	b.handleMessage(context.Background(), msg)

	if len(s.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(s.sent))
	}
	got := s.sent[0]
	if got.ChatID != 42 || got.ParseMode != "Markdown" || !strings.Contains(got.Text, "Call plumber") {
		t.Errorf("unexpected reply %+v", got)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close()
	b := NewBot(&fakeSender{}, client.New(srv.URL))

	if got := b.reply(context.Background(), "list", ""); got != "Task server is unreachable, try again later" {
		t.Errorf("reply = %q", got)
	}
}
