// Package testutil holds fakes shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"
)

// Sent is a message captured by Context.Send.
type Sent struct {
	What any
	Opts []any
}

// Text returns the sent payload when it is a string.
func (s Sent) Text() string {
	text, _ := s.What.(string)
	return text
}

// ParseMode returns the parse mode passed with the message, if any.
func (s Sent) ParseMode() telebot.ParseMode {
	for _, opt := range s.Opts {
		switch v := opt.(type) {
		case telebot.ParseMode:
			return v
		case *telebot.SendOptions:
			if v != nil {
				return v.ParseMode
			}
		}
	}
	return telebot.ModeDefault
}

// Context is a telebot.Context fake that records outgoing messages.
// Methods not overridden here panic through the nil embedded interface.
type Context struct {
	telebot.Context

	UpdateID int
	User     *telebot.User
	ChatInfo *telebot.Chat
	Msg      string

	// SendErr is returned by every Send call.
	SendErr error

	mu    sync.Mutex
	sent  []Sent
	store map[string]any
}

// NewContext builds a private-chat text update from the given sender.
func NewContext(updateID int, user *telebot.User, text string) *Context {
	var chat *telebot.Chat
	if user != nil {
		chat = &telebot.Chat{ID: user.ID, Type: telebot.ChatPrivate}
	}

	return &Context{
		UpdateID: updateID,
		User:     user,
		ChatInfo: chat,
		Msg:      text,
	}
}

func (c *Context) Sender() *telebot.User { return c.User }

func (c *Context) Chat() *telebot.Chat { return c.ChatInfo }

func (c *Context) Text() string { return c.Msg }

func (c *Context) Callback() *telebot.Callback { return nil }

func (c *Context) Message() *telebot.Message {
	return &telebot.Message{ID: c.UpdateID, Sender: c.User, Chat: c.ChatInfo, Text: c.Msg}
}

func (c *Context) Update() telebot.Update {
	return telebot.Update{ID: c.UpdateID, Message: c.Message()}
}

func (c *Context) Send(what interface{}, opts ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.SendErr != nil {
		return c.SendErr
	}

	c.sent = append(c.sent, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = value
}

func (c *Context) Get(key string) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store[key]
}

// SentMessages returns a copy of everything sent so far.
func (c *Context) SentMessages() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Sent(nil), c.sent...)
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
