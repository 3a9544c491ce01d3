// Package bot turns Bot API events into handler calls.
//
// A Bot owns a handler registry, an event source tracking the last consumed
// event id, and a dispatcher running the poll loop. Nothing is process-wide,
// so several bots can run side by side.
//
// Example:
//
//	client, _ := api.NewClient(token)
//	b, _ := bot.New(client)
//	b.Command("/ping", func(c *api.Client, e api.Event) {
//	    c.SendText(context.Background(), e.ChatID(), "pong", nil)
//	})
//	b.Run(ctx)
//
// Messages whose text starts with a registered command prefix go to that
// command's handlers only. The first registered matching prefix wins, so
// register "/ab" before "/a" if both should be reachable.
package bot

import (
	"context"
	"time"

	"github.com/keepmind9/icqbot/pkg/api"
	"github.com/pkg/errors"
)

// ErrNoFetcher is returned by New when there is neither a client nor a fetcher
var ErrNoFetcher = errors.New("bot needs an api client or an event fetcher")

type settings struct {
	pollTime   time.Duration
	retryDelay time.Duration
	fetcher    EventFetcher
	onError    ErrorHandler
}

// Option configures a Bot
type Option func(*settings)

// WithPollTime sets how long each events/get call may wait on the server
func WithPollTime(d time.Duration) Option {
	return func(s *settings) { s.pollTime = d }
}

// WithRetryDelay sets the pause after a failed fetch
func WithRetryDelay(d time.Duration) Option {
	return func(s *settings) { s.retryDelay = d }
}

// WithFetcher replaces the client as the event source
func WithFetcher(f EventFetcher) Option {
	return func(s *settings) { s.fetcher = f }
}

// WithErrorHandler installs a hook for recovered handler panics
func WithErrorHandler(fn ErrorHandler) Option {
	return func(s *settings) { s.onError = fn }
}

// Bot is an event-driven bot bound to one API client
type Bot struct {
	client     *api.Client
	registry   *Registry
	source     *EventSource
	dispatcher *Dispatcher
}

// New creates a bot polling through client
func New(client *api.Client, opts ...Option) (*Bot, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	fetcher := s.fetcher
	if fetcher == nil {
		if client == nil {
			return nil, ErrNoFetcher
		}
		fetcher = client
	}

	registry := NewRegistry()
	source := NewEventSource(fetcher, s.pollTime)
	dispatcher := NewDispatcher(client, source, registry)
	dispatcher.SetRetryDelay(s.retryDelay)
	dispatcher.SetErrorHandler(s.onError)

	return &Bot{
		client:     client,
		registry:   registry,
		source:     source,
		dispatcher: dispatcher,
	}, nil
}

// Client returns the API client handlers receive
func (b *Bot) Client() *api.Client { return b.client }

// Cursor returns the id of the last event consumed
func (b *Bot) Cursor() int64 { return b.source.Cursor() }

// Registry exposes the handler registry
func (b *Bot) Registry() *Registry { return b.registry }

// Source exposes the event source, e.g. to resume from a stored cursor
func (b *Bot) Source() *EventSource { return b.source }

// Handle registers h for an event kind
func (b *Bot) Handle(kind api.EventType, h HandlerFunc) error {
	return b.registry.Register(kind, h)
}

// Command registers h for messages starting with prefix
func (b *Bot) Command(prefix string, h HandlerFunc) error {
	return b.registry.RegisterCommand(prefix, h)
}

// OnMessage registers h for new messages that match no command
func (b *Bot) OnMessage(h HandlerFunc) error {
	return b.Handle(api.EventNewMessage, h)
}

func (b *Bot) OnEditedMessage(h HandlerFunc) error {
	return b.Handle(api.EventEditedMessage, h)
}

func (b *Bot) OnDeletedMessage(h HandlerFunc) error {
	return b.Handle(api.EventDeletedMessage, h)
}

func (b *Bot) OnPinnedMessage(h HandlerFunc) error {
	return b.Handle(api.EventPinnedMessage, h)
}

func (b *Bot) OnUnpinnedMessage(h HandlerFunc) error {
	return b.Handle(api.EventUnpinnedMessage, h)
}

func (b *Bot) OnNewChatMember(h HandlerFunc) error {
	return b.Handle(api.EventNewChatMembers, h)
}

func (b *Bot) OnLeftChatMember(h HandlerFunc) error {
	return b.Handle(api.EventLeftChatMembers, h)
}

func (b *Bot) OnCallbackQuery(h HandlerFunc) error {
	return b.Handle(api.EventCallbackQuery, h)
}

// Run polls and dispatches until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	return b.dispatcher.Run(ctx)
}

// Dispatch routes one already decoded event, bypassing the poll loop
func (b *Bot) Dispatch(event api.Event) bool {
	return b.dispatcher.DispatchEvent(event)
}
