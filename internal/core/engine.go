package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/keepmind9/icqbot/internal/logger"
	"github.com/keepmind9/icqbot/pkg/api"
	"github.com/keepmind9/icqbot/pkg/bot"
	"github.com/keepmind9/icqbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// Engine is the config-driven bot: canned command replies, /help, /whoami,
// welcome messages and optional echo
type Engine struct {
	config *Config
	client *api.Client
	bot    *bot.Bot

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewEngine creates the API client and bot described by config and registers
// its handlers
func NewEngine(config *Config) (*Engine, error) {
	token, err := config.ResolveToken()
	if err != nil {
		return nil, err
	}

	pollTime := config.Polling.PollTimeDuration()
	client, err := api.NewClient(token,
		api.WithBaseURL(config.API.BaseURL),
		api.WithParseMode(config.API.ParseMode),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	e := &Engine{
		config: config,
		client: client,
		ctx:    context.Background(),
	}

	e.bot, err = bot.New(client,
		bot.WithPollTime(pollTime),
		bot.WithRetryDelay(config.Polling.RetryDelayDuration()),
		bot.WithErrorHandler(e.handlePanic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if err := e.registerHandlers(); err != nil {
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	return e, nil
}

// Client returns the API client the engine polls and replies with
func (e *Engine) Client() *api.Client {
	return e.client
}

// Bot returns the underlying bot so callers can add handlers before Run
func (e *Engine) Bot() *bot.Bot {
	return e.bot
}

func (e *Engine) registerHandlers() error {
	for _, cmd := range e.config.Commands {
		if err := e.bot.Command(cmd.Prefix, e.commandHandler(cmd)); err != nil {
			return fmt.Errorf("command %s: %w", cmd.Prefix, err)
		}
	}
	if !e.config.HasCommand(HelpCommand) {
		if err := e.bot.Command(HelpCommand, e.handleHelp); err != nil {
			return err
		}
	}
	if !e.config.HasCommand(WhoamiCommand) {
		if err := e.bot.Command(WhoamiCommand, e.handleWhoami); err != nil {
			return err
		}
	}

	if e.config.Welcome != "" {
		if err := e.bot.OnNewChatMember(e.handleWelcome); err != nil {
			return err
		}
	}
	if e.config.Echo {
		if err := e.bot.OnMessage(e.handleEcho); err != nil {
			return err
		}
	}
	if err := e.bot.OnCallbackQuery(e.handleCallbackQuery); err != nil {
		return err
	}

	for _, kind := range []api.EventType{
		api.EventEditedMessage,
		api.EventDeletedMessage,
		api.EventPinnedMessage,
		api.EventUnpinnedMessage,
		api.EventLeftChatMembers,
	} {
		if err := e.bot.Handle(kind, logEvent); err != nil {
			return err
		}
	}

	logger.WithFields(logrus.Fields{
		"commands": e.bot.Registry().Prefixes(),
		"welcome":  e.config.Welcome != "",
		"echo":     e.config.Echo,
	}).Debug("engine-handlers-registered")
	return nil
}

// Run checks the token and polls until ctx is cancelled or Stop is called
func (e *Engine) Run(ctx context.Context) error {
	logger.Info("starting-icqbot-engine")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.ctx, e.cancel = ctx, cancel
	e.mu.Unlock()

	self, err := e.client.GetSelf(ctx)
	if err != nil {
		logger.WithField("error", err).Error("failed-to-verify-bot-token")
		return fmt.Errorf("failed to verify bot token: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"bot_id":   self.UserID,
		"bot_nick": self.Nick,
		"base_url": e.client.BaseURL(),
	}).Info("icqbot-engine-started")

	if err := e.bot.Run(ctx); err != nil {
		return err
	}

	logger.WithField("cursor", e.bot.Cursor()).Info("engine-stopped")
	return nil
}

// Stop cancels a running engine
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel == nil {
		logger.Debug("engine-not-running")
		return
	}
	logger.Info("stopping-icqbot-engine")
	e.cancel()
}

func (e *Engine) context() context.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

func (e *Engine) commandHandler(cmd CommandConfig) bot.HandlerFunc {
	return func(client *api.Client, event api.Event) {
		if !e.authorize(event) {
			return
		}
		if cmd.AdminOnly && !e.config.IsAdmin(event.UserID()) {
			logger.WithFields(logrus.Fields{
				"user":    event.UserID(),
				"command": cmd.Prefix,
			}).Warn("admin-command-denied")
			return
		}

		logger.WithFields(logrus.Fields{
			"user":    event.UserID(),
			"command": cmd.Prefix,
		}).Info("handling-command")
		e.reply(client, event, cmd.Reply)
	}
}

// handleHelp lists the configured commands
func (e *Engine) handleHelp(client *api.Client, event api.Event) {
	if !e.authorize(event) {
		return
	}
	e.reply(client, event, e.helpText(event.UserID()))
}

func (e *Engine) helpText(userID string) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")

	commands := append([]CommandConfig(nil), e.config.Commands...)
	sort.SliceStable(commands, func(i, j int) bool { return commands[i].Prefix < commands[j].Prefix })

	for _, cmd := range commands {
		if cmd.AdminOnly && !e.config.IsAdmin(userID) {
			continue
		}
		if cmd.Description != "" {
			fmt.Fprintf(&b, "%s - %s\n", cmd.Prefix, cmd.Description)
		} else {
			fmt.Fprintf(&b, "%s\n", cmd.Prefix)
		}
	}
	if !e.config.HasCommand(HelpCommand) {
		fmt.Fprintf(&b, "%s - Show this help message\n", HelpCommand)
	}
	if !e.config.HasCommand(WhoamiCommand) {
		fmt.Fprintf(&b, "%s - Show your user and chat id\n", WhoamiCommand)
	}
	return strings.TrimRight(b.String(), "\n")
}

// handleWhoami answers every user, authorized or not, so they can find the
// id to put on the whitelist
func (e *Engine) handleWhoami(client *api.Client, event api.Event) {
	text := fmt.Sprintf("User ID: %s\nChat ID: %s", event.UserID(), event.ChatID())
	e.reply(client, event, text)
}

func (e *Engine) handleWelcome(client *api.Client, event api.Event) {
	p, ok := event.Payload.(*api.NewChatMembersPayload)
	if !ok || len(p.NewMembers) == 0 {
		return
	}

	names := make([]string, 0, len(p.NewMembers))
	for _, m := range p.NewMembers {
		names = append(names, displayName(m))
	}

	logger.WithFields(logrus.Fields{
		"chat":    event.ChatID(),
		"members": len(names),
	}).Info("welcoming-new-members")
	e.send(client, event.ChatID(), strings.ReplaceAll(e.config.Welcome, "{name}", strings.Join(names, ", ")), nil)
}

func (e *Engine) handleEcho(client *api.Client, event api.Event) {
	text := event.Text()
	if text == "" || !e.authorize(event) {
		return
	}
	e.reply(client, event, text)
}

// handleCallbackQuery always answers the query so the client stops its
// spinner. Callback data equal to a configured command prefix sends that
// command's reply.
func (e *Engine) handleCallbackQuery(client *api.Client, event api.Event) {
	q, ok := event.CallbackQuery()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(e.context(), constants.ReplyTimeout)
	defer cancel()
	if _, err := client.AnswerCallbackQuery(ctx, q.QueryID, "", false, ""); err != nil {
		logger.WithFields(logrus.Fields{
			"query_id": q.QueryID,
			"error":    err,
		}).Error("failed-to-answer-callback-query")
	}

	if !e.config.IsUserAuthorized(event.UserID()) {
		return
	}
	for _, cmd := range e.config.Commands {
		if cmd.Prefix == q.CallbackData {
			if cmd.AdminOnly && !e.config.IsAdmin(event.UserID()) {
				return
			}
			e.send(client, event.ChatID(), cmd.Reply, nil)
			return
		}
	}
}

func (e *Engine) handlePanic(event api.Event, err error) {
	logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"type":     event.Type,
		"error":    err,
	}).Error("engine-handler-failed")
}

func (e *Engine) authorize(event api.Event) bool {
	if e.config.IsUserAuthorized(event.UserID()) {
		logger.WithField("user", event.UserID()).Debug("user-authorized")
		return true
	}
	logger.WithFields(logrus.Fields{
		"user": event.UserID(),
		"chat": event.ChatID(),
	}).Warn("unauthorized-access-attempt")
	return false
}

// reply answers the message behind event, quoting it
func (e *Engine) reply(client *api.Client, event api.Event, text string) {
	var opts *api.MessageOptions
	if m, ok := event.Message(); ok {
		opts = &api.MessageOptions{ReplyMsgID: m.MsgID}
	}
	e.send(client, event.ChatID(), text, opts)
}

func (e *Engine) send(client *api.Client, chatID, text string, opts *api.MessageOptions) {
	if chatID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(e.context(), constants.ReplyTimeout)
	defer cancel()

	if _, err := client.SendText(ctx, chatID, text, opts); err != nil {
		logger.WithFields(logrus.Fields{
			"chat":  chatID,
			"error": err,
		}).Error("failed-to-send-message")
		return
	}
	logger.WithFields(logrus.Fields{
		"chat":   chatID,
		"length": len(text),
	}).Info("message-sent")
}

func logEvent(_ *api.Client, event api.Event) {
	logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"type":     event.Type,
		"chat":     event.ChatID(),
		"user":     event.UserID(),
		"text":     logger.Truncate(event.Text()),
	}).Debug("event-received")
}

func displayName(u api.User) string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Nick != "":
		return "@" + u.Nick
	default:
		return u.UserID
	}
}
