package api

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/keepmind9/icqbot/pkg/constants"
	"github.com/pkg/errors"
)

// EventType is the discriminant tag of an incoming event
type EventType string

const (
	EventNewMessage      EventType = "newMessage"
	EventEditedMessage   EventType = "editedMessage"
	EventDeletedMessage  EventType = "deletedMessage"
	EventPinnedMessage   EventType = "pinnedMessage"
	EventUnpinnedMessage EventType = "unpinnedMessage"
	EventNewChatMembers  EventType = "newChatMembers"
	EventLeftChatMembers EventType = "leftChatMembers"
	EventCallbackQuery   EventType = "callbackQuery"
)

// EventTypes lists every kind the API delivers
var EventTypes = []EventType{
	EventNewMessage,
	EventEditedMessage,
	EventDeletedMessage,
	EventPinnedMessage,
	EventUnpinnedMessage,
	EventNewChatMembers,
	EventLeftChatMembers,
	EventCallbackQuery,
}

// Valid reports whether t is one of the known kinds
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t EventType) String() string {
	return string(t)
}

// RawEvent is an event as it arrives from events/get
type RawEvent struct {
	EventID int64           `json:"eventId"`
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type eventsResponse struct {
	Events []RawEvent `json:"events"`
}

// GetEvents long-polls for events newer than lastEventID. The server holds
// the request for up to pollTime when nothing is pending.
func (c *Client) GetEvents(ctx context.Context, lastEventID int64, pollTime time.Duration) ([]RawEvent, error) {
	p := newParams()
	p.set("lastEventId", strconv.FormatInt(lastEventID, 10))
	p.setInt("pollTime", int64(pollTime/time.Second))

	timeout := pollTime + constants.HTTPTimeoutMargin
	if timeout < c.timeout {
		timeout = c.timeout
	}

	var resp eventsResponse
	if err := c.getWithin(ctx, timeout, "/events/get", p, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Payload is the kind-specific body of an event. The set of implementations
// is closed: one record per EventType.
type Payload interface {
	EventType() EventType
}

// MessagePayload is the body of newMessage and editedMessage events
type MessagePayload struct {
	MsgID           string `json:"msgId"`
	Chat            Chat   `json:"chat"`
	From            User   `json:"from"`
	Text            string `json:"text"`
	Timestamp       int64  `json:"timestamp"`
	EditedTimestamp int64  `json:"editedTimestamp,omitempty"`
	Parts           []Part `json:"parts,omitempty"`

	edited bool
}

func (p *MessagePayload) EventType() EventType {
	if p.edited {
		return EventEditedMessage
	}
	return EventNewMessage
}

// DeletedMessagePayload is the body of deletedMessage events
type DeletedMessagePayload struct {
	MsgID     string `json:"msgId"`
	Chat      Chat   `json:"chat"`
	Timestamp int64  `json:"timestamp"`
}

func (p *DeletedMessagePayload) EventType() EventType { return EventDeletedMessage }

// PinnedMessagePayload is the body of pinnedMessage events
type PinnedMessagePayload struct {
	MsgID     string `json:"msgId"`
	Chat      Chat   `json:"chat"`
	From      User   `json:"from"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

func (p *PinnedMessagePayload) EventType() EventType { return EventPinnedMessage }

// UnpinnedMessagePayload is the body of unpinnedMessage events
type UnpinnedMessagePayload struct {
	MsgID     string `json:"msgId"`
	Chat      Chat   `json:"chat"`
	Timestamp int64  `json:"timestamp"`
}

func (p *UnpinnedMessagePayload) EventType() EventType { return EventUnpinnedMessage }

// NewChatMembersPayload is the body of newChatMembers events
type NewChatMembersPayload struct {
	Chat       Chat   `json:"chat"`
	NewMembers []User `json:"newMembers"`
	AddedBy    User   `json:"addedBy"`
}

func (p *NewChatMembersPayload) EventType() EventType { return EventNewChatMembers }

// LeftChatMembersPayload is the body of leftChatMembers events
type LeftChatMembersPayload struct {
	Chat        Chat   `json:"chat"`
	LeftMembers []User `json:"leftMembers"`
	RemovedBy   User   `json:"removedBy"`
}

func (p *LeftChatMembersPayload) EventType() EventType { return EventLeftChatMembers }

// CallbackQueryPayload is the body of callbackQuery events
type CallbackQueryPayload struct {
	QueryID      string         `json:"queryId"`
	From         User           `json:"from"`
	Chat         Chat           `json:"chat"`
	Message      MessagePayload `json:"message"`
	CallbackData string         `json:"callbackData"`
}

func (p *CallbackQueryPayload) EventType() EventType { return EventCallbackQuery }

// Event is a decoded event
type Event struct {
	ID      int64     `json:"eventId"`
	Type    EventType `json:"type"`
	Payload Payload   `json:"payload"`
}

// Message returns the payload of a newMessage or editedMessage event
func (e Event) Message() (*MessagePayload, bool) {
	p, ok := e.Payload.(*MessagePayload)
	return p, ok
}

// CallbackQuery returns the payload of a callbackQuery event
func (e Event) CallbackQuery() (*CallbackQueryPayload, bool) {
	p, ok := e.Payload.(*CallbackQueryPayload)
	return p, ok
}

// Text is the message text for message events and "" for everything else
func (e Event) Text() string {
	switch p := e.Payload.(type) {
	case *MessagePayload:
		return p.Text
	case *PinnedMessagePayload:
		return p.Text
	}
	return ""
}

// ChatID is the chat the event belongs to
func (e Event) ChatID() string {
	switch p := e.Payload.(type) {
	case *MessagePayload:
		return p.Chat.ChatID
	case *DeletedMessagePayload:
		return p.Chat.ChatID
	case *PinnedMessagePayload:
		return p.Chat.ChatID
	case *UnpinnedMessagePayload:
		return p.Chat.ChatID
	case *NewChatMembersPayload:
		return p.Chat.ChatID
	case *LeftChatMembersPayload:
		return p.Chat.ChatID
	case *CallbackQueryPayload:
		if p.Chat.ChatID != "" {
			return p.Chat.ChatID
		}
		return p.Message.Chat.ChatID
	}
	return ""
}

// UserID is the user who caused the event, if the kind carries one
func (e Event) UserID() string {
	switch p := e.Payload.(type) {
	case *MessagePayload:
		return p.From.UserID
	case *PinnedMessagePayload:
		return p.From.UserID
	case *NewChatMembersPayload:
		return p.AddedBy.UserID
	case *LeftChatMembersPayload:
		return p.RemovedBy.UserID
	case *CallbackQueryPayload:
		return p.From.UserID
	}
	return ""
}

// Decode turns a raw event into its typed form. An unknown tag yields
// ErrUnknownEventType; a payload that does not parse or lacks the fields its
// kind requires yields *DecodeError.
func (r RawEvent) Decode() (Event, error) {
	var payload Payload
	switch r.Type {
	case EventNewMessage, EventEditedMessage:
		payload = &MessagePayload{edited: r.Type == EventEditedMessage}
	case EventDeletedMessage:
		payload = &DeletedMessagePayload{}
	case EventPinnedMessage:
		payload = &PinnedMessagePayload{}
	case EventUnpinnedMessage:
		payload = &UnpinnedMessagePayload{}
	case EventNewChatMembers:
		payload = &NewChatMembersPayload{}
	case EventLeftChatMembers:
		payload = &LeftChatMembersPayload{}
	case EventCallbackQuery:
		payload = &CallbackQueryPayload{}
	default:
		return Event{}, errors.Wrapf(ErrUnknownEventType, "event %d: %q", r.EventID, string(r.Type))
	}

	if len(r.Payload) == 0 || string(r.Payload) == "null" {
		return Event{}, &DecodeError{EventID: r.EventID, Type: r.Type, Err: errors.New("missing payload")}
	}
	if err := json.Unmarshal(r.Payload, payload); err != nil {
		return Event{}, &DecodeError{EventID: r.EventID, Type: r.Type, Err: err}
	}
	if err := validatePayload(payload); err != nil {
		return Event{}, &DecodeError{EventID: r.EventID, Type: r.Type, Err: err}
	}

	return Event{ID: r.EventID, Type: r.Type, Payload: payload}, nil
}

func validatePayload(p Payload) error {
	switch p := p.(type) {
	case *MessagePayload:
		return requireMessage(p.MsgID, p.Chat)
	case *DeletedMessagePayload:
		return requireMessage(p.MsgID, p.Chat)
	case *PinnedMessagePayload:
		return requireMessage(p.MsgID, p.Chat)
	case *UnpinnedMessagePayload:
		return requireMessage(p.MsgID, p.Chat)
	case *NewChatMembersPayload:
		return requireChat(p.Chat)
	case *LeftChatMembersPayload:
		return requireChat(p.Chat)
	case *CallbackQueryPayload:
		if p.QueryID == "" {
			return errors.New("missing queryId")
		}
	}
	return nil
}

func requireMessage(msgID string, chat Chat) error {
	if msgID == "" {
		return errors.New("missing msgId")
	}
	return requireChat(chat)
}

func requireChat(chat Chat) error {
	if chat.ChatID == "" {
		return errors.New("missing chat.chatId")
	}
	return nil
}
