package bot

import (
	"testing"

	"github.com/keepmind9/icqbot/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(*api.Client, api.Event) {}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := NewRegistry()

	assert.ErrorIs(t, r.Register(api.EventType("typing"), noop), api.ErrUnknownEventType)
	assert.ErrorIs(t, r.Register(api.EventNewMessage, nil), ErrNilHandler)
	assert.ErrorIs(t, r.RegisterCommand("", noop), ErrEmptyPrefix)
	assert.ErrorIs(t, r.RegisterCommand("/x", nil), ErrNilHandler)

	for _, kind := range api.EventTypes {
		assert.NoError(t, r.Register(kind, noop), kind.String())
	}
}

func TestRegistry_Resolve(t *testing.T) {
	// recording returns a handler that appends name to calls
	var calls []string
	recording := func(name string) HandlerFunc {
		return func(*api.Client, api.Event) { calls = append(calls, name) }
	}

	tests := []struct {
		name     string
		setup    func(r *Registry)
		event    api.Event
		wantKey  string
		wantRuns []string
	}{
		{
			name: "first registered prefix wins over longer one",
			setup: func(r *Registry) {
				r.RegisterCommand("/a", recording("a"))
				r.RegisterCommand("/ab", recording("ab"))
			},
			event:    message(1, "/abc"),
			wantKey:  "/a",
			wantRuns: []string{"a"},
		},
		{
			name: "prefix match is literal, not tokenized",
			setup: func(r *Registry) {
				r.RegisterCommand("/h", recording("h"))
			},
			event:    message(1, "/hx"),
			wantKey:  "/h",
			wantRuns: []string{"h"},
		},
		{
			name: "command match excludes generic message handlers",
			setup: func(r *Registry) {
				r.Register(api.EventNewMessage, recording("generic"))
				r.RegisterCommand("/help", recording("help"))
			},
			event:    message(1, "/help me"),
			wantKey:  "/help",
			wantRuns: []string{"help"},
		},
		{
			name: "no prefix match falls back to kind",
			setup: func(r *Registry) {
				r.RegisterCommand("/help", recording("help"))
				r.Register(api.EventNewMessage, recording("generic"))
			},
			event:    message(1, "help"),
			wantKey:  "newMessage",
			wantRuns: []string{"generic"},
		},
		{
			name: "handlers of one key run in registration order",
			setup: func(r *Registry) {
				r.RegisterCommand("/go", recording("one"))
				r.RegisterCommand("/go", recording("two"))
				r.RegisterCommand("/go", recording("three"))
			},
			event:    message(1, "/go"),
			wantKey:  "/go",
			wantRuns: []string{"one", "two", "three"},
		},
		{
			name: "edited messages are not matched against commands",
			setup: func(r *Registry) {
				r.RegisterCommand("/ping", recording("ping"))
				r.Register(api.EventEditedMessage, recording("edited"))
			},
			event: api.Event{ID: 1, Type: api.EventEditedMessage, Payload: &api.MessagePayload{
				MsgID: "1", Chat: api.Chat{ChatID: "c"}, Text: "/ping",
			}},
			wantKey:  "editedMessage",
			wantRuns: []string{"edited"},
		},
		{
			name: "unregistered kind resolves to nothing",
			setup: func(r *Registry) {
				r.Register(api.EventNewMessage, recording("generic"))
			},
			event:    api.Event{ID: 1, Type: api.EventLeftChatMembers, Payload: &api.LeftChatMembersPayload{}},
			wantKey:  "",
			wantRuns: nil,
		},
		{
			name:     "empty registry",
			setup:    func(r *Registry) {},
			event:    message(1, "/anything"),
			wantKey:  "",
			wantRuns: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = nil
			r := NewRegistry()
			tt.setup(r)

			key, handlers := r.Resolve(tt.event)
			assert.Equal(t, tt.wantKey, key)
			for _, h := range handlers {
				h(nil, tt.event)
			}
			assert.Equal(t, tt.wantRuns, calls)
		})
	}
}

func TestRegistry_DuplicatePrefixes(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterCommand("/a", noop))
	require.NoError(t, r.RegisterCommand("/b", noop))
	require.NoError(t, r.RegisterCommand("/a", noop))

	assert.Equal(t, []string{"/a", "/b", "/a"}, r.Prefixes())

	key, handlers := r.Resolve(message(1, "/a"))
	assert.Equal(t, "/a", key)
	assert.Len(t, handlers, 2)
}

func TestRegistry_ResolveReturnsCopy(t *testing.T) {
	r := NewRegistry()
	calls := 0
	require.NoError(t, r.Register(api.EventNewMessage, func(*api.Client, api.Event) { calls++ }))

	_, handlers := r.Resolve(message(1, "x"))
	require.Len(t, handlers, 1)
	handlers[0] = nil

	_, again := r.Resolve(message(2, "x"))
	require.Len(t, again, 1)
	require.NotNil(t, again[0])
	again[0](nil, message(2, "x"))
	assert.Equal(t, 1, calls)
}
