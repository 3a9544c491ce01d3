package bot

import (
	"strings"
	"sync"

	"github.com/keepmind9/icqbot/pkg/api"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyPrefix is returned when a command is registered with an empty
	// prefix, which would match every message
	ErrEmptyPrefix = errors.New("command prefix must not be empty")

	// ErrNilHandler is returned when a nil handler is registered
	ErrNilHandler = errors.New("handler must not be nil")
)

// HandlerFunc handles one event. The client is the one the bot polls with,
// so handlers can reply through it.
type HandlerFunc func(client *api.Client, event api.Event)

// Registry maps event kinds and command prefixes to ordered handler lists.
// Kind handlers and command handlers live in separate maps. Handlers are
// never removed.
type Registry struct {
	mu       sync.RWMutex
	kinds    map[api.EventType][]HandlerFunc
	commands map[string][]HandlerFunc
	prefixes []string
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		kinds:    make(map[api.EventType][]HandlerFunc),
		commands: make(map[string][]HandlerFunc),
	}
}

// Register appends handler to the list for kind
func (r *Registry) Register(kind api.EventType, handler HandlerFunc) error {
	if !kind.Valid() {
		return errors.Wrapf(api.ErrUnknownEventType, "register %q", string(kind))
	}
	if handler == nil {
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = append(r.kinds[kind], handler)
	return nil
}

// RegisterCommand appends handler to the list for prefix. Prefixes are tried
// in registration order, so registering the same prefix twice is harmless.
func (r *Registry) RegisterCommand(prefix string, handler HandlerFunc) error {
	if prefix == "" {
		return ErrEmptyPrefix
	}
	if handler == nil {
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[prefix] = append(r.commands[prefix], handler)
	r.prefixes = append(r.prefixes, prefix)
	return nil
}

// Resolve picks the handlers for event. A newMessage whose text starts with a
// registered prefix goes to the first such prefix only; anything else goes to
// the handlers of its kind. key is the matched prefix or the kind, and is
// empty when nothing matched.
func (r *Registry) Resolve(event api.Event) (key string, handlers []HandlerFunc) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if event.Type == api.EventNewMessage {
		text := event.Text()
		for _, prefix := range r.prefixes {
			if strings.HasPrefix(text, prefix) {
				return prefix, copyHandlers(r.commands[prefix])
			}
		}
	}

	if hs := r.kinds[event.Type]; len(hs) > 0 {
		return string(event.Type), copyHandlers(hs)
	}
	return "", nil
}

// Prefixes returns the registered command prefixes in registration order
func (r *Registry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.prefixes...)
}

func copyHandlers(hs []HandlerFunc) []HandlerFunc {
	out := make([]HandlerFunc, len(hs))
	copy(out, hs)
	return out
}
