package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/keepmind9/icqbot/internal/logger"
	"github.com/keepmind9/icqbot/pkg/api"
	"github.com/sirupsen/logrus"
)

// ErrorHandler is told about every handler that panicked
type ErrorHandler func(event api.Event, err error)

// Dispatcher runs the poll loop: fetch a batch, route each event to its
// handlers, repeat.
type Dispatcher struct {
	client     *api.Client
	source     *EventSource
	registry   *Registry
	retryDelay time.Duration
	onError    ErrorHandler
}

// NewDispatcher wires a source and registry together. client is handed to
// every handler and may be nil in tests.
func NewDispatcher(client *api.Client, source *EventSource, registry *Registry) *Dispatcher {
	return &Dispatcher{
		client:   client,
		source:   source,
		registry: registry,
	}
}

// SetRetryDelay sets the pause after a failed fetch. Zero retries at once.
func (d *Dispatcher) SetRetryDelay(delay time.Duration) {
	d.retryDelay = delay
}

// SetErrorHandler installs a hook called after a handler panic is recovered
func (d *Dispatcher) SetErrorHandler(fn ErrorHandler) {
	d.onError = fn
}

// Run polls until ctx is cancelled and returns nil then. Fetch failures are
// logged and treated as an empty batch. A batch that was fetched is always
// dispatched in full, since the cursor has already moved past it.
func (d *Dispatcher) Run(ctx context.Context) error {
	logger.WithFields(logrus.Fields{
		"cursor":    d.source.Cursor(),
		"poll_time": d.source.PollTime(),
	}).Info("dispatch-loop-started")

	for {
		if ctx.Err() != nil {
			logger.WithField("cursor", d.source.Cursor()).Info("dispatch-loop-stopped")
			return nil
		}

		events, err := d.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.WithFields(logrus.Fields{
				"cursor": d.source.Cursor(),
				"error":  err,
			}).Error("failed-to-fetch-events")
			d.wait(ctx)
			continue
		}

		for _, event := range events {
			d.DispatchEvent(event)
		}
	}
}

func (d *Dispatcher) wait(ctx context.Context) {
	if d.retryDelay <= 0 {
		return
	}
	timer := time.NewTimer(d.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// DispatchEvent runs the handlers matching event, one after another in
// registration order. It reports whether any handler ran.
func (d *Dispatcher) DispatchEvent(event api.Event) bool {
	key, handlers := d.registry.Resolve(event)
	if len(handlers) == 0 {
		logger.WithFields(logrus.Fields{
			"event_id": event.ID,
			"type":     event.Type,
		}).Debug("event-dropped-no-handler")
		return false
	}

	logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"type":     event.Type,
		"key":      key,
		"handlers": len(handlers),
	}).Debug("dispatching-event")

	for _, h := range handlers {
		d.invoke(h, event)
	}
	return true
}

// invoke calls one handler, turning a panic into a logged error
func (d *Dispatcher) invoke(h HandlerFunc, event api.Event) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("handler panic: %v", r)
		logger.WithFields(logrus.Fields{
			"event_id": event.ID,
			"type":     event.Type,
			"panic":    r,
			"stack":    string(debug.Stack()),
		}).Error("handler-panic-recovered")
		if d.onError != nil {
			d.onError(event, err)
		}
	}()

	h(d.client, event)
}
