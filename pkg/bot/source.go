package bot

import (
	"context"
	"sync"
	"time"

	"github.com/keepmind9/icqbot/internal/logger"
	"github.com/keepmind9/icqbot/pkg/api"
	"github.com/keepmind9/icqbot/pkg/constants"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// EventFetcher is the long-poll endpoint an EventSource reads from.
// *api.Client implements it.
type EventFetcher interface {
	GetEvents(ctx context.Context, lastEventID int64, pollTime time.Duration) ([]api.RawEvent, error)
}

// EventSource fetches event batches and tracks the cursor, the id of the
// last event consumed. The cursor only moves forward.
type EventSource struct {
	fetcher  EventFetcher
	pollTime time.Duration

	mu     sync.Mutex
	cursor int64
}

// NewEventSource creates a source starting at the initial cursor
func NewEventSource(fetcher EventFetcher, pollTime time.Duration) *EventSource {
	if pollTime <= 0 {
		pollTime = constants.DefaultPollTime
	}
	return &EventSource{
		fetcher:  fetcher,
		pollTime: pollTime,
		cursor:   constants.InitialEventID,
	}
}

// Cursor returns the id of the last event consumed
func (s *EventSource) Cursor() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SetCursor resumes from id. Ids at or below the current cursor are ignored.
func (s *EventSource) SetCursor(id int64) {
	s.advance(id)
}

// PollTime is the longest the server may hold one fetch open
func (s *EventSource) PollTime() time.Duration {
	return s.pollTime
}

func (s *EventSource) advance(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id <= s.cursor {
		return false
	}
	s.cursor = id
	return true
}

// Fetch long-polls for events after the cursor and returns them decoded, in
// server order. On error the cursor is left alone.
//
// A non-empty batch moves the cursor to the last raw event's id, including
// events that failed to decode. Those are logged and left out of the result
// so one bad event never stalls the source.
func (s *EventSource) Fetch(ctx context.Context) ([]api.Event, error) {
	cursor := s.Cursor()

	raws, err := s.fetcher.GetEvents(ctx, cursor, s.pollTime)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch events after %d", cursor)
	}
	if len(raws) == 0 {
		return nil, nil
	}

	last := raws[len(raws)-1].EventID
	if s.advance(last) {
		logger.WithFields(logrus.Fields{
			"from":  cursor,
			"to":    last,
			"count": len(raws),
		}).Debug("event-cursor-advanced")
	}

	events := make([]api.Event, 0, len(raws))
	for _, raw := range raws {
		event, err := raw.Decode()
		if err != nil {
			logger.WithFields(logrus.Fields{
				"event_id": raw.EventID,
				"type":     raw.Type,
				"error":    err,
			}).Warn("skipping-undecodable-event")
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
