package realtime

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Channel names match the pg_notify calls installed by database provisioning.
const (
	MessageEventsChannel      = "message_events"
	ConversationEventsChannel = "conversation_events"
)

// Notification is one raw change-stream item.
type Notification struct {
	Channel string
	Payload string
}

// Source is a stream of notifications for a set of channels. The bridge
// consumes this interface so delivery logic is testable without Postgres.
type Source interface {
	Notifications() <-chan Notification
	Close() error
}

// SourceFactory opens a new Source listening on the given channels. Each
// subscription gets its own source, mirroring one change stream per
// subscription.
type SourceFactory func(channels ...string) (Source, error)

type pqSource struct {
	listener *pq.Listener
	out      chan Notification
	done     chan struct{}
}

// NewPQSourceFactory builds sources backed by pq.Listener over a dedicated
// connection to conninfo. Reconnects are handled by the listener itself
// within the given interval window; delivery is therefore at-least-once but
// events can be missed while reconnecting, which the at-least-once contract
// already requires callers to tolerate.
func NewPQSourceFactory(conninfo string, minReconnect, maxReconnect time.Duration, logger *slog.Logger) SourceFactory {
	return func(channels ...string) (Source, error) {
		listener := pq.NewListener(conninfo, minReconnect, maxReconnect,
			func(ev pq.ListenerEventType, err error) {
				if err != nil {
					logger.Warn("listener connection event", "event", int(ev), "error", err)
				}
			})

		for _, ch := range channels {
			if err := listener.Listen(ch); err != nil {
				_ = listener.Close()
				return nil, fmt.Errorf("failed to listen on %s: %w", ch, err)
			}
		}

		s := &pqSource{
			listener: listener,
			out:      make(chan Notification, 64),
			done:     make(chan struct{}),
		}
		go s.pump()
		return s, nil
	}
}

func (s *pqSource) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case n, ok := <-s.listener.Notify:
			if !ok {
				return
			}
			// A nil notification signals a re-established connection.
			if n == nil {
				continue
			}
			select {
			case s.out <- Notification{Channel: n.Channel, Payload: n.Extra}:
			case <-s.done:
				return
			}
		}
	}
}

func (s *pqSource) Notifications() <-chan Notification {
	return s.out
}

func (s *pqSource) Close() error {
	close(s.done)
	return s.listener.Close()
}
