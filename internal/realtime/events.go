package realtime

import (
	"context"
	"encoding/json"
)

// clientEvent mirrors the envelope client->server messages arrive in;
// ID lets the client correlate the ack this handler writes back.
type clientEvent struct {
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ack struct {
	ID      string      `json:"id"`
	Event   string      `json:"event"`
	OK      bool        `json:"ok"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NotificationActions is the subset of notify.Service the hub drives
// in response to client->server events, kept as a narrow interface so
// this package does not need to import the notify package's full
// surface.
type NotificationActions interface {
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

// SetNotificationActions wires the handler for
// notification:getUnreadCount / notification:markRead /
// notification:markAllRead client events. Until this is called those
// events are acked with an error, which only happens if main.go wires
// the hub before the notification service exists.
func (h *Hub) SetNotificationActions(actions NotificationActions) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = actions
}

func (h *Hub) handleClientEvent(c *connection, raw []byte) {
	var evt clientEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return
	}

	ctx := context.Background()
	a := h.notificationActions()
	if a == nil {
		h.sendAck(c, ack{ID: evt.ID, Event: evt.Event, OK: false, Error: "notification service unavailable"})
		return
	}

	switch evt.Event {
	case "notification:getUnreadCount":
		count, err := a.UnreadCount(ctx, c.userID)
		if err != nil {
			h.sendAck(c, ack{ID: evt.ID, Event: evt.Event, OK: false, Error: err.Error()})
			return
		}
		h.sendAck(c, ack{ID: evt.ID, Event: evt.Event, OK: true, Payload: count})

	case "notification:markRead":
		var body struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(evt.Data, &body)
		if err := a.MarkRead(ctx, body.ID, c.userID); err != nil {
			h.sendAck(c, ack{ID: evt.ID, Event: evt.Event, OK: false, Error: err.Error()})
			return
		}
		h.sendAck(c, ack{ID: evt.ID, Event: evt.Event, OK: true})

	case "notification:markAllRead":
		if err := a.MarkAllRead(ctx, c.userID); err != nil {
			h.sendAck(c, ack{ID: evt.ID, Event: evt.Event, OK: false, Error: err.Error()})
			return
		}
		h.sendAck(c, ack{ID: evt.ID, Event: evt.Event, OK: true})
	}
}

func (h *Hub) sendAck(c *connection, a ack) {
	select {
	case c.send <- outgoing{Event: "ack", Payload: a}:
	default:
	}
}

func (h *Hub) notificationActions() NotificationActions {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.notifications
}
