package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/stream"
	"github.com/unations/matchengine/pkg/logger"
)

// FeedHandler serves the live opportunity feed over WebSocket. Each
// connection registers its own dispatcher subscriptions; matches arrive
// as JSON frames on the socket, and every subscription a connection
// created is removed when the connection drops.
type FeedHandler struct {
	dispatcher *stream.Dispatcher
	upgrader   websocket.Upgrader
	logger     *logger.Logger
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(dispatcher *stream.Dispatcher, log *logger.Logger) *FeedHandler {
	return &FeedHandler{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: log,
	}
}

// feedClientMsg is one control frame from the feed client.
type feedClientMsg struct {
	Type           string         `json:"type"` // subscribe | pause | resume | unsubscribe | ping
	SubscriptionID string         `json:"subscription_id,omitempty"`
	Filter         *stream.Filter `json:"filter,omitempty"`
}

// feedFrame is one frame sent to the feed client.
type feedFrame struct {
	Type           string                 `json:"type"`
	SubscriptionID string                 `json:"subscription_id,omitempty"`
	Opportunity    *contracts.Opportunity `json:"opportunity,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

// Serve upgrades the connection and runs the feed protocol until the
// client disconnects
// GET /api/v1/feed
func (h *FeedHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Feed upgrade failed")
		return
	}
	defer conn.Close()

	// Delivery callbacks run on dispatcher goroutines; gorilla allows only
	// one concurrent writer per connection.
	var writeMu sync.Mutex
	writeFrame := func(frame feedFrame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(frame)
	}

	owned := make(map[string]struct{})
	defer func() {
		for id := range owned {
			_ = h.dispatcher.Unsubscribe(id)
		}
		h.logger.WithField("subscriptions", len(owned)).Debug("Feed connection closed")
	}()

	for {
		var msg feedClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "subscribe":
			h.subscribe(msg, owned, writeFrame)
		case "pause":
			h.ackTransition(msg.SubscriptionID, "paused", h.dispatcher.Pause, writeFrame)
		case "resume":
			h.ackTransition(msg.SubscriptionID, "resumed", h.dispatcher.Resume, writeFrame)
		case "unsubscribe":
			if err := h.dispatcher.Unsubscribe(msg.SubscriptionID); err != nil {
				_ = writeFrame(feedFrame{Type: "error", SubscriptionID: msg.SubscriptionID, Error: err.Error()})
				continue
			}
			delete(owned, msg.SubscriptionID)
			_ = writeFrame(feedFrame{Type: "unsubscribed", SubscriptionID: msg.SubscriptionID})
		case "ping":
			_ = writeFrame(feedFrame{Type: "pong"})
		default:
			_ = writeFrame(feedFrame{Type: "error", Error: "unknown message type: " + msg.Type})
		}
	}
}

func (h *FeedHandler) subscribe(msg feedClientMsg, owned map[string]struct{}, writeFrame func(feedFrame) error) {
	var filter stream.Filter
	if msg.Filter != nil {
		filter = *msg.Filter
	}

	// The callback can fire as soon as the subscription registers, before
	// Subscribe returns; it waits for the id assignment below.
	ready := make(chan struct{})
	var sub *stream.Subscription

	cb := func(ctx context.Context, opp *contracts.Opportunity) error {
		<-ready
		return writeFrame(feedFrame{
			Type:           "opportunity",
			SubscriptionID: sub.ID,
			Opportunity:    opp,
		})
	}

	created, err := h.dispatcher.Subscribe(filter, cb)
	if err != nil {
		_ = writeFrame(feedFrame{Type: "error", Error: err.Error()})
		close(ready)
		return
	}
	sub = created
	close(ready)

	owned[sub.ID] = struct{}{}
	_ = writeFrame(feedFrame{Type: "subscribed", SubscriptionID: sub.ID})
}

func (h *FeedHandler) ackTransition(id, ack string, op func(string) error, writeFrame func(feedFrame) error) {
	if err := op(id); err != nil {
		_ = writeFrame(feedFrame{Type: "error", SubscriptionID: id, Error: err.Error()})
		return
	}
	_ = writeFrame(feedFrame{Type: ack, SubscriptionID: id})
}
