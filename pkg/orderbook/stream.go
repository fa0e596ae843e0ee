package orderbook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	heartbeatInterval = 30 * time.Second

	actionHeartbeat   = "HEARTBEAT"
	actionSubscribe   = "SUBSCRIBE"
	actionUnsubscribe = "UNSUBSCRIBE"

	// ChannelOrderUpdate streams resting-order lifecycle events
	// (posted, partially filled, filled, cancelled, expired).
	ChannelOrderUpdate = "orderbook.order.update"
)

// OrderEvent is a live update about one resting order.
type OrderEvent struct {
	Channel    string      `json:"channel"`
	UpdateType string      `json:"updateType"`
	NFTTokenID string      `json:"nftTokenId"`
	Order      OrderRecord `json:"order"`
}

type subscribeMessage struct {
	Action     string `json:"action"`
	Channel    string `json:"channel"`
	ChainID    string `json:"chainId"`
	NFTTokenID string `json:"nftTokenId"`
}

type heartbeatMessage struct {
	Action string `json:"action"`
}

// Stream is a live websocket subscription to the orderbook service. Events
// arrive on Events until the stream is closed or the connection drops.
type Stream struct {
	conn   *websocket.Conn
	events chan OrderEvent

	// writeMu serializes writes; gorilla/websocket supports only one
	// concurrent writer per connection.
	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// Subscribe opens a websocket connection to the orderbook service and
// subscribes to order updates for the given credit token id. The service URL
// is derived from the client's HTTP base URL.
func (c *Client) Subscribe(ctx context.Context, serviceURL string, tokenID string) (*Stream, error) {
	wsURL, err := websocketURL(serviceURL)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial orderbook stream: %w", err)
	}

	msg := subscribeMessage{
		Action:     actionSubscribe,
		Channel:    ChannelOrderUpdate,
		ChainID:    strconv.FormatInt(c.chainID, 10),
		NFTTokenID: tokenID,
	}
	if err := conn.WriteJSON(msg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	s := &Stream{
		conn:   conn,
		events: make(chan OrderEvent, 16),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	go s.heartbeatLoop()
	return s, nil
}

// Events returns the channel order updates are delivered on. It is closed
// when the stream ends.
func (s *Stream) Events() <-chan OrderEvent {
	return s.events
}

// Close terminates the subscription and the underlying connection.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.writeJSON(heartbeatMessage{Action: actionUnsubscribe})
		err = s.conn.Close()
	})
	return err
}

func (s *Stream) writeJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *Stream) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				zap.L().Warn("orderbook stream closed", zap.Error(err))
			}
			return
		}

		var event OrderEvent
		if err := json.Unmarshal(data, &event); err != nil {
			zap.L().Debug("skipping unparseable stream message", zap.Error(err))
			continue
		}
		if event.Channel != ChannelOrderUpdate {
			continue
		}

		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}
}

func (s *Stream) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.writeJSON(heartbeatMessage{Action: actionHeartbeat}); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func websocketURL(serviceURL string) (string, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return "", fmt.Errorf("parse service URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}
