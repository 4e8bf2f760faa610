package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
)

// WSClient is a test WebSocket client
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	errors   chan error
	done     chan struct{}
	mu       sync.Mutex
}

// NewWSClient dials url and fails the test if the handshake does not succeed.
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := *gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			case c.errors <- err:
			default:
			}
			return
		}

		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		select {
		case c.messages <- &msg:
		case <-c.done:
			return
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

// Send writes a raw message of the given type.
func (c *WSClient) Send(msgType websocket.MessageType) {
	c.t.Helper()

	msg, err := websocket.NewMessage(msgType, nil)
	if err != nil {
		c.t.Fatalf("failed to build message: %v", err)
	}
	data, _ := json.Marshal(msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(gorillaWS.TextMessage, data); err != nil {
		c.t.Fatalf("failed to send message: %v", err)
	}
}

// SendRaw writes data as-is.
func (c *WSClient) SendRaw(data []byte) {
	c.t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(gorillaWS.TextMessage, data); err != nil {
		c.t.Fatalf("failed to send message: %v", err)
	}
}

// ExpectMessage waits for a message of the specified type, skipping others.
func (c *WSClient) ExpectMessage(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg := <-c.messages:
			if msg == nil {
				c.t.Fatalf("connection closed while waiting for %s", msgType)
			}
			if msg.Type == msgType {
				return msg
			}
		case err := <-c.errors:
			c.t.Fatalf("error while waiting for %s: %v", msgType, err)
		case <-deadline:
			c.t.Fatalf("timeout waiting for message type %s", msgType)
		}
	}
}

func (c *WSClient) ExpectWelcome(timeout time.Duration) *websocket.WelcomePayload {
	c.t.Helper()
	var payload websocket.WelcomePayload
	c.decode(c.ExpectMessage(websocket.MessageTypeWelcome, timeout), &payload)
	return &payload
}

func (c *WSClient) ExpectDataChanged(timeout time.Duration) *websocket.DataChangedPayload {
	c.t.Helper()
	var payload websocket.DataChangedPayload
	c.decode(c.ExpectMessage(websocket.MessageTypeDataChanged, timeout), &payload)
	return &payload
}

func (c *WSClient) ExpectAlert(timeout time.Duration) *websocket.AlertPayload {
	c.t.Helper()
	var payload websocket.AlertPayload
	c.decode(c.ExpectMessage(websocket.MessageTypeAlert, timeout), &payload)
	return &payload
}

func (c *WSClient) ExpectErrorWithCode(code string, timeout time.Duration) *websocket.ErrorPayload {
	c.t.Helper()
	var payload websocket.ErrorPayload
	c.decode(c.ExpectMessage(websocket.MessageTypeError, timeout), &payload)
	if payload.Code != code {
		c.t.Fatalf("expected error code %s, got %s", code, payload.Code)
	}
	return &payload
}

// ExpectNoMessage verifies nothing arrives within timeout.
func (c *WSClient) ExpectNoMessage(timeout time.Duration) {
	c.t.Helper()

	select {
	case msg := <-c.messages:
		if msg != nil {
			c.t.Fatalf("unexpected message received: %s", msg.Type)
		}
	case <-time.After(timeout):
	}
}

func (c *WSClient) decode(msg *websocket.Message, v interface{}) {
	c.t.Helper()
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		c.t.Fatalf("failed to decode %s payload: %v", msg.Type, err)
	}
}
