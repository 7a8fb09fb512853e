package explore

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// stubToken is an mqtt.Token that is already complete.
type stubToken struct{ err error }

func (t stubToken) Wait() bool                     { return true }
func (t stubToken) WaitTimeout(time.Duration) bool { return true }
func (t stubToken) Error() error                   { return t.err }

func (t stubToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// MockClient is an in-memory mqtt.Client for tests: Subscribe registers
// handlers, Publish records messages, and SimulateMessage drives a
// registered handler as if the broker had delivered a payload.
type MockClient struct {
	mu        sync.RWMutex
	connected bool
	handlers  map[string]mqtt.MessageHandler
	published []PublishedMessage
}

// PublishedMessage records one Publish call made against the mock.
type PublishedMessage struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

func NewMockClient() *MockClient {
	return &MockClient{handlers: make(map[string]mqtt.MessageHandler)}
}

// SetConnected forces the connection state without going through Connect.
func (c *MockClient) SetConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = connected
}

// GetPublishedMessages returns a copy of every message published so far.
func (c *MockClient) GetPublishedMessages() []PublishedMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]PublishedMessage, len(c.published))
	copy(out, c.published)
	return out
}

// SimulateMessage delivers payload to the handler subscribed on topic.
// Messages on topics without a handler are dropped, as a broker would
// for an unsubscribed client.
func (c *MockClient) SimulateMessage(topic string, payload []byte) {
	c.mu.RLock()
	handler := c.handlers[topic]
	c.mu.RUnlock()

	if handler != nil {
		handler(c, &inboundMessage{topic: topic, payload: payload})
	}
}

func (c *MockClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *MockClient) IsConnectionOpen() bool { return c.IsConnected() }

func (c *MockClient) Connect() mqtt.Token {
	c.SetConnected(true)
	return stubToken{}
}

func (c *MockClient) Disconnect(quiesce uint) {
	c.SetConnected(false)
}

func (c *MockClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return stubToken{err: mqtt.ErrNotConnected}
	}

	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	}
	c.published = append(c.published, PublishedMessage{
		Topic:   topic,
		Payload: data,
		QoS:     qos,
		Retain:  retained,
	})
	return stubToken{}
}

func (c *MockClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return stubToken{err: mqtt.ErrNotConnected}
	}
	c.handlers[topic] = callback
	return stubToken{}
}

func (c *MockClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return stubToken{err: mqtt.ErrNotConnected}
	}
	for topic := range filters {
		c.handlers[topic] = callback
	}
	return stubToken{}
}

func (c *MockClient) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, topic := range topics {
		delete(c.handlers, topic)
	}
	return stubToken{}
}

func (c *MockClient) AddRoute(topic string, callback mqtt.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = callback
}

func (c *MockClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

// inboundMessage is the mqtt.Message handed to simulated subscribers.
type inboundMessage struct {
	topic   string
	payload []byte
}

func (m *inboundMessage) Duplicate() bool   { return false }
func (m *inboundMessage) Qos() byte         { return 0 }
func (m *inboundMessage) Retained() bool    { return false }
func (m *inboundMessage) Topic() string     { return m.topic }
func (m *inboundMessage) MessageID() uint16 { return 0 }
func (m *inboundMessage) Payload() []byte   { return m.payload }
func (m *inboundMessage) Ack()              {}
