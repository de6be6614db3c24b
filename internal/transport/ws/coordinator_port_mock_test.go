package ws

import (
	"context"
	"sync"

	"github.com/heartmarshall/lexilens/internal/protocol"
)

// coordinatorPortMock is a moq-style mock of coordinatorPort.
type coordinatorPortMock struct {
	SendFunc func(ctx context.Context, msg protocol.Message) error
	AskFunc  func(ctx context.Context, msg protocol.Message) (protocol.Message, error)

	mu        sync.Mutex
	sendCalls []protocol.Message
	askCalls  []protocol.Message
}

func (m *coordinatorPortMock) Send(ctx context.Context, msg protocol.Message) error {
	m.mu.Lock()
	m.sendCalls = append(m.sendCalls, msg)
	m.mu.Unlock()
	if m.SendFunc == nil {
		return nil
	}
	return m.SendFunc(ctx, msg)
}

func (m *coordinatorPortMock) Ask(ctx context.Context, msg protocol.Message) (protocol.Message, error) {
	m.mu.Lock()
	m.askCalls = append(m.askCalls, msg)
	m.mu.Unlock()
	if m.AskFunc == nil {
		panic("coordinatorPortMock.AskFunc: method is nil but Ask was just called")
	}
	return m.AskFunc(ctx, msg)
}

func (m *coordinatorPortMock) SendCalls() []protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]protocol.Message(nil), m.sendCalls...)
}

func (m *coordinatorPortMock) AskCalls() []protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]protocol.Message(nil), m.askCalls...)
}
