package sami

import (
	"sync"

	"github.com/google/uuid"
)

// MockNetwork implements the Network interface for tests. It records
// what the core asked it to deliver instead of touching any socket.
type MockNetwork struct {
	id      uuid.UUID
	sendErr error

	lock        sync.Mutex
	sent        []OutboundEntry
	broadcasted []*Request
}

func NewMockNetwork() *MockNetwork {
	return &MockNetwork{id: uuid.New()}
}

// FailSendsWith makes every subsequent Send return err.
func (m *MockNetwork) FailSendsWith(err error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.sendErr = err
}

func (m *MockNetwork) ID() uuid.UUID {
	return m.id
}

func (m *MockNetwork) Send(request *Request, contact Contact) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, OutboundEntry{Network: m, Request: request, Contact: contact})
	return nil
}

func (m *MockNetwork) Broadcast(request *Request) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.broadcasted = append(m.broadcasted, request)
	return nil
}

func (m *MockNetwork) SentRecords() []OutboundEntry {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]OutboundEntry{}, m.sent...)
}

func (m *MockNetwork) BroadcastedRequests() []*Request {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]*Request{}, m.broadcasted...)
}
