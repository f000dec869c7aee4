package sami

import (
	"sync"

	"github.com/google/uuid"
)

// Network is the transport boundary. Socket handling, interface
// enumeration and the actual wire format live behind it; this core only
// asks it to deliver requests.
type Network interface {
	ID() uuid.UUID
	// Send delivers one request to one contact. A transport failure is
	// reported, not fatal.
	Send(request *Request, contact Contact) error
	// Broadcast delivers one request to every transport peer.
	Broadcast(request *Request) error
}

// InboundEntry is what the network layer queues for the request
// handling worker.
type InboundEntry struct {
	RawRequest  []byte
	FromAddress string
}

// OutboundEntry is what application logic queues for the sender worker.
type OutboundEntry struct {
	Network Network
	Request *Request
	Contact Contact
}

// Networks registers the live transports and owns the two queues shared
// with the dispatch workers.
type Networks struct {
	networks map[uuid.UUID]Network
	lock     sync.RWMutex

	HandleQueue *Queue[InboundEntry]
	SendQueue   *Queue[OutboundEntry]
}

func NewNetworks() *Networks {
	return &Networks{
		networks:    make(map[uuid.UUID]Network),
		HandleQueue: NewQueue[InboundEntry](QUEUE_CAPACITY),
		SendQueue:   NewQueue[OutboundEntry](QUEUE_CAPACITY),
	}
}

func (ns *Networks) RegisterNetwork(network Network) {
	ns.lock.Lock()
	defer ns.lock.Unlock()
	ns.networks[network.ID()] = network
}

// Map runs process over every registered network.
func (ns *Networks) Map(process func(Network)) {
	ns.lock.RLock()
	defer ns.lock.RUnlock()
	for _, network := range ns.networks {
		process(network)
	}
}

func (ns *Networks) Size() int {
	ns.lock.RLock()
	defer ns.lock.RUnlock()
	return len(ns.networks)
}
