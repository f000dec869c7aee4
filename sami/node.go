package sami

import (
	"context"
	"crypto/rsa"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const PURGE_SCHEDULE time.Duration = 1 * time.Hour

// Node is the running core: configuration, the trust-gated request
// handler, the dispatch workers and the housekeeping jobs.
type Node struct {
	v   *viper.Viper
	cfg Configs

	networks    *Networks
	rawRequests *RawRequests
	handler     *RequestsHandler
	jobs        *Jobs
	ownContact  Contact

	privateKey *rsa.PrivateKey
	keyLock    sync.RWMutex

	httpServer *http.Server
	cancel     context.CancelFunc
	startTime  time.Time
}

// NewNode wires a node from the passed config file. Pass "" to run on
// defaults and environment variables only.
func NewNode(configFile string) (*Node, error) {
	v, err := initViper(configFile)
	if err != nil {
		return nil, err
	}
	cfg := initConfigs(v)

	rawRequests, err := NewRawRequests(filepath.Join(cfg.DatabasesDirectory, "raw_requests"))
	if err != nil {
		return nil, err
	}

	networks := NewNetworks()
	node := &Node{
		v:           v,
		cfg:         cfg,
		networks:    networks,
		rawRequests: rawRequests,
		handler:     NewRequestsHandler(cfg, rawRequests, networks),
		ownContact:  Contact{Address: cfg.OwnAddress},
	}

	node.jobs = NewJobs([]*Job{
		NewJob("broadcast-contact", node.broadcastContactInfo, cfg.BroadcastSchedule),
		NewJob("discover-contacts", node.requestContacts, cfg.ContactDiscoverySchedule),
		NewJob("discover-nodes", node.requestNodes, cfg.NodesDiscoverySchedule),
		NewJob("purge-raw-requests", node.purgeRawRequests, PURGE_SCHEDULE),
	}, cfg.PollInterval)

	if cfg.PrivateKeyFile != "" {
		privateKey, err := ImportRSAPrivateKeyFromFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, err
		}
		node.LoadPrivateKey(privateKey)
	}

	return node, nil
}

// Start launches the two dispatch workers, the job scheduler and the
// local HTTP API. It returns immediately.
func (node *Node) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	node.cancel = cancel
	node.startTime = time.Now()

	go node.requestHandlingWorker(ctx)
	go node.senderWorker(ctx)
	go node.jobs.Run(ctx)

	node.httpServer = node.initHTTPServer()
	go func() {
		if err := node.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logError("Node", err, "HTTP server failed to listen and serve")
		}
	}()

	logMsg("Node", "started at "+node.ownContact.Address)
}

// Stop signals every worker and releases the store. Queue items still
// in flight are dropped.
func (node *Node) Stop() {
	if node.cancel != nil {
		node.cancel()
	}
	if node.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := node.httpServer.Shutdown(ctx); err != nil {
			logError("Node", err, "HTTP server shutdown")
		}
	}
	if err := node.rawRequests.Close(); err != nil {
		logError("Node", err, "failed to close raw requests store")
	}
	logMsg("Node", "stopped")
}

// LoadPrivateKey makes the node's identity available. The request
// handling worker blocks until this happens.
func (node *Node) LoadPrivateKey(privateKey *rsa.PrivateKey) {
	node.keyLock.Lock()
	defer node.keyLock.Unlock()
	node.privateKey = privateKey
}

func (node *Node) IsPrivateKeyLoaded() bool {
	node.keyLock.RLock()
	defer node.keyLock.RUnlock()
	return node.privateKey != nil
}

func (node *Node) Networks() *Networks {
	return node.networks
}

func (node *Node) Handler() *RequestsHandler {
	return node.handler
}

func (node *Node) RawRequests() *RawRequests {
	return node.rawRequests
}

// job actions
// ==========================================

func (node *Node) broadcastContactInfo() error {
	request, err := NewBroadcastContactRequest(node.ownContact)
	if err != nil {
		return err
	}
	node.broadcast(request)
	return nil
}

func (node *Node) requestContacts() error {
	request, err := NewDiscoverContactsRequest(node.ownContact)
	if err != nil {
		return err
	}
	node.broadcast(request)
	return nil
}

func (node *Node) requestNodes() error {
	request, err := NewDiscoverNodesRequest(node.ownContact)
	if err != nil {
		return err
	}
	node.broadcast(request)
	return nil
}

func (node *Node) purgeRawRequests() error {
	return node.rawRequests.PurgeOldest(node.cfg.MaxRequestLifespan)
}

func (node *Node) broadcast(request *Request) {
	node.networks.Map(func(network Network) {
		if err := network.Broadcast(request); err != nil {
			logError("Node", err, "failed to broadcast request")
		}
	})
}
