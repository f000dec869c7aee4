package sami

import (
	"context"
	"time"
)

// workers
// ==========================================
//
// Two polling loops drain the shared queues. Both stop within one poll
// interval of ctx being cancelled; items still queued at that point are
// dropped.

// requestHandlingWorker drains the inbound queue into the
// RequestsHandler, one request at a time, FIFO. It refuses to start
// until the private key is loaded: nothing can be answered before that.
func (node *Node) requestHandlingWorker(ctx context.Context) {
	for !node.IsPrivateKeyLoaded() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(node.cfg.PrivateKeyWaitInterval):
		}
	}

	logMsg("requestHandlingWorker", "beginning requests handling")
	for {
		select {
		case <-ctx.Done():
			logMsg("requestHandlingWorker", "stopped")
			return
		default:
		}
		entry, found := node.networks.HandleQueue.TryPop()
		if !found {
			select {
			case <-ctx.Done():
				logMsg("requestHandlingWorker", "stopped")
				return
			case <-time.After(node.cfg.PollInterval):
			}
			continue
		}
		node.handler.HandleRawRequest(entry.RawRequest, entry.FromAddress)
	}
}

// senderWorker drains the outbound queue, delegating each entry to its
// network's send primitive. Transport failures are logged and the loop
// moves on.
func (node *Node) senderWorker(ctx context.Context) {
	logMsg("senderWorker", "beginning requests sending")
	for {
		select {
		case <-ctx.Done():
			logMsg("senderWorker", "stopped")
			return
		default:
		}
		entry, found := node.networks.SendQueue.TryPop()
		if !found {
			select {
			case <-ctx.Done():
				logMsg("senderWorker", "stopped")
				return
			case <-time.After(node.cfg.PollInterval):
			}
			continue
		}
		if err := entry.Network.Send(entry.Request, entry.Contact); err != nil {
			logError("senderWorker", err, "failed to send request to "+entry.Contact.Address)
		}
	}
}
