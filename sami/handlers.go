package sami

import (
	"bytes"
	"encoding/json"
	"sync"
)

// RequestHandlerFunc is an application callback invoked for an admitted
// request. Whatever the request means past this point is not this
// core's business.
type RequestHandlerFunc func(request *Request, fromAddress string)

// RequestsHandler turns raw inbound bytes into admitted requests:
// decode, structural check, trust check, duplicate check, store, route.
// Everything failing on the way is dropped, never raised.
type RequestsHandler struct {
	cfg      Configs
	store    *RawRequests
	networks *Networks

	handlersLock sync.RWMutex
	handlers     map[string]RequestHandlerFunc
}

func NewRequestsHandler(cfg Configs, store *RawRequests, networks *Networks) *RequestsHandler {
	return &RequestsHandler{
		cfg:      cfg,
		store:    store,
		networks: networks,
		handlers: make(map[string]RequestHandlerFunc),
	}
}

// RegisterStatusHandler wires the application callback for one status.
func (h *RequestsHandler) RegisterStatusHandler(status string, fn RequestHandlerFunc) {
	h.handlersLock.Lock()
	defer h.handlersLock.Unlock()
	h.handlers[status] = fn
}

// HandleRawRequest takes one raw request off the wire and routes it if
// it survives every gate.
func (h *RequestsHandler) HandleRawRequest(rawRequest []byte, fromAddress string) {
	decoder := json.NewDecoder(bytes.NewReader(rawRequest))
	decoder.UseNumber()
	dic := make(map[string]any)
	if err := decoder.Decode(&dic); err != nil {
		logDroppedRequest("RequestsHandler", fromAddress, "not a JSON mapping")
		return
	}
	h.handleDict(dic, fromAddress)
}

func (h *RequestsHandler) handleDict(dic map[string]any, fromAddress string) {
	if !IsValidRequest(dic) {
		logDroppedRequest("RequestsHandler", fromAddress, "malformed request envelope")
		return
	}
	request := RequestFromDict(dic)
	if request == nil {
		logDroppedRequest("RequestsHandler", fromAddress, "malformed request envelope")
		return
	}
	if !h.admit(dic, request) {
		logDroppedRequest("RequestsHandler", fromAddress, "failed trust checks for status "+request.Status)
		return
	}

	id, err := request.GetID()
	if err != nil {
		logError("RequestsHandler", err, "failed to derive request id")
		return
	}
	known, err := h.store.IsRequestKnown(id)
	if err != nil {
		logError("RequestsHandler", err, "failed to check request "+id)
		return
	}
	if known {
		return
	}
	if err := h.store.AddNewRawRequest(request); err != nil {
		logError("RequestsHandler", err, "failed to store request "+id)
		return
	}

	if request.Status == StatusWUPRep {
		// A what's-up reply wraps a request we missed; route the inner
		// one through the same gates. Recursion is bounded by the
		// document's own nesting depth.
		h.handleDict(request.Data, fromAddress)
		return
	}
	h.route(request, fromAddress)
}

// admit runs the per-status structural and cryptographic gates.
// Unknown statuses are not admissible.
func (h *RequestsHandler) admit(dic map[string]any, request *Request) bool {
	structName := requestStructureNameForStatus(request.Status)
	if structName == "" {
		return false
	}
	if !ValidateFields(dic, StructureMapping(structName)) {
		return false
	}

	switch request.Status {
	case StatusBCP:
		_, ok := ContactFromData(request.Data, h.cfg.ContactDelimiter)
		return ok
	case StatusDNP, StatusDCP, StatusWUPIni:
		_, ok := ContactFromData(request.Data["author"].(map[string]any), h.cfg.ContactDelimiter)
		return ok
	case StatusNPP:
		return IsValidNode(request.Data, h.cfg.RSAKeysLength)
	case StatusMPP:
		return IsValidReceivedMessage(request.Data, h.cfg.RSAKeysLength)
	case StatusKEP:
		author, ok := NodeProfileFromData(request.Data["author"].(map[string]any), h.cfg.RSAKeysLength)
		if !ok {
			return false
		}
		if !IsValidNode(request.Data["recipient"].(map[string]any), h.cfg.RSAKeysLength) {
			return false
		}
		return VerifyReceivedAESKey(request.Data["key"].(map[string]any), author.PublicKey)
	case StatusWUPRep:
		// The inner request is validated when it is routed.
		return true
	default:
		return false
	}
}

func (h *RequestsHandler) route(request *Request, fromAddress string) {
	h.handlersLock.RLock()
	fn, found := h.handlers[request.Status]
	h.handlersLock.RUnlock()
	if !found {
		return
	}
	fn(request, fromAddress)
}
