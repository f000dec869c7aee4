package sami

import (
	"encoding/json"
	"time"
)

// Request statuses understood by the router. The status names are wire
// protocol, inherited from the sami network.
const (
	StatusBCP    string = "BCP"     // broadcast contact
	StatusKEP    string = "KEP"     // AES key exchange
	StatusNPP    string = "NPP"     // node information propagation
	StatusMPP    string = "MPP"     // message propagation
	StatusDNP    string = "DNP"     // discover nodes
	StatusDCP    string = "DCP"     // discover contacts
	StatusWUPIni string = "WUP_INI" // what's up, initiation
	StatusWUPRep string = "WUP_REP" // what's up, reply
)

// requestStructureNameForStatus maps a status to its dedicated request
// structure. Empty string means only the standard envelope applies.
func requestStructureNameForStatus(status string) string {
	switch status {
	case StatusBCP:
		return "bcp_request_structure"
	case StatusKEP:
		return "kep_request_structure"
	case StatusNPP:
		return "npp_request_structure"
	case StatusMPP:
		return "mpp_request_structure"
	case StatusDNP, StatusDCP:
		return "dp_request_structure"
	case StatusWUPIni:
		return "wup_ini_request_structure"
	case StatusWUPRep:
		return "wup_rep_request_structure"
	default:
		return ""
	}
}

// Request is the standard envelope every sami exchange travels in.
type Request struct {
	Status    string
	Data      map[string]any
	Timestamp int64
}

func NewRequest(status string, data map[string]any) *Request {
	return &Request{
		Status:    status,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

// RequestFromDict returns a Request from wire data if it is valid,
// nil otherwise.
func RequestFromDict(reqData map[string]any) *Request {
	if !IsValidRequest(reqData) {
		return nil
	}
	timestamp, ok := asBigInt(reqData["timestamp"])
	if !ok || !timestamp.IsInt64() {
		return nil
	}
	return &Request{
		Status:    reqData["status"].(string),
		Data:      reqData["data"].(map[string]any),
		Timestamp: timestamp.Int64(),
	}
}

var exportStandardRequest = MustExportValidator("request_standard_structure")

// ToDict returns the Request as a mapping, validated on the way out.
func (r *Request) ToDict() (map[string]any, error) {
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().Unix()
	}
	return exportStandardRequest(map[string]any{
		"status":    r.Status,
		"data":      r.Data,
		"timestamp": r.Timestamp,
	})
}

func (r *Request) ToJSON() ([]byte, error) {
	dic, err := r.ToDict()
	if err != nil {
		return nil, err
	}
	return json.Marshal(dic)
}

// GetID derives this request's identifier: a truncated hex digest of
// its canonical JSON form. Used for duplicate detection.
func (r *Request) GetID() (string, error) {
	js, err := r.ToJSON()
	if err != nil {
		return "", err
	}
	return HexDigest(HashBytes(js))[:ID_LENGTH], nil
}

// Builders for the requests this core emits on its own schedule.

func NewBroadcastContactRequest(own Contact) (*Request, error) {
	dic, err := own.ToDict()
	if err != nil {
		return nil, err
	}
	return NewRequest(StatusBCP, dic), nil
}

func NewDiscoverNodesRequest(own Contact) (*Request, error) {
	dic, err := own.ToDict()
	if err != nil {
		return nil, err
	}
	return NewRequest(StatusDNP, map[string]any{"author": dic}), nil
}

func NewDiscoverContactsRequest(own Contact) (*Request, error) {
	dic, err := own.ToDict()
	if err != nil {
		return nil, err
	}
	return NewRequest(StatusDCP, map[string]any{"author": dic}), nil
}

func NewWhatsUpReplyRequest(inner map[string]any) *Request {
	return NewRequest(StatusWUPRep, inner)
}
