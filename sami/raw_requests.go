package sami

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

// RawRequests keeps every admitted request on disk, keyed by request ID.
// It backs duplicate detection and the what's-up catch-up protocol.
type RawRequests struct {
	db *leveldb.DB
}

func NewRawRequests(path string) (*RawRequests, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open raw requests db at %s", path)
	}
	return &RawRequests{db: db}, nil
}

func (r *RawRequests) Close() error {
	return r.db.Close()
}

// AddNewRawRequest stores the request unless it is already known.
// A duplicate is not an error; we simply received it twice.
func (r *RawRequests) AddNewRawRequest(request *Request) error {
	id, err := request.GetID()
	if err != nil {
		return err
	}
	known, err := r.IsRequestKnown(id)
	if err != nil {
		return err
	}
	if known {
		return nil
	}
	js, err := request.ToJSON()
	if err != nil {
		return err
	}
	if err := r.db.Put([]byte(id), js, nil); err != nil {
		return errors.Wrapf(err, "failed to store request %s", id)
	}
	return nil
}

func (r *RawRequests) IsRequestKnown(id string) (bool, error) {
	_, err := r.db.Get([]byte(id), nil)
	if err == leveldb.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to look up request %s", id)
	}
	return true, nil
}

// GetRawRequest returns the stored request with the passed ID, or nil
// when the ID is unknown.
func (r *RawRequests) GetRawRequest(id string) (map[string]any, error) {
	raw, err := r.db.Get([]byte(id), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read request %s", id)
	}
	return decodeStoredRequest(raw)
}

// GetAllRawRequests returns every stored request, keyed by ID.
func (r *RawRequests) GetAllRawRequests() (map[string]map[string]any, error) {
	all := make(map[string]map[string]any)
	iter := r.db.NewIterator(nil, nil)
	for iter.Next() {
		dic, err := decodeStoredRequest(iter.Value())
		if err != nil {
			iter.Release()
			return nil, err
		}
		all[string(iter.Key())] = dic
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate raw requests")
	}
	return all, nil
}

// GetAllRawRequestsSince returns every stored request whose timestamp is
// at or after the passed POSIX timestamp.
func (r *RawRequests) GetAllRawRequestsSince(timestamp int64) (map[string]map[string]any, error) {
	all, err := r.GetAllRawRequests()
	if err != nil {
		return nil, err
	}
	for id, dic := range all {
		ts, ok := asBigInt(dic["timestamp"])
		if !ok || !ts.IsInt64() || ts.Int64() < timestamp {
			delete(all, id)
		}
	}
	return all, nil
}

// PurgeOldest removes every request older than the passed lifespan.
func (r *RawRequests) PurgeOldest(lifespan time.Duration) error {
	deadline := time.Now().Add(-lifespan).Unix()
	batch := new(leveldb.Batch)
	iter := r.db.NewIterator(nil, nil)
	for iter.Next() {
		dic, err := decodeStoredRequest(iter.Value())
		if err != nil {
			continue
		}
		ts, ok := asBigInt(dic["timestamp"])
		if !ok || !ts.IsInt64() || ts.Int64() < deadline {
			batch.Delete(bytes.Clone(iter.Key()))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "failed to iterate raw requests")
	}
	if err := r.db.Write(batch, nil); err != nil {
		return errors.Wrap(err, "failed to purge raw requests")
	}
	return nil
}

func decodeStoredRequest(raw []byte) (map[string]any, error) {
	dic := make(map[string]any)
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&dic); err != nil {
		return nil, errors.Wrap(err, "failed to decode stored request")
	}
	return dic, nil
}
