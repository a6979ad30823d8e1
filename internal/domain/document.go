package domain

import (
	"encoding/json"
	"errors"
)

// ErrInvalidID is returned by a store when an identifier is not in its native format.
var ErrInvalidID = errors.New("invalid identifier")

// IDField is the JSON (and Mongo) name of a document identifier.
const IDField = "_id"

// decodeWithExtra decodes data into known and returns every top-level key
// that known does not declare.
func decodeWithExtra(data []byte, known any, knownKeys ...string) (map[string]any, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	delete(all, IDField)
	for _, k := range knownKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// encodeWithExtra encodes known and merges extra into it; declared fields win.
func encodeWithExtra(known any, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return json.Marshal(known)
	}
	raw, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	var merged map[string]any
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
