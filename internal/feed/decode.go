package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"yieldScope/internal/model"
)

// ErrUnrecognizedFeed is returned when a payload is neither a pool array, an
// envelope with a pools/data array, nor JSON lines.
var ErrUnrecognizedFeed = errors.New("unrecognized pool feed")

// DecodePools decodes a feed payload. Array elements that are not objects are
// skipped; fields inside objects decode permissively.
func DecodePools(data []byte) ([]model.RawPool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrUnrecognizedFeed
	}

	switch trimmed[0] {
	case '[':
		return decodeArray(trimmed)
	case '{':
		var envelope struct {
			Pools json.RawMessage `json:"pools"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			if inner := bytes.TrimSpace(envelope.Pools); len(inner) > 0 && inner[0] == '[' {
				return decodeArray(inner)
			}
			if inner := bytes.TrimSpace(envelope.Data); len(inner) > 0 && inner[0] == '[' {
				return decodeArray(inner)
			}
		}
		return decodeLines(trimmed)
	default:
		return nil, ErrUnrecognizedFeed
	}
}

func decodeArray(data []byte) ([]model.RawPool, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFeed, err)
	}

	pools := make([]model.RawPool, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var pool model.RawPool
		if err := json.Unmarshal(item, &pool); err != nil {
			continue
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

// decodeLines reads a stream of concatenated objects, which covers JSONL.
func decodeLines(data []byte) ([]model.RawPool, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	pools := make([]model.RawPool, 0)
	for {
		var pool model.RawPool
		err := dec.Decode(&pool)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFeed, err)
		}
		pools = append(pools, pool)
	}
	return pools, nil
}
