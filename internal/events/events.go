package events

import (
	"encoding/json"
	"time"
)

// Event types published on the hub.
const (
	TypePing           = "ping"
	TypeSearchProgress = "search_progress"
	TypeSearchDone     = "search_done"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	SearchKey string          `json:"search_key,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(searchKey, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   1,
		At:        time.Now().UTC(),
		SearchKey: searchKey,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
