package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RecordID identifies a project within one result set. The backend emits it
// either as a JSON number or a string, so both are accepted.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid record id: %w", err)
		}
		*id = RecordID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid record id %s: %w", string(data), err)
	}
	*id = RecordID(n.String())
	return nil
}

func (id RecordID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id RecordID) String() string {
	return string(id)
}

// ProjectRecord is one finalized scrape result as served by GET /api/projects.
type ProjectRecord struct {
	ID           RecordID `json:"BUIDL ID"`
	DisplayName  *string  `json:"BUIDL name,omitempty"`
	Organization *string  `json:"Org,omitempty"`
	ProfileURL   *string  `json:"BUIDL profile,omitempty"`
}
