package fedapay

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

// ParseEvent decodes a webhook body. Bodies without the {name, entity}
// envelope are read as a bare transaction.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.Entity.ID == "" {
		var bare Transaction
		if err := json.Unmarshal(body, &bare); err == nil && bare.ID != "" {
			ev.Entity = bare
		}
	}
	if ev.Entity.ID == "" {
		return nil, fmt.Errorf("%w: transaction id missing", ErrMalformedEvent)
	}
	return &ev, nil
}
