package consumer

import (
	"github.com/wiederlebendig/lead-attribution-service/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into events
type MessageParser interface {
	Parse(body []byte) (*domain.Event, error)
}
