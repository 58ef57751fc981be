package delivery

import (
	"time"

	"github.com/google/uuid"
)

// Message is one rendered entry addressed to one destination.
type Message struct {
	ID            string
	DestinationID string
	Text          string
	FeedURL       string
	Link          string
	EnqueuedAt    time.Time
}

func NewMessage(destinationID, text, feedURL, link string) Message {
	return Message{
		ID:            uuid.NewString(),
		DestinationID: destinationID,
		Text:          text,
		FeedURL:       feedURL,
		Link:          link,
		EnqueuedAt:    time.Now(),
	}
}
