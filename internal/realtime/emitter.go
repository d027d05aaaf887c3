package realtime

import (
	"context"
)

// Publisher delivers an event to subscribers of its channel.
type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage) error
}

// ChannelFor is the stream channel carrying a traveler's notifications.
func ChannelFor(travelerID string) string { return "traveler:" + travelerID }
