package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

// SSEClient is one open event stream for a traveler.
type SSEClient struct {
	ID         uuid.UUID
	TravelerID string
	Channels   map[string]bool
	Outbound   chan SSEMessage
	done       chan struct{}
	Logger     *logger.Logger
}
