package bus

import (
	"context"

	"github.com/yungbote/voyagerverse-backend/internal/realtime"
)

// Bus fans realtime events out across service instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
