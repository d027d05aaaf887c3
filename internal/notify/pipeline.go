package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/observability"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/realtime"
)

var (
	ErrNotFound        = errors.New("notification not found")
	ErrAlreadyResolved = errors.New("notification already resolved")
)

const TitleItineraryChange = "Itinerary Update Suggested"

type Config struct {
	Publisher realtime.Publisher
	Now       func() time.Time
}

// Pipeline tracks itinerary-change notifications from proposal to the
// traveler's answer. It owns status transitions only; applying an approved
// change is left to the caller.
type Pipeline struct {
	log       *logger.Logger
	publisher realtime.Publisher
	now       func() time.Time

	mu    sync.RWMutex
	order []string
	byID  map[string]*travel.Notification
}

func New(log *logger.Logger, cfg Config) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{
		log:       log.With("service", "NotificationPipeline"),
		publisher: cfg.Publisher,
		now:       cfg.Now,
		byID:      map[string]*travel.Notification{},
	}
}

// Propose records a pending itinerary-change notification for rec.
func (p *Pipeline) Propose(ctx context.Context, travelerID string, rec travel.DecisionRecord, confidence float64, requiresApproval bool, message string) travel.Notification {
	n := travel.Notification{
		ID:               uuid.New().String(),
		TravelerID:       travelerID,
		Timestamp:        p.now(),
		Type:             travel.DecisionTypeItineraryChange,
		Title:            TitleItineraryChange,
		Message:          message,
		OriginalPlan:     rec.OriginalPlan.Clone(),
		NewPlan:          rec.NewPlan.Clone(),
		Confidence:       confidence,
		Status:           travel.NotificationPending,
		RequiresApproval: requiresApproval,
		DecisionID:       rec.ID,
	}

	p.mu.Lock()
	stored := n
	p.byID[n.ID] = &stored
	p.order = append(p.order, n.ID)
	p.mu.Unlock()

	p.log.Info("Notification proposed",
		"notification_id", n.ID,
		"traveler_id", travelerID,
		"decision_id", rec.ID,
		"confidence", confidence,
		"requires_approval", requiresApproval,
	)
	observability.Current().IncNotification(string(travel.NotificationPending))
	p.emit(ctx, realtime.SSEEventItineraryChangeProposed, n)
	return n
}

// Respond resolves a pending notification. Resolving one twice fails with
// ErrAlreadyResolved.
func (p *Pipeline) Respond(ctx context.Context, id string, approved bool) (travel.Notification, error) {
	p.mu.Lock()
	n, ok := p.byID[id]
	if !ok {
		p.mu.Unlock()
		return travel.Notification{}, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	if n.Status != travel.NotificationPending {
		out := *n
		p.mu.Unlock()
		return out, fmt.Errorf("notification %s is %s: %w", id, out.Status, ErrAlreadyResolved)
	}
	now := p.now()
	n.RespondedAt = &now
	n.Status = travel.NotificationRejected
	if approved {
		n.Status = travel.NotificationApproved
	}
	out := *n
	p.mu.Unlock()

	p.log.Info("Notification resolved",
		"notification_id", id,
		"traveler_id", out.TravelerID,
		"status", out.Status,
	)
	observability.Current().IncNotification(string(out.Status))
	p.emit(ctx, realtime.SSEEventItineraryChangeResolved, out)
	return out, nil
}

func (p *Pipeline) Get(id string) (travel.Notification, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.byID[id]
	if !ok {
		return travel.Notification{}, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return *n, nil
}

// List returns a traveler's notifications oldest first, optionally filtered
// by status.
func (p *Pipeline) List(travelerID string, status travel.NotificationStatus) []travel.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]travel.Notification, 0)
	for _, id := range p.order {
		n := p.byID[id]
		if n.TravelerID != travelerID {
			continue
		}
		if status != "" && n.Status != status {
			continue
		}
		out = append(out, *n)
	}
	return out
}

func (p *Pipeline) emit(ctx context.Context, event realtime.SSEEvent, n travel.Notification) {
	if p.publisher == nil {
		return
	}
	msg := realtime.SSEMessage{
		Channel: realtime.ChannelFor(n.TravelerID),
		Event:   event,
		Data:    map[string]any{"notification": n},
	}
	if err := p.publisher.Publish(ctx, msg); err != nil {
		p.log.Warn("Notification publish failed", "notification_id", n.ID, "event", event, "error", err)
	}
}
