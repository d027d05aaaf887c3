package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/ai"
	"github.com/yungbote/voyagerverse-backend/internal/contextstore"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/itinerary"
	"github.com/yungbote/voyagerverse-backend/internal/notify"
	"github.com/yungbote/voyagerverse-backend/internal/observability"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

// DefaultMaxSessions bounds how many travelers one process tracks.
const DefaultMaxSessions = 10000

var (
	ErrUnknownTraveler = errors.New("unknown traveler")
	ErrTooManySessions = errors.New("session limit reached")
)

type Config struct {
	ConfidenceThreshold    float64
	WeatherInterval        time.Duration
	ReflectionInterval     time.Duration
	DecisionHistoryLimit   int
	PreferenceHistoryLimit int
	City                   string
	MaxSessions            int
	Now                    func() time.Time
	// NewRand seeds each session's random source.
	NewRand func() *rand.Rand
}

// Deps are shared by every session.
type Deps struct {
	Collaborators ai.Collaborators
	Weather       contextstore.WeatherProvider
	Itineraries   *itinerary.Store
	Notifications *notify.Pipeline
}

// Registry hands out one Session per traveler id, creating it on first
// write. Reads go through Lookup and never create a session.
type Registry struct {
	log  *logger.Logger
	cfg  Config
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(log *logger.Logger, cfg Config, deps Deps) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewRand == nil {
		now := cfg.Now
		cfg.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(now().UnixNano())) }
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if deps.Itineraries == nil {
		deps.Itineraries = itinerary.NewStore()
	}
	if deps.Notifications == nil {
		deps.Notifications = notify.New(log, notify.Config{Now: cfg.Now})
	}
	return &Registry{
		log:      log.With("service", "SessionRegistry"),
		cfg:      cfg,
		deps:     deps,
		sessions: map[string]*Session{},
	}
}

// Open returns the traveler's session, creating it if needed. A new
// traveler is refused once MaxSessions sessions exist.
func (r *Registry) Open(travelerID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[travelerID]; ok {
		return s, nil
	}
	if len(r.sessions) >= r.cfg.MaxSessions {
		r.log.Warn("Session limit reached", "traveler_id", travelerID, "limit", r.cfg.MaxSessions)
		return nil, fmt.Errorf("traveler %s: %w", travelerID, ErrTooManySessions)
	}
	s := newSession(r.log, travelerID, r.cfg, r.deps)
	r.sessions[travelerID] = s
	observability.Current().SetSessions(len(r.sessions))
	r.log.Info("Session created", "traveler_id", travelerID)
	return s, nil
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(travelerID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[travelerID]
	return s, ok
}

func (r *Registry) TravelerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) Notifications() *notify.Pipeline { return r.deps.Notifications }

func (r *Registry) Itineraries() *itinerary.Store { return r.deps.Itineraries }

// Respond routes a traveler's answer to the session that owns the
// notification.
func (r *Registry) Respond(ctx context.Context, notificationID string, approved bool) (travel.Notification, error) {
	n, err := r.deps.Notifications.Get(notificationID)
	if err != nil {
		return travel.Notification{}, err
	}
	s, ok := r.Lookup(n.TravelerID)
	if !ok {
		return travel.Notification{}, fmt.Errorf("traveler %s has no session: %w", n.TravelerID, notify.ErrNotFound)
	}
	return s.Respond(ctx, notificationID, approved)
}

// RefreshAll runs a weather refresh pass for every known traveler.
func (r *Registry) RefreshAll(ctx context.Context, force bool) []RefreshResult {
	var out []RefreshResult
	for _, id := range r.TravelerIDs() {
		s, ok := r.Lookup(id)
		if !ok {
			continue
		}
		out = append(out, s.RefreshWeather(ctx, force))
	}
	return out
}
