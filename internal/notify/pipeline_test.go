package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
	"github.com/yungbote/voyagerverse-backend/internal/realtime"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
	err  error
}

func (r *recordingPublisher) Publish(_ context.Context, msg realtime.SSEMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recordingPublisher) events() []realtime.SSEEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.SSEEvent, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Event
	}
	return out
}

var fixedNow = time.Date(2025, 4, 25, 14, 0, 0, 0, time.UTC)

func decisionRecord(id int) travel.DecisionRecord {
	return travel.DecisionRecord{
		ID:           id,
		Type:         travel.DecisionTypeItineraryChange,
		Reason:       travel.ReasonWeather,
		OriginalPlan: travel.Plan{Day: 3, Date: "2025-04-25", Activities: []travel.Activity{{Name: "Desert Safari"}}},
		NewPlan:      travel.Plan{Day: 3, Date: "2025-04-25", Activities: []travel.Activity{{Name: "Dubai Museum Cultural Tour"}}, IsModified: true},
	}
}

func newPipeline(pub realtime.Publisher) *Pipeline {
	return New(logger.Nop(), Config{Publisher: pub, Now: func() time.Time { return fixedNow }})
}

func TestProposeAndApprove(t *testing.T) {
	pub := &recordingPublisher{}
	p := newPipeline(pub)

	n := p.Propose(context.Background(), "tom", decisionRecord(1), 0.6, true, "too hot")
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, travel.NotificationPending, n.Status)
	assert.Equal(t, TitleItineraryChange, n.Title)
	assert.Equal(t, travel.DecisionTypeItineraryChange, n.Type)
	assert.Equal(t, 1, n.DecisionID)
	assert.True(t, n.RequiresApproval)
	assert.Equal(t, fixedNow, n.Timestamp)

	got, err := p.Respond(context.Background(), n.ID, true)
	require.NoError(t, err)
	assert.Equal(t, travel.NotificationApproved, got.Status)
	require.NotNil(t, got.RespondedAt)
	assert.Equal(t, fixedNow, *got.RespondedAt)

	assert.Equal(t, []realtime.SSEEvent{
		realtime.SSEEventItineraryChangeProposed,
		realtime.SSEEventItineraryChangeResolved,
	}, pub.events())
	assert.Equal(t, realtime.ChannelFor("tom"), pub.msgs[0].Channel)
}

func TestRespondTransitions(t *testing.T) {
	cases := []struct {
		name     string
		approved bool
		want     travel.NotificationStatus
	}{
		{name: "approve", approved: true, want: travel.NotificationApproved},
		{name: "reject", approved: false, want: travel.NotificationRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPipeline(nil)
			n := p.Propose(context.Background(), "tom", decisionRecord(1), 0.9, false, "")

			got, err := p.Respond(context.Background(), n.ID, tc.approved)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Status)

			_, err = p.Respond(context.Background(), n.ID, !tc.approved)
			assert.ErrorIs(t, err, ErrAlreadyResolved)
			stored, err := p.Get(n.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, stored.Status)
		})
	}
}

func TestRespondUnknown(t *testing.T) {
	p := newPipeline(nil)
	_, err := p.Respond(context.Background(), "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByTravelerAndStatus(t *testing.T) {
	p := newPipeline(nil)
	a := p.Propose(context.Background(), "tom", decisionRecord(1), 0.5, true, "")
	p.Propose(context.Background(), "tom", decisionRecord(2), 0.5, true, "")
	p.Propose(context.Background(), "priya", decisionRecord(3), 0.5, true, "")
	_, err := p.Respond(context.Background(), a.ID, false)
	require.NoError(t, err)

	assert.Len(t, p.List("tom", ""), 2)
	assert.Len(t, p.List("tom", travel.NotificationPending), 1)
	rejected := p.List("tom", travel.NotificationRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, a.ID, rejected[0].ID)
	assert.Empty(t, p.List("nobody", ""))
}

func TestPublishFailureDoesNotBlockTransition(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	p := newPipeline(pub)
	n := p.Propose(context.Background(), "tom", decisionRecord(1), 0.5, true, "")
	got, err := p.Respond(context.Background(), n.ID, true)
	require.NoError(t, err)
	assert.Equal(t, travel.NotificationApproved, got.Status)
	assert.Len(t, pub.events(), 2)
}
