package session

import (
	"context"

	"github.com/yungbote/voyagerverse-backend/internal/decision"
	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

func (s *Session) Decisions() []travel.DecisionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Decisions()
}

type Explanation struct {
	DecisionID  int     `json:"decision_id"`
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence"`
}

// Explain describes decision id. An unknown id returns the not-found text
// together with decision.ErrDecisionNotFound.
func (s *Session) Explain(ctx context.Context, id int) (Explanation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Explanation{DecisionID: id}
	rec, err := s.engine.Decision(id)
	if err != nil {
		out.Explanation = decision.NotFoundExplanation
		return out, err
	}
	out.Explanation = s.engine.ExplainDecision(ctx, id, s.context.Snapshot().Weather)
	out.Confidence = s.engine.ConfidenceScore(rec)
	return out, nil
}

type EngineStatus struct {
	State               decision.State       `json:"state"`
	LastOutcome         decision.State       `json:"last_outcome"`
	ConfidenceThreshold float64              `json:"confidence_threshold"`
	Decisions           int                  `json:"decision_count"`
	LastReflection      *decision.Reflection `json:"last_reflection,omitempty"`
	Goals               []travel.Goal        `json:"goals"`
}

func (s *Session) EngineStatus() EngineStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EngineStatus{
		State:               s.engine.State(),
		LastOutcome:         s.engine.LastOutcome(),
		ConfidenceThreshold: s.engine.ConfidenceThreshold(),
		Decisions:           len(s.engine.Decisions()),
		LastReflection:      s.engine.LastReflection(),
		Goals:               s.engine.Goals(),
	}
}

func (s *Session) AddGoal(g travel.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.AddGoal(g)
}
