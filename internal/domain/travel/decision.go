package travel

import "time"

// Reason names the issue that triggered a plan change.
type Reason string

const (
	ReasonWeather Reason = "weather"
	ReasonEnergy  Reason = "energy"
)

const DecisionTypeItineraryChange = "itinerary_change"

type DecisionRecord struct {
	ID           int       `json:"id"`
	Type         string    `json:"type"`
	OriginalPlan Plan      `json:"original_plan"`
	NewPlan      Plan      `json:"new_plan"`
	Reason       Reason    `json:"issue"`
	Timestamp    time.Time `json:"timestamp"`
	Context      Snapshot  `json:"context"`
	// WasAccepted is nil until the traveler (or auto-approval) resolves it.
	WasAccepted *bool `json:"was_accepted,omitempty"`
}

func (d DecisionRecord) Resolved() bool { return d.WasAccepted != nil }

func (d DecisionRecord) Accepted() bool { return d.WasAccepted != nil && *d.WasAccepted }

type NotificationStatus string

const (
	NotificationPending  NotificationStatus = "pending"
	NotificationApproved NotificationStatus = "approved"
	NotificationRejected NotificationStatus = "rejected"
)

type Notification struct {
	ID               string             `json:"id"`
	TravelerID       string             `json:"traveler_id"`
	Timestamp        time.Time          `json:"timestamp"`
	Type             string             `json:"type"`
	Title            string             `json:"title"`
	Message          string             `json:"message"`
	OriginalPlan     Plan               `json:"original_plan"`
	NewPlan          Plan               `json:"new_plan"`
	Confidence       float64            `json:"confidence"`
	Status           NotificationStatus `json:"status"`
	RequiresApproval bool               `json:"requires_approval"`
	DecisionID       int                `json:"decision_id"`
	RespondedAt      *time.Time         `json:"responded_at,omitempty"`
}

// Evaluation is the outcome of checking a plan against the current context.
type Evaluation struct {
	NeedsChange  bool     `json:"needs_change"`
	Reason       Reason   `json:"reason,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
	NewPlan      *Plan    `json:"new_plan,omitempty"`
	DecisionID   int      `json:"decision_id,omitempty"`
	SafetyIssues []string `json:"safety_issues,omitempty"`
}
