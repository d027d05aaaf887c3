package preference

import (
	"math/rand"
	"strings"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
	"github.com/yungbote/voyagerverse-backend/internal/platform/logger"
)

const (
	KeyOutdoor         = "outdoor_preference"
	KeyPace            = "preferred_activity_pace"
	KeyPriceRange      = "preferred_price_range"
	KeyMaxTemperature  = "max_comfortable_temperature"
	KeyCuisine         = "cuisine_preferences"
	DefaultExploration = 0.2
	minExploration     = 0.05
	defaultHistory     = 100
)

func CategoryKey(c travel.Category) string { return "category_" + string(c) + "_score" }

type Reaction string

const (
	Loved    Reaction = "loved"
	Liked    Reaction = "liked"
	Neutral  Reaction = "neutral"
	Disliked Reaction = "disliked"
	Hated    Reaction = "hated"
)

var reactionScores = map[Reaction]float64{
	Loved:    1.0,
	Liked:    0.75,
	Neutral:  0.5,
	Disliked: 0.25,
	Hated:    0.0,
}

func (r Reaction) Score() float64 {
	if s, ok := reactionScores[r]; ok {
		return s
	}
	return 0.5
}

// Entry pairs a preference value with the model's confidence in it.
type Entry struct {
	Value      Value   `json:"value"`
	Confidence float64 `json:"confidence"`
}

type State struct {
	Timestamp   time.Time          `json:"timestamp"`
	Trigger     string             `json:"trigger"`
	Preferences map[string]Value   `json:"preferences"`
	Confidences map[string]float64 `json:"confidence_scores"`
}

type FeedbackEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Type      string           `json:"type"`
	Content   map[string]Value `json:"content,omitempty"`
	Activity  *travel.Activity `json:"activity,omitempty"`
	Reaction  Reaction         `json:"reaction,omitempty"`
	Message   string           `json:"message,omitempty"`
}

type Config struct {
	HistoryLimit int
	Now          func() time.Time
	Rand         *rand.Rand
}

// Model is a traveler's learned preference belief. It is not safe for
// concurrent use.
type Model struct {
	log          *logger.Logger
	now          func() time.Time
	rng          *rand.Rand
	historyLimit int

	entries     map[string]Entry
	exploration float64

	initial  *State
	history  []State
	recorded int
	feedback []FeedbackEvent
}

func New(log *logger.Logger, cfg Config) *Model {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(cfg.Now().UnixNano()))
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistory
	}
	return &Model{
		log:          log.With("service", "PreferenceModel"),
		now:          cfg.Now,
		rng:          cfg.Rand,
		historyLimit: cfg.HistoryLimit,
		entries:      map[string]Entry{},
		exploration:  DefaultExploration,
	}
}

// Initialize replaces the model with explicit starting preferences. Keys with
// no stated confidence start at 0.5.
func (m *Model) Initialize(values map[string]Value, confidences map[string]float64) {
	m.entries = make(map[string]Entry, len(values))
	for k, v := range values {
		c, ok := confidences[k]
		if !ok {
			c = 0.5
		}
		m.entries[k] = Entry{Value: v.Clone(), Confidence: clamp01(c)}
	}
	m.record("initial_setup")
	m.log.Info("Preference model initialized", "attributes", len(values))
}

func (m *Model) Get(key string) (Entry, bool) {
	e, ok := m.entries[key]
	if ok {
		e.Value = e.Value.Clone()
	}
	return e, ok
}

func (m *Model) Entries() map[string]Entry {
	out := make(map[string]Entry, len(m.entries))
	for k, e := range m.entries {
		e.Value = e.Value.Clone()
		out[k] = e
	}
	return out
}

func (m *Model) Values() map[string]Value {
	out := make(map[string]Value, len(m.entries))
	for k, e := range m.entries {
		out[k] = e.Value.Clone()
	}
	return out
}

func (m *Model) Confidences() map[string]float64 {
	out := make(map[string]float64, len(m.entries))
	for k, e := range m.entries {
		out[k] = e.Confidence
	}
	return out
}

func (m *Model) confidence(key string, def float64) float64 {
	if e, ok := m.entries[key]; ok {
		return e.Confidence
	}
	return def
}

// UpdateFromExplicitFeedback merges stated preferences. Lists union, numbers
// blend toward the new value with weight 0.8, strings and bools overwrite.
// Unknown keys start at confidence 0.8. Mismatched kinds are ignored.
func (m *Model) UpdateFromExplicitFeedback(feedback map[string]Value) {
	m.appendFeedback(FeedbackEvent{Type: "explicit", Content: cloneValues(feedback)})

	for key, v := range feedback {
		cur, ok := m.entries[key]
		if !ok {
			m.entries[key] = Entry{Value: v.Clone(), Confidence: 0.8}
			continue
		}
		if cur.Value.Kind != v.Kind {
			m.log.Debug("Explicit feedback kind mismatch; ignoring", "key", key, "have", cur.Value.Kind, "got", v.Kind)
			continue
		}
		switch v.Kind {
		case KindList:
			cur.Value = List(union(cur.Value.List, v.List)...)
			cur.Confidence = min(1.0, cur.Confidence+0.2)
		case KindNumber:
			c := cur.Confidence
			cur.Value = Number((cur.Value.Num*c + v.Num*0.8) / (c + 0.8))
			cur.Confidence = min(1.0, c+0.2)
		default:
			cur.Value = v.Clone()
			cur.Confidence = 1.0
		}
		m.entries[key] = cur
	}
	m.record("explicit_feedback")
	m.log.Info("Preferences updated from explicit feedback", "attributes", len(feedback))
}

// UpdateFromImplicitFeedback learns from the traveler's reaction to an activity.
func (m *Model) UpdateFromImplicitFeedback(a travel.Activity, reaction Reaction) {
	act := a.Clone()
	m.appendFeedback(FeedbackEvent{Type: "implicit", Activity: &act, Reaction: reaction})

	score := reaction.Score()
	if a.Category != "" {
		m.blendImplicit(CategoryKey(a.Category), score)
	}
	if a.IsOutdoor {
		m.blendImplicit(KeyOutdoor, score)
	}

	energy := a.Energy()
	if energy > 0.6 {
		switch {
		case score > 0.6:
			m.setImplicit(KeyPace, String("active"), 0.9)
		case score < 0.4:
			m.setImplicit(KeyPace, String("relaxed"), 0.9)
		}
	}

	price := a.PriceRange
	if price == "" {
		price = "$$"
	}
	if score > 0.7 {
		m.setImplicit(KeyPriceRange, String(price), 0.8)
	}

	m.record("implicit_feedback")
	m.log.Info("Preferences updated from reaction", "activity", a.Name, "reaction", reaction)
}

// blendImplicit moves a 0..1 score toward s with weight 0.3, starting from
// 0.5 at confidence 0.3; confidence rises by 0.1 up to 0.9.
func (m *Model) blendImplicit(key string, s float64) {
	cur := 0.5
	if e, ok := m.entries[key]; ok && e.Value.IsNumber() {
		cur = e.Value.Num
	}
	c := m.confidence(key, 0.3)
	m.entries[key] = Entry{
		Value:      Number((cur*c + s*0.3) / (c + 0.3)),
		Confidence: min(0.9, c+0.1),
	}
}

func (m *Model) setImplicit(key string, v Value, capConf float64) {
	m.entries[key] = Entry{Value: v, Confidence: min(capConf, m.confidence(key, 0.3)+0.1)}
}

// UpdateFromNaturalLanguage applies a fixed keyword table to a chat message.
func (m *Model) UpdateFromNaturalLanguage(message string) []string {
	m.appendFeedback(FeedbackEvent{Type: "natural_language", Message: message})

	msg := strings.ToLower(message)
	var changed []string

	if strings.Contains(msg, "too hot") || strings.Contains(msg, "very hot") {
		m.entries[KeyMaxTemperature] = Entry{Value: Number(35), Confidence: 0.7}
		changed = append(changed, KeyMaxTemperature)
	}
	switch {
	case strings.Contains(msg, "tired") || strings.Contains(msg, "exhausted"):
		m.entries[KeyPace] = Entry{Value: String("relaxed"), Confidence: 0.7}
		changed = append(changed, KeyPace)
	case strings.Contains(msg, "bored") || strings.Contains(msg, "more adventure"):
		m.entries[KeyPace] = Entry{Value: String("active"), Confidence: 0.7}
		changed = append(changed, KeyPace)
	}
	if strings.Contains(msg, "love") && strings.Contains(msg, "food") && strings.Contains(msg, "spicy") {
		var cur []string
		if e, ok := m.entries[KeyCuisine]; ok && e.Value.Kind == KindList {
			cur = e.Value.List
		}
		m.entries[KeyCuisine] = Entry{Value: List(union(cur, []string{"indian", "thai"})...), Confidence: 0.7}
		changed = append(changed, KeyCuisine)
	}

	m.record("natural_language")
	m.log.Info("Preferences extracted from message", "changed", changed)
	return changed
}

// ActivityScore rates how well a matches known preferences, in [0,1]. It is
// 0.5 when no preference applies.
func (m *Model) ActivityScore(a travel.Activity) float64 {
	score := 0.5
	factors := 0

	if a.Category != "" {
		if e, ok := m.entries[CategoryKey(a.Category)]; ok && e.Value.IsNumber() {
			score += (e.Value.Num - 0.5) * e.Confidence
			factors++
		}
	}
	if a.IsOutdoor {
		if e, ok := m.entries[KeyOutdoor]; ok && e.Value.IsNumber() {
			score += (e.Value.Num - 0.5) * e.Confidence
			factors++
		}
	}
	if e, ok := m.entries[KeyPace]; ok {
		energy := a.Energy()
		var match bool
		switch e.Value.Str {
		case "active":
			match = energy > 0.6
		case "moderate":
			match = energy >= 0.4 && energy <= 0.7
		case "relaxed":
			match = energy < 0.5
		}
		if match {
			score += 0.2 * e.Confidence
		}
		factors++
	}
	if a.PriceRange != "" {
		if e, ok := m.entries[KeyPriceRange]; ok && e.Value.Str == a.PriceRange {
			score += 0.1 * e.Confidence
			factors++
		}
	}

	if factors == 0 {
		return 0.5
	}
	return clamp01(score)
}

// ShouldExplore reports whether the next recommendation should step outside
// the traveler's established tastes.
func (m *Model) ShouldExplore() bool {
	return m.rng.Float64() < m.exploration
}

func (m *Model) ExplorationRate() float64 { return m.exploration }

// SetExplorationRate overrides the exploration rate, clamped to [0,1].
func (m *Model) SetExplorationRate(rate float64) {
	m.exploration = clamp01(rate)
}

// AdjustExplorationRate lowers exploration by 0.05 once feedback spans more
// than three days and again when mean confidence exceeds 0.8, never below 0.05.
func (m *Model) AdjustExplorationRate() float64 {
	days := map[string]struct{}{}
	for _, f := range m.feedback {
		days[f.Timestamp.Format(time.DateOnly)] = struct{}{}
	}
	if len(days) > 3 {
		m.exploration = max(minExploration, m.exploration-0.05)
	}
	if len(m.entries) > 0 {
		var sum float64
		for _, e := range m.entries {
			sum += e.Confidence
		}
		if sum/float64(len(m.entries)) > 0.8 {
			m.exploration = max(minExploration, m.exploration-0.05)
		}
	}
	m.log.Info("Exploration rate adjusted", "rate", m.exploration, "feedback_days", len(days))
	return m.exploration
}

func (m *Model) Feedback() []FeedbackEvent {
	return append([]FeedbackEvent(nil), m.feedback...)
}

func (m *Model) History() []State {
	return append([]State(nil), m.history...)
}

func (m *Model) record(trigger string) {
	st := State{
		Timestamp:   m.now(),
		Trigger:     trigger,
		Preferences: m.Values(),
		Confidences: m.Confidences(),
	}
	if m.initial == nil {
		first := st
		m.initial = &first
	}
	m.recorded++
	m.history = append(m.history, st)
	if len(m.history) > m.historyLimit {
		m.history = m.history[len(m.history)-m.historyLimit:]
	}
}

func (m *Model) appendFeedback(f FeedbackEvent) {
	f.Timestamp = m.now()
	m.feedback = append(m.feedback, f)
	if len(m.feedback) > m.historyLimit {
		m.feedback = m.feedback[len(m.feedback)-m.historyLimit:]
	}
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func cloneValues(in map[string]Value) map[string]Value {
	out := make(map[string]Value, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
