package decision

import (
	"errors"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

var ErrDecisionNotFound = errors.New("decision not found")

// DefaultHistoryLimit bounds the decision history.
const DefaultHistoryLimit = 200

// history is a ring of decision records. IDs start at 1 and keep increasing
// after old records are evicted.
type history struct {
	limit   int
	records []travel.DecisionRecord
	nextID  int
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &history{limit: limit, nextID: 1}
}

func (h *history) append(rec travel.DecisionRecord) travel.DecisionRecord {
	rec.ID = h.nextID
	h.nextID++
	if len(h.records) == h.limit {
		copy(h.records, h.records[1:])
		h.records = h.records[:h.limit-1]
	}
	h.records = append(h.records, rec)
	return rec
}

func (h *history) index(id int) int {
	if len(h.records) == 0 {
		return -1
	}
	i := id - h.records[0].ID
	if i < 0 || i >= len(h.records) {
		return -1
	}
	return i
}

func (h *history) get(id int) (travel.DecisionRecord, bool) {
	i := h.index(id)
	if i < 0 {
		return travel.DecisionRecord{}, false
	}
	return h.records[i], true
}

func (h *history) mark(id int, accepted bool) error {
	i := h.index(id)
	if i < 0 {
		return ErrDecisionNotFound
	}
	v := accepted
	h.records[i].WasAccepted = &v
	return nil
}

// last returns up to n most recent records, oldest first.
func (h *history) last(n int) []travel.DecisionRecord {
	if n > len(h.records) {
		n = len(h.records)
	}
	return h.records[len(h.records)-n:]
}

func (h *history) all() []travel.DecisionRecord {
	out := make([]travel.DecisionRecord, len(h.records))
	copy(out, h.records)
	return out
}

func (h *history) len() int { return len(h.records) }
