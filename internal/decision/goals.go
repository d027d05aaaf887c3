package decision

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

var validate = validator.New()

// AddGoal validates and stores a traveler goal.
func (e *Engine) AddGoal(g travel.Goal) error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("invalid goal: %w", err)
	}
	g.SatisfactionScore = 0
	e.goals = append(e.goals, g)
	e.log.Info("Added goal", "name", g.Name, "priority", g.Priority)
	return nil
}

func (e *Engine) Goals() []travel.Goal {
	out := make([]travel.Goal, len(e.goals))
	copy(out, e.goals)
	return out
}
