package itinerary

import (
	"math/rand"
	"time"

	"github.com/yungbote/voyagerverse-backend/internal/domain/travel"
)

const (
	DateLayout  = "2006-01-02"
	tripDays    = 7
	scenarioDay = 2
)

// scenarioActivities are reserved for the third day of a sample trip.
var scenarioActivities = []string{"act6", "act7"}

// BuildSample lays out a seven-day trip starting at start. Day three holds
// the desert safari and Bedouin dinner; every other day gets two or three
// activities drawn from the rest of the catalog.
func BuildSample(travelerID, travelerName string, start time.Time, rng *rand.Rand) (travel.Itinerary, error) {
	acts, err := Catalog()
	if err != nil {
		return travel.Itinerary{}, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	reserved := make(map[string]bool, len(scenarioActivities))
	for _, id := range scenarioActivities {
		reserved[id] = true
	}
	var scenario, pool []travel.Activity
	for _, a := range acts {
		if reserved[a.ID] {
			scenario = append(scenario, a)
		} else {
			pool = append(pool, a)
		}
	}

	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	it := travel.Itinerary{
		TravelerID:   travelerID,
		TravelerName: travelerName,
		StartDate:    start.Format(DateLayout),
		EndDate:      start.AddDate(0, 0, tripDays-1).Format(DateLayout),
		Days:         make([]travel.Plan, 0, tripDays),
	}
	for i := 0; i < tripDays; i++ {
		day := travel.Plan{Day: i + 1, Date: start.AddDate(0, 0, i).Format(DateLayout)}
		if i == scenarioDay {
			day.Activities = cloneAll(scenario)
		} else {
			n := 2 + rng.Intn(2)
			for _, j := range rng.Perm(len(pool))[:n] {
				day.Activities = append(day.Activities, pool[j].Clone())
			}
		}
		it.Days = append(it.Days, day)
	}
	return it, nil
}

func cloneAll(as []travel.Activity) []travel.Activity {
	out := make([]travel.Activity, len(as))
	for i, a := range as {
		out[i] = a.Clone()
	}
	return out
}
