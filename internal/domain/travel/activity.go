package travel

type Category string

const (
	CategoryAdventure     Category = "adventure"
	CategoryCulture       Category = "culture"
	CategoryDining        Category = "dining"
	CategoryRelaxation    Category = "relaxation"
	CategorySightseeing   Category = "sightseeing"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryAttraction    Category = "attraction"
	CategoryLeisure       Category = "leisure"
)

// DefaultEnergyRequired applies to activities that do not state their effort.
const DefaultEnergyRequired = 0.5

type BookingDetails struct {
	Provider     string   `json:"provider,omitempty" yaml:"provider"`
	Availability []string `json:"availability,omitempty" yaml:"availability"`
}

type Activity struct {
	ID               string          `json:"id,omitempty" yaml:"id"`
	Name             string          `json:"name" yaml:"name"`
	Time             string          `json:"time,omitempty" yaml:"time"`
	Location         string          `json:"location,omitempty" yaml:"location"`
	Description      string          `json:"description,omitempty" yaml:"description"`
	Category         Category        `json:"category,omitempty" yaml:"category"`
	IsOutdoor        bool            `json:"is_outdoor" yaml:"is_outdoor"`
	EnergyRequired   *float64        `json:"energy_required,omitempty" yaml:"energy_required"`
	DurationHours    float64         `json:"duration_hours,omitempty" yaml:"duration_hours"`
	PriceRange       string          `json:"price_range,omitempty" yaml:"price_range"`
	BookingReference string          `json:"booking_reference,omitempty" yaml:"booking_reference"`
	BookingRequired  bool            `json:"booking_required,omitempty" yaml:"booking_required"`
	BookingDetails   *BookingDetails `json:"booking_details,omitempty" yaml:"booking_details"`
}

// Energy returns the effort the activity demands, 0.5 when unspecified.
func (a Activity) Energy() float64 {
	if a.EnergyRequired == nil {
		return DefaultEnergyRequired
	}
	return *a.EnergyRequired
}

func (a Activity) Clone() Activity {
	out := a
	if a.EnergyRequired != nil {
		out.EnergyRequired = Float(*a.EnergyRequired)
	}
	if a.BookingDetails != nil {
		bd := *a.BookingDetails
		bd.Availability = append([]string(nil), a.BookingDetails.Availability...)
		out.BookingDetails = &bd
	}
	return out
}

// Plan is one day of an itinerary.
type Plan struct {
	Day                int        `json:"day" yaml:"day"`
	Date               string     `json:"date" yaml:"date"`
	Activities         []Activity `json:"activities" yaml:"activities"`
	IsModified         bool       `json:"is_modified,omitempty" yaml:"is_modified"`
	ModificationReason Reason     `json:"modification_reason,omitempty" yaml:"modification_reason"`
}

func (p Plan) Clone() Plan {
	out := p
	if p.Activities != nil {
		out.Activities = make([]Activity, len(p.Activities))
		for i, a := range p.Activities {
			out.Activities[i] = a.Clone()
		}
	}
	return out
}

func (p *Plan) IsEmpty() bool {
	return p == nil || (p.Day == 0 && p.Date == "" && len(p.Activities) == 0)
}

// Itinerary is a multi-day trip owned by one traveler.
type Itinerary struct {
	TravelerID   string `json:"traveler_id"`
	TravelerName string `json:"traveler_name,omitempty"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Days         []Plan `json:"days"`
}

func (it Itinerary) Clone() Itinerary {
	out := it
	out.Days = make([]Plan, len(it.Days))
	for i, d := range it.Days {
		out.Days[i] = d.Clone()
	}
	return out
}

// Goal is a high-level traveler objective with measurable success criteria.
type Goal struct {
	Name            string             `json:"name" yaml:"name" validate:"required"`
	Description     string             `json:"description" yaml:"description"`
	Priority        int                `json:"priority" yaml:"priority" validate:"min=1,max=10"`
	SuccessCriteria map[string]float64 `json:"success_criteria,omitempty" yaml:"success_criteria"`
	// SatisfactionScore is reported but not computed: nothing derives it from
	// SuccessCriteria yet.
	SatisfactionScore float64 `json:"satisfaction_score" yaml:"-"`
}

func Float(v float64) *float64 { return &v }
