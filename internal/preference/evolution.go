package preference

import "sort"

const (
	EvolutionInsufficient = "insufficient_data"
	EvolutionOK           = "ok"
)

type ValueChange struct {
	Initial       *Value   `json:"initial"`
	Current       *Value   `json:"current"`
	Change        *float64 `json:"change,omitempty"`
	PercentChange *float64 `json:"percent_change,omitempty"`
	Added         []string `json:"added,omitempty"`
	Removed       []string `json:"removed,omitempty"`
	Changed       *bool    `json:"changed,omitempty"`
	Status        string   `json:"status,omitempty"`
}

type ConfidenceChange struct {
	Initial *float64 `json:"initial"`
	Current *float64 `json:"current"`
	Change  *float64 `json:"change,omitempty"`
	Status  string   `json:"status,omitempty"`
}

type Evolution struct {
	Status      string                      `json:"status"`
	Preferences map[string]ValueChange      `json:"evolution,omitempty"`
	Confidence  map[string]ConfidenceChange `json:"confidence_evolution,omitempty"`
}

// Evolution compares the initial recorded state with the current model. At
// least two states must have been recorded.
func (m *Model) Evolution() Evolution {
	if m.recorded < 2 || m.initial == nil {
		return Evolution{Status: EvolutionInsufficient}
	}
	first := m.initial
	current := m.Values()
	currentConf := m.Confidences()

	prefs := map[string]ValueChange{}
	for _, key := range keys(first.Preferences, current) {
		iv, inFirst := first.Preferences[key]
		cv, inCur := current[key]
		switch {
		case inFirst && inCur:
			prefs[key] = diffValue(iv, cv)
		case inFirst:
			prefs[key] = ValueChange{Initial: &iv, Status: "removed"}
		default:
			prefs[key] = ValueChange{Current: &cv, Status: "added"}
		}
	}

	conf := map[string]ConfidenceChange{}
	for _, key := range keys(first.Confidences, currentConf) {
		ic, inFirst := first.Confidences[key]
		cc, inCur := currentConf[key]
		switch {
		case inFirst && inCur:
			d := cc - ic
			conf[key] = ConfidenceChange{Initial: &ic, Current: &cc, Change: &d}
		case inFirst:
			conf[key] = ConfidenceChange{Initial: &ic, Status: "removed"}
		default:
			conf[key] = ConfidenceChange{Current: &cc, Status: "added"}
		}
	}

	return Evolution{Status: EvolutionOK, Preferences: prefs, Confidence: conf}
}

func diffValue(iv, cv Value) ValueChange {
	out := ValueChange{Initial: &iv, Current: &cv}
	switch {
	case iv.IsNumber() && cv.IsNumber():
		d := cv.Num - iv.Num
		out.Change = &d
		// percent change is undefined from zero
		if iv.Num != 0 {
			pct := d / iv.Num * 100
			out.PercentChange = &pct
		}
	case iv.Kind == KindList && cv.Kind == KindList:
		out.Added = difference(cv.List, iv.List)
		out.Removed = difference(iv.List, cv.List)
	default:
		changed := !iv.Equal(cv)
		out.Changed = &changed
	}
	return out
}

func difference(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, s := range b {
		in[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := in[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func keys[V any, W any](a map[string]V, b map[string]W) []string {
	seen := map[string]struct{}{}
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
