package promptstyle

import "strings"

const marker = "VOYAGERVERSE_PROMPT_STYLE_V1"

// ApplySystem prepends a short house-style block to a system prompt. Mode
// "json" asks for a single JSON object; anything else asks for plain prose.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou are the planning assistant for VoyagerVerse, a travel companion for trips in the Gulf region.")
	b.WriteString("\nTraveler safety and comfort come before sightseeing value.")
	b.WriteString("\nUse only the facts supplied in the request; do not invent venues, prices or bookings.")
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "json":
		b.WriteString("\nRespond with a single JSON object and nothing else.")
	default:
		b.WriteString("\nAnswer in at most three short sentences addressed to the traveler.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return b.String()
}
