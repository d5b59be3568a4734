package chat

import (
	"fmt"
	"strings"
)

// LocalContext is the read-only projection of a stored local used to
// ground an orchestration run. It is assembled once per run by the
// storage collaborator and folded into the seed prompt; the orchestrator
// never writes it back.
type LocalContext struct {
	LocalName           string
	LocalDescription    string
	CategoryName        string
	CategoryDescription string
	Coordinates         string // "lat,lng"
	RadiusMeters        int
}

// finalDirective is the synthetic user turn appended after tool execution,
// before the final completion round.
const finalDirective = "Avoid mentioning the tool in your conversations. " +
	"Just give a very short explanation just as an initial introductive message. " +
	"Beside, avoid necessity to always give responses using the tool results. " +
	"Also, add a conclusion message at the end of your response. " +
	"Use Markdown for formatting and do not restate raw tool payloads."

// BuildSeedPrompt assembles the first user turn of a run. With a nil
// context the raw text passes through untouched; with a LocalContext the
// text is prefixed with the local's situational details and the standing
// behavioral instructions.
func BuildSeedPrompt(text string, lc *LocalContext) string {
	if lc == nil {
		return text
	}

	var b strings.Builder
	b.WriteString("You are assisting visitors of a local event or place.\n")
	fmt.Fprintf(&b, "Local: %s", lc.LocalName)
	if lc.LocalDescription != "" {
		fmt.Fprintf(&b, ": %s", lc.LocalDescription)
	}
	b.WriteString("\n")
	if lc.CategoryName != "" {
		fmt.Fprintf(&b, "Category: %s", lc.CategoryName)
		if lc.CategoryDescription != "" {
			fmt.Fprintf(&b, " (%s)", lc.CategoryDescription)
		}
		b.WriteString("\n")
	}
	if lc.Coordinates != "" {
		fmt.Fprintf(&b, "Located at %s within a %d meter radius.\n", lc.Coordinates, lc.RadiusMeters)
	}
	b.WriteString("\nInstructions: when the visitor greets you, prefer the greeting tool. " +
		"When they ask about a named entity, use the lookup tool. " +
		"If the question is off-topic, answer briefly and note that you are here to help with this local.\n\n")
	b.WriteString("Visitor message: ")
	b.WriteString(text)
	return b.String()
}
