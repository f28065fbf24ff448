// Package reading turns a ReadingRequest into a structured tarot Reading.
// The pipeline is: BuildPrompt → model call → ParseReading, with Fallback
// standing in whenever the model path fails for any reason other than a missing credential.
package reading

import (
	"fmt"
	"strings"

	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
)

const promptPreamble = "You are a master tarot reader with deep knowledge of symbolism, psychology, and mystical traditions."

// styleGuidelines returns the catalog guidelines in tarot.Styles order.
func styleGuidelines() []tarot.StyleInfo {
	catalog, err := tarot.LoadCatalog()
	if err != nil {
		return nil
	}
	out := make([]tarot.StyleInfo, 0, len(tarot.Styles))
	for _, id := range tarot.Styles {
		if info, ok := catalog.Style(id); ok {
			out = append(out, info)
		}
	}
	return out
}

// BuildPrompt renders the model prompt for req. It performs no validation;
// callers run req.Validate first so Cards and Spread.Positions line up.
func BuildPrompt(req tarot.ReadingRequest) string {
	b := strings.Builder{}
	b.WriteString(promptPreamble)
	b.WriteString("\n\nREADING CONTEXT:\nSpread: ")
	b.WriteString(req.Spread.Name)
	b.WriteString("\nInterpretation Style: ")
	b.WriteString(string(req.InterpretationStyle))
	b.WriteString("\nUser's Question/Situation: \"")
	b.WriteString(req.UserPrompt)
	b.WriteString("\"\n\nSPREAD POSITIONS:\n")
	for _, pos := range req.Spread.Positions {
		fmt.Fprintf(&b, "%s: %s\n", pos.Name, pos.Description)
	}
	b.WriteString("\nCARDS DRAWN:\n")
	for i, card := range req.Cards {
		b.WriteString(cardLine(i, positionName(req.Spread, i), card))
		b.WriteByte('\n')
	}
	b.WriteString("\nProvide a comprehensive tarot reading. Respond ONLY with valid JSON in exactly this format:\n\n")
	b.WriteString(schemaTemplate(len(req.Cards)))
	b.WriteString("\n\nINTERPRETATION STYLE GUIDELINES:\n")
	for _, g := range styleGuidelines() {
		fmt.Fprintf(&b, "- %s: %s\n", g.Name, g.Guideline)
	}
	b.WriteString("\nMake the reading personal, insightful, and actionable. ")
	b.WriteString("Use evocative language while providing practical wisdom.")
	return b.String()
}

func cardLine(i int, position string, card tarot.Card) string {
	line := fmt.Sprintf("Position %d (%s): %s of %s - Keywords: %s",
		i+1, position, card.Name, card.Suit, strings.Join(card.Keywords, ", "))
	if !card.Upright {
		line += " [reversed]"
	}
	return line
}

func positionName(s tarot.Spread, i int) string {
	if i < len(s.Positions) {
		return s.Positions[i].Name
	}
	return fmt.Sprintf("Position %d", i+1)
}

func schemaTemplate(n int) string {
	entries := make([]string, n)
	for i := range n {
		entries[i] = fmt.Sprintf(`    "%d": {
      "meaning": "Detailed interpretation of card %d in its position, relating to the user's question",
      "advice": "Specific guidance and advice based on this card",
      "symbolism": "Deep symbolic meaning and archetypal significance"
    }`, i, i+1)
	}

	b := strings.Builder{}
	b.WriteString("{\n")
	b.WriteString(`  "overallReading": "A detailed 3-4 paragraph interpretation weaving all the cards together in relation to the user's question and the spread positions",`)
	b.WriteString("\n  \"cardInterpretations\": {\n")
	b.WriteString(strings.Join(entries, ",\n"))
	b.WriteString("\n  },\n")
	b.WriteString(`  "keyInsights": [
    "Key insight 1 - profound and actionable",
    "Key insight 2 - profound and actionable",
    "Key insight 3 - profound and actionable"
  ],
  "actionSteps": [
    "Specific action step 1 the user can take",
    "Specific action step 2 the user can take",
    "Specific action step 3 the user can take"
  ]
}`)
	return b.String()
}
