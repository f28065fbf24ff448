package reading

import (
	"fmt"
	"strings"

	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
)

const (
	defaultTheme       = "inner wisdom"
	defaultSecondaries = "patience and clarity"
)

var styleSentences = map[tarot.Style]string{
	tarot.StyleTraditional:   "Read through the traditional lens, these cards hold to their classic meanings and time-tested symbolism.",
	tarot.StyleIntuitive:     "Read intuitively, let your first impressions of these images and the feelings they stir guide you.",
	tarot.StylePsychological: "Read psychologically, these archetypes mirror patterns in your own psyche that are asking for attention.",
	tarot.StyleMystical:      "Read mystically, these cards echo numerological and esoteric currents connecting you to something larger.",
}

// Fallback builds a templated Reading without any model call.
// It is deterministic: identical inputs give identical output.
func Fallback(cards []tarot.Card, spread tarot.Spread, userPrompt string, style tarot.Style) *tarot.Reading {
	interps := make(map[int]tarot.CardInterpretation, len(cards))
	for i, card := range cards {
		interps[i] = fallbackCard(card, positionAt(spread, i), userPrompt)
	}

	r := &tarot.Reading{
		OverallReading:      fallbackOverall(cards, spread, userPrompt, style),
		CardInterpretations: interps,
		KeyInsights:         []string{},
		ActionSteps:         []string{},
	}
	if len(cards) == 0 {
		return r
	}

	first, middle, last := cards[0], cards[len(cards)/2], cards[len(cards)-1]
	r.KeyInsights = []string{
		fmt.Sprintf("The presence of %s suggests that %s is a key theme in your current situation", first.Name, theme(first)),
		fmt.Sprintf("Your cards indicate a need to balance %s with %s", theme(middle), theme(last)),
		fmt.Sprintf("The overall energy of your reading points toward %s and personal growth", last.Name),
	}
	r.ActionSteps = []string{
		fmt.Sprintf("Reflect on the message of %s and how %s applies to your current situation", first.Name, theme(first)),
		fmt.Sprintf("Take practical steps to embody the energy of %s in your daily life", middle.Name),
		fmt.Sprintf("Remain open to the transformative potential that %s represents", last.Name),
	}
	return r
}

func fallbackCard(card tarot.Card, pos tarot.Position, userPrompt string) tarot.CardInterpretation {
	keywords := keywordList(card)
	return tarot.CardInterpretation{
		Meaning: fmt.Sprintf(
			"%s in the %s position suggests themes of %s. This card speaks to the energy surrounding %s, indicating that these qualities are particularly relevant to your current situation.",
			card.Name, pos.Name, keywords, describe(pos)),
		Advice: fmt.Sprintf(
			"Focus on embodying the qualities of %s as you navigate this aspect of your journey. %s encourages you to embrace %s while remaining mindful of the lessons this card offers.",
			theme(card), card.Name, secondaries(card)),
		Symbolism: fmt.Sprintf(
			"%s carries the archetypal energy of %s. In the context of your question, %q, this card represents the deeper forces and patterns at work in your life.",
			card.Name, keywords, userPrompt),
	}
}

func fallbackOverall(cards []tarot.Card, spread tarot.Spread, userPrompt string, style tarot.Style) string {
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}

	paragraphs := []string{
		fmt.Sprintf("Your %s reading reveals a rich tapestry of energies surrounding your question: %q. The influences of %s are converging to guide you forward.",
			spread.Name, userPrompt, strings.Join(names, ", ")),
		"The overall message of your cards speaks to transformation, growth, and the need to balance different aspects of your life. Each position in your spread tells part of a larger story about your current path.",
		"Trust the process and remain open to the insights that emerge from this reading. Tarot is a tool for reflection and self-discovery, and the true wisdom lies within your own intuition.",
	}
	if s, ok := styleSentences[style]; ok {
		paragraphs[2] += " " + s
	}
	return strings.Join(paragraphs, "\n\n")
}

func positionAt(s tarot.Spread, i int) tarot.Position {
	if i < len(s.Positions) {
		return s.Positions[i]
	}
	return tarot.Position{ID: i + 1, Name: fmt.Sprintf("Position %d", i+1)}
}

func describe(pos tarot.Position) string {
	if pos.Description == "" {
		return "this part of your path"
	}
	return strings.ToLower(pos.Description)
}

func keywordList(c tarot.Card) string {
	if len(c.Keywords) == 0 {
		return defaultTheme
	}
	return strings.Join(c.Keywords, ", ")
}

func theme(c tarot.Card) string {
	if len(c.Keywords) == 0 {
		return defaultTheme
	}
	return c.Keywords[0]
}

func secondaries(c tarot.Card) string {
	if len(c.Keywords) < 2 {
		return defaultSecondaries
	}
	return strings.Join(c.Keywords[1:], " and ")
}
