package reading

import (
	"fmt"

	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
)

func testSpread(n int) tarot.Spread {
	positions := make([]tarot.Position, n)
	for i := range n {
		positions[i] = tarot.Position{ID: i + 1, Name: fmt.Sprintf("Slot %d", i+1), Description: fmt.Sprintf("Aspect Number %d", i+1)}
	}
	return tarot.Spread{ID: "test", Name: "Test Spread", Positions: positions, Difficulty: tarot.DifficultyBeginner}
}

func testCards(n int) []tarot.Card {
	cards := make([]tarot.Card, n)
	for i := range n {
		cards[i] = tarot.Card{
			ID:       i + 1,
			Name:     fmt.Sprintf("Card %d", i+1),
			Suit:     tarot.SuitWands,
			Type:     tarot.CardTypeMinor,
			Number:   i + 1,
			Upright:  true,
			Keywords: []string{fmt.Sprintf("alpha%d", i+1), fmt.Sprintf("beta%d", i+1), fmt.Sprintf("gamma%d", i+1)},
		}
	}
	return cards
}

func testRequest(n int) tarot.ReadingRequest {
	return tarot.ReadingRequest{
		Cards:               testCards(n),
		Spread:              testSpread(n),
		UserPrompt:          "Should I change careers?",
		InterpretationStyle: tarot.StyleTraditional,
	}
}

// validModelJSON renders a well-formed model answer for n cards.
func validModelJSON(n int) string {
	entries := ""
	for i := range n {
		if i > 0 {
			entries += ","
		}
		entries += fmt.Sprintf(`"%d":{"meaning":"m%d","advice":"a%d","symbolism":"s%d"}`, i, i, i, i)
	}
	return `{"overallReading":"The cards speak.","cardInterpretations":{` + entries +
		`},"keyInsights":["k1","k2","k3"],"actionSteps":["s1","s2","s3"]}`
}
