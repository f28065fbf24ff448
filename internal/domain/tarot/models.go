// Package tarot holds the reference data shapes consumed by the reading pipeline:
// cards, spreads and their positions, interpretation styles, and the structured Reading.
// Everything here is read-only schema plus the catalog that ships with the binary.
package tarot

// Suit groups cards. Major arcana cards use SuitMajorArcana.
type Suit string

const (
	SuitMajorArcana Suit = "Major Arcana"
	SuitCups        Suit = "Cups"
	SuitWands       Suit = "Wands"
	SuitSwords      Suit = "Swords"
	SuitPentacles   Suit = "Pentacles"
)

// CardType is the rank classification of a card.
type CardType string

const (
	CardTypeMajor CardType = "Major"
	CardTypeMinor CardType = "Minor"
	CardTypeCourt CardType = "Court"
)

// Card is one drawable unit of the deck.
type Card struct {
	ID       int      `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Suit     Suit     `json:"suit" yaml:"suit"`
	Type     CardType `json:"type" yaml:"type"`
	Number   int      `json:"number" yaml:"number"`
	Upright  bool     `json:"upright" yaml:"-"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Position is one slot of a spread.
type Position struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Difficulty classifies how demanding a spread is to read.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
	DifficultyExpert       Difficulty = "Expert"
)

// Spread is a named, fixed-length sequence of positions.
type Spread struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Positions   []Position `json:"positions" yaml:"positions"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
}

// Style is an interpretation style tag.
type Style string

const (
	StyleTraditional   Style = "traditional"
	StyleIntuitive     Style = "intuitive"
	StylePsychological Style = "psychological"
	StyleMystical      Style = "mystical"
)

// Styles lists every supported style in prompt order.
var Styles = []Style{StyleTraditional, StyleIntuitive, StylePsychological, StyleMystical}

// Valid reports whether s is one of the supported styles.
func (s Style) Valid() bool {
	for _, known := range Styles {
		if s == known {
			return true
		}
	}
	return false
}

// StyleInfo describes a style for display and prompting.
type StyleInfo struct {
	ID          Style  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Guideline   string `json:"guideline" yaml:"guideline"`
}

// ReadingRequest is one user submission. Cards[i] lands on Spread.Positions[i].
type ReadingRequest struct {
	Cards               []Card `json:"cards"`
	Spread              Spread `json:"spread"`
	UserPrompt          string `json:"userPrompt"`
	InterpretationStyle Style  `json:"interpretationStyle"`
	APIKey              string `json:"apiKey,omitempty"`
}

// CardInterpretation is the per-card part of a Reading.
type CardInterpretation struct {
	Meaning   string `json:"meaning"`
	Advice    string `json:"advice"`
	Symbolism string `json:"symbolism"`
}

// Reading is the structured interpretation returned to callers.
// CardInterpretations is keyed by 0-based card index and holds exactly one entry per drawn card.
type Reading struct {
	OverallReading      string                     `json:"overallReading"`
	CardInterpretations map[int]CardInterpretation `json:"cardInterpretations"`
	KeyInsights         []string                   `json:"keyInsights"`
	ActionSteps         []string                   `json:"actionSteps"`
}
