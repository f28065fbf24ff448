package tarot

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest marks a reading request that is missing or has inconsistent fields.
	ErrInvalidRequest = errors.New("invalid reading request")
	// ErrInvalidDraw is returned by Draw for an impossible card count.
	ErrInvalidDraw = errors.New("card count must be between 1 and the deck size")
	// ErrSpreadNotFound is returned by Catalog.Spread for an unknown id.
	ErrSpreadNotFound = errors.New("spread not found")
	// ErrCardNotFound is returned by Catalog.Card for an unknown id.
	ErrCardNotFound = errors.New("card not found")
)

// Validate checks the request before any model work starts.
func (r ReadingRequest) Validate() error {
	if len(r.Cards) == 0 {
		return fmt.Errorf("%w: cards are required", ErrInvalidRequest)
	}
	if len(r.Spread.Positions) == 0 {
		return fmt.Errorf("%w: spread is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.UserPrompt) == "" {
		return fmt.Errorf("%w: userPrompt is required", ErrInvalidRequest)
	}
	if r.InterpretationStyle == "" {
		return fmt.Errorf("%w: interpretationStyle is required", ErrInvalidRequest)
	}
	if !r.InterpretationStyle.Valid() {
		return fmt.Errorf("%w: unknown interpretationStyle %q", ErrInvalidRequest, r.InterpretationStyle)
	}
	if len(r.Cards) != len(r.Spread.Positions) {
		return fmt.Errorf("%w: spread %q needs %d cards, got %d",
			ErrInvalidRequest, r.Spread.ID, len(r.Spread.Positions), len(r.Cards))
	}
	return nil
}
