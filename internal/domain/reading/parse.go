package reading

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
)

// ErrNoJSON is returned by ExtractJSON when the text holds no {...} span.
var ErrNoJSON = errors.New("no JSON object found in model output")

// ParseError reports model output that is not a JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse model output: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a JSON object that does not satisfy the Reading shape.
// Field names the offending field, or "cardInterpretations.<i>" for a card entry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid model reading: %s: %s", e.Field, e.Reason)
}

// ExtractJSON returns the substring from the first '{' to the last '}' inclusive.
// Prose and markdown fences around the object are discarded this way.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

// ParseReading extracts, decodes and validates a Reading for cardCount cards.
// Card entries at index >= cardCount are dropped so the result is dense.
func ParseReading(text string, cardCount int) (*tarot.Reading, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, &ParseError{Err: err}
	}

	out := &tarot.Reading{}
	if out.OverallReading, err = requiredString(fields, "overallReading"); err != nil {
		return nil, err
	}
	if out.CardInterpretations, err = cardInterpretations(fields, cardCount); err != nil {
		return nil, err
	}
	if out.KeyInsights, err = requiredStrings(fields, "keyInsights"); err != nil {
		return nil, err
	}
	if out.ActionSteps, err = requiredStrings(fields, "actionSteps"); err != nil {
		return nil, err
	}
	return out, nil
}

func present(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := present(fields, name)
	if !ok {
		return "", &ValidationError{Field: name, Reason: "missing"}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ValidationError{Field: name, Reason: "must be a string"}
	}
	if strings.TrimSpace(s) == "" {
		return "", &ValidationError{Field: name, Reason: "must not be empty"}
	}
	return s, nil
}

func requiredStrings(fields map[string]json.RawMessage, name string) ([]string, error) {
	raw, ok := present(fields, name)
	if !ok {
		return nil, &ValidationError{Field: name, Reason: "missing"}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &ValidationError{Field: name, Reason: "must be an array of strings"}
	}
	return list, nil
}

func cardInterpretations(fields map[string]json.RawMessage, n int) (map[int]tarot.CardInterpretation, error) {
	const name = "cardInterpretations"
	raw, ok := present(fields, name)
	if !ok {
		return nil, &ValidationError{Field: name, Reason: "missing"}
	}
	entries, err := indexedEntries(raw)
	if err != nil {
		return nil, &ValidationError{Field: name, Reason: "must be an object or an array"}
	}

	out := make(map[int]tarot.CardInterpretation, n)
	for i := range n {
		field := name + "." + strconv.Itoa(i)
		entryRaw, ok := present(entries, strconv.Itoa(i))
		if !ok {
			return nil, &ValidationError{Field: field, Reason: "missing"}
		}
		var ci tarot.CardInterpretation
		if err := json.Unmarshal(entryRaw, &ci); err != nil {
			return nil, &ValidationError{Field: field, Reason: "must be an object of strings"}
		}
		switch {
		case strings.TrimSpace(ci.Meaning) == "":
			return nil, &ValidationError{Field: field + ".meaning", Reason: "must not be empty"}
		case strings.TrimSpace(ci.Advice) == "":
			return nil, &ValidationError{Field: field + ".advice", Reason: "must not be empty"}
		case strings.TrimSpace(ci.Symbolism) == "":
			return nil, &ValidationError{Field: field + ".symbolism", Reason: "must not be empty"}
		}
		out[i] = ci
	}
	return out, nil
}

// indexedEntries accepts both {"0": {...}} and [{...}] and keys the entries by index.
func indexedEntries(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	entries = make(map[string]json.RawMessage, len(list))
	for i, entry := range list {
		entries[strconv.Itoa(i)] = entry
	}
	return entries, nil
}
