// Package render prints readings and catalog data for a terminal.
// Colour is enabled only when the output is a terminal, and text is wrapped to its width.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/matiasleandrokruk/arcana/internal/domain/reading"
	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
)

const (
	defaultWidth = 80
	minWidth     = 40
	maxWidth     = 100
	indent       = "   "
)

// Renderer writes styled text to one output.
type Renderer struct {
	out   io.Writer
	width int

	heading *color.Color
	label   *color.Color
	accent  *color.Color
	muted   *color.Color
	warn    *color.Color
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithWidth fixes the wrap width instead of probing the terminal.
func WithWidth(width int) Option {
	return func(r *Renderer) { r.width = clampWidth(width) }
}

// WithColor forces colour on or off.
func WithColor(enabled bool) Option {
	return func(r *Renderer) { r.setColor(enabled) }
}

// New creates a Renderer for out. When out is a terminal, colour is on and the
// wrap width follows the terminal; otherwise output is plain and 80 columns wide.
func New(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:     out,
		width:   defaultWidth,
		heading: color.New(color.FgHiMagenta, color.Bold),
		label:   color.New(color.FgCyan),
		accent:  color.New(color.FgHiWhite),
		muted:   color.New(color.FgHiBlack),
		warn:    color.New(color.FgYellow),
	}

	isTTY := false
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		isTTY = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			r.width = clampWidth(w - 2)
		}
	}
	r.setColor(isTTY && os.Getenv("NO_COLOR") == "")

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) setColor(enabled bool) {
	for _, c := range []*color.Color{r.heading, r.label, r.accent, r.muted, r.warn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// Reading prints a pipeline result. Card interpretations follow spread order.
func (r *Renderer) Reading(req tarot.ReadingRequest, res *reading.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", r.heading.Sprintf("✦ %s · %s", spreadTitle(req.Spread), req.InterpretationStyle))
	r.field(&b, "Question", req.UserPrompt)
	switch res.Source {
	case reading.SourceModel:
		r.field(&b, "Source", "model "+res.Model)
	default:
		fmt.Fprintf(&b, "%s\n", r.warn.Sprint("Source: offline reading (the model was unavailable)"))
	}

	r.section(&b, "Overall reading")
	for _, para := range strings.Split(res.Reading.OverallReading, "\n\n") {
		r.paragraph(&b, para, "")
		b.WriteString("\n")
	}

	r.section(&b, "Cards")
	for i, card := range req.Cards {
		fmt.Fprintf(&b, "%s %s\n",
			r.label.Sprintf("%d. %s:", i+1, positionName(req.Spread, i)),
			r.accent.Sprint(cardTitle(card)))
		interp, ok := res.Reading.CardInterpretations[i]
		if !ok {
			continue
		}
		r.paragraph(&b, "Meaning: "+interp.Meaning, indent)
		r.paragraph(&b, "Advice: "+interp.Advice, indent)
		r.paragraph(&b, r.muted.Sprint("Symbolism: ")+interp.Symbolism, indent)
		b.WriteString("\n")
	}

	r.section(&b, "Key insights")
	for _, insight := range res.Reading.KeyInsights {
		r.paragraph(&b, "• "+insight, "")
	}

	r.section(&b, "Action steps")
	for i, step := range res.Reading.ActionSteps {
		r.paragraph(&b, fmt.Sprintf("%d. %s", i+1, step), "")
	}

	fmt.Fprintf(&b, "\n%s\n", r.muted.Sprintf("reading %s", res.ID))
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Spreads prints the spread catalog.
func (r *Renderer) Spreads(spreads []tarot.Spread) error {
	var b strings.Builder
	for _, s := range spreads {
		fmt.Fprintf(&b, "%s %s %s\n",
			r.accent.Sprintf("%-16s", s.ID),
			r.heading.Sprint(s.Name),
			r.muted.Sprintf("(%d cards, %s)", len(s.Positions), s.Difficulty))
		r.paragraph(&b, s.Description, indent)
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Error prints a user-facing error.
func (r *Renderer) Error(err error) {
	fmt.Fprintln(r.out, r.warn.Sprint("error: ")+err.Error()) //nolint:errcheck
}

func (r *Renderer) field(b *strings.Builder, name, value string) {
	r.paragraph(b, r.label.Sprint(name+": ")+value, "")
}

func (r *Renderer) section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n", r.heading.Sprint(title))
}

// paragraph wraps text to the renderer width, prefixing every line with prefix.
func (r *Renderer) paragraph(b *strings.Builder, text, prefix string) {
	for _, line := range wrapText(text, r.width-len(prefix)) {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func spreadTitle(s tarot.Spread) string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

func positionName(s tarot.Spread, i int) string {
	if i < len(s.Positions) {
		return s.Positions[i].Name
	}
	return fmt.Sprintf("Card %d", i+1)
}

func cardTitle(c tarot.Card) string {
	if c.Upright {
		return c.Name
	}
	return c.Name + " (reversed)"
}

func clampWidth(w int) int {
	switch {
	case w < minWidth:
		return minWidth
	case w > maxWidth:
		return maxWidth
	}
	return w
}

// wrapText wraps text at word boundaries. Words longer than width stay on their own line.
// Width counts visible runes, so ANSI colour codes do not shorten lines.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if visibleLen(current)+1+visibleLen(word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// visibleLen counts runes outside ANSI escape sequences.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			n++
		}
	}
	return n
}
