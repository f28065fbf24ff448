// Package journal persists generated readings so users can revisit them.
// It sits beside the pipeline: the reading service publishes reading.generated
// and Journal.Start records each event asynchronously.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/matiasleandrokruk/arcana/internal/domain/reading"
	"github.com/matiasleandrokruk/arcana/internal/domain/tarot"
	"github.com/matiasleandrokruk/arcana/internal/infra/eventbus"
)

// ErrNotFound is returned by Get for an unknown id or a reading owned by someone else.
var ErrNotFound = errors.New("reading not found")

const (
	defaultListLimit = 20
	maxListLimit     = 100
	recordTimeout    = 5 * time.Second

	// timeLayout is fixed-width so created_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Entry is one saved reading.
type Entry struct {
	ID         string         `json:"id"`
	OwnerID    string         `json:"ownerId,omitempty"`
	SpreadID   string         `json:"spreadId"`
	SpreadName string         `json:"spreadName"`
	Style      tarot.Style    `json:"style"`
	UserPrompt string         `json:"userPrompt"`
	Source     reading.Source `json:"source"`
	Model      string         `json:"model,omitempty"`
	Cards      []tarot.Card   `json:"cards"`
	Reading    *tarot.Reading `json:"reading"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Journal is the SQLite-backed reading store.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Journal over a migrated database.
func New(db *sql.DB, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{db: db, logger: logger}
}

// Start subscribes to reading.generated before returning, then records each event
// in a background goroutine until ctx is cancelled. On cancellation the events already
// buffered are still recorded. The returned channel closes when that goroutine exits.
func (j *Journal) Start(ctx context.Context, bus eventbus.EventBus) <-chan struct{} {
	ch := bus.Subscribe(reading.TopicReadingGenerated)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer bus.Unsubscribe(reading.TopicReadingGenerated, ch)
		for {
			select {
			case <-ctx.Done():
				j.drain(ctx, ch)
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				j.handle(ctx, evt)
			}
		}
	}()
	return done
}

// drain records whatever is buffered in ch without waiting for more.
func (j *Journal) drain(ctx context.Context, ch <-chan eventbus.Event) {
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			j.handle(ctx, evt)
		default:
			return
		}
	}
}

// handle records one event. Writes outlive the subscription context so a
// shutdown does not abort rows that are already in flight.
func (j *Journal) handle(ctx context.Context, evt eventbus.Event) {
	payload, ok := evt.Payload.(reading.GeneratedEvent)
	if !ok {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := j.Record(recordCtx, FromEvent(payload)); err != nil {
		j.logger.WarnContext(ctx, "journal record failed",
			slog.String("reading_id", payload.Result.ID), slog.Any("error", err))
	}
}

// FromEvent maps a pipeline event to a journal entry.
func FromEvent(e reading.GeneratedEvent) Entry {
	return Entry{
		ID:         e.Result.ID,
		OwnerID:    e.OwnerID,
		SpreadID:   e.Request.Spread.ID,
		SpreadName: e.Request.Spread.Name,
		Style:      e.Request.InterpretationStyle,
		UserPrompt: e.Request.UserPrompt,
		Source:     e.Result.Source,
		Model:      e.Result.Model,
		Cards:      e.Request.Cards,
		Reading:    e.Result.Reading,
		CreatedAt:  e.Result.CreatedAt,
	}
}

// Record stores an entry. Recording the same id twice is a no-op.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	cards, err := json.Marshal(e.Cards)
	if err != nil {
		return fmt.Errorf("journal: encode cards: %w", err)
	}
	body, err := json.Marshal(e.Reading)
	if err != nil {
		return fmt.Errorf("journal: encode reading: %w", err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	insert := func(owner any) error {
		_, err := j.db.ExecContext(ctx, `
			INSERT INTO reading (id, owner_id, spread_id, spread_name, style, user_prompt, source, model, cards, reading, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, e.ID, owner, e.SpreadID, e.SpreadName, string(e.Style), e.UserPrompt,
			string(e.Source), e.Model, string(cards), string(body), e.CreatedAt.UTC().Format(timeLayout))
		return err
	}

	err = insert(nullable(e.OwnerID))
	if err != nil && e.OwnerID != "" && isForeignKeyViolation(err) {
		// The token outlived its account; keep the reading as anonymous.
		j.logger.WarnContext(ctx, "journal owner no longer exists, recording anonymously",
			slog.String("reading_id", e.ID), slog.String("owner_id", e.OwnerID))
		err = insert(nil)
	}
	if err != nil {
		return fmt.Errorf("journal: insert %s: %w", e.ID, err)
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// Get returns one entry. Readings with an owner are only visible to that owner;
// anonymous readings are visible to anyone holding the id.
func (j *Journal) Get(ctx context.Context, id, ownerID string) (*Entry, error) {
	row := j.db.QueryRowContext(ctx, selectEntry+` WHERE id = ? AND (owner_id IS NULL OR owner_id = ?)`, id, ownerID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("journal: get %s: %w", id, err)
	}
	return e, nil
}

// ListByOwner returns the owner's readings, newest first.
// limit <= 0 means the default page size; limits above the max are clamped.
func (j *Journal) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)

	rows, err := j.db.QueryContext(ctx, selectEntry+`
		WHERE owner_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
	`, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

const selectEntry = `
	SELECT id, COALESCE(owner_id, ''), spread_id, spread_name, style, user_prompt, source, model, cards, reading, created_at
	FROM reading`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e                      Entry
		style, source          string
		cards, body, createdAt string
	)
	if err := s.Scan(&e.ID, &e.OwnerID, &e.SpreadID, &e.SpreadName, &style, &e.UserPrompt,
		&source, &e.Model, &cards, &body, &createdAt); err != nil {
		return nil, err
	}
	e.Style = tarot.Style(style)
	e.Source = reading.Source(source)
	if err := json.Unmarshal([]byte(cards), &e.Cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	e.Reading = &tarot.Reading{}
	if err := json.Unmarshal([]byte(body), e.Reading); err != nil {
		return nil, fmt.Errorf("decode reading: %w", err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	e.CreatedAt = t
	return &e, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
