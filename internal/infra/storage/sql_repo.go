package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MRamiBalles/Legislatura/internal/domain/bill"
	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/domain/campaign"
	"github.com/MRamiBalles/Legislatura/internal/events"
)

// SQLRepository implements CampaignRepository and EventRepository over
// database/sql for both SQLite and PostgreSQL.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLRepository wraps an opened and migrated database.
func NewSQLRepository(db *sql.DB, d Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: d}
}

func (r *SQLRepository) exec(ctx context.Context, q execer, query string, args ...any) error {
	_, err := q.ExecContext(ctx, r.dialect.rebind(query), args...)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveCampaign upserts the snapshot and rewrites its bill records.
func (r *SQLRepository) SaveCampaign(ctx context.Context, c *campaign.Campaign) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = r.exec(ctx, tx, `
		INSERT INTO campaigns (id, name, game_date, document, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			game_date=excluded.game_date,
			document=excluded.document,
			updated_at=excluded.updated_at
	`, c.ID, c.Name, c.CurrentDate.String(), string(doc), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save campaign: %w", err)
	}

	if err := r.exec(ctx, tx, `DELETE FROM bills WHERE campaign_id = ?`, c.ID); err != nil {
		return fmt.Errorf("failed to clear bills: %w", err)
	}
	insert := func(b bill.Bill, archived bool) error {
		rec, err := json.Marshal(RecordOf(b))
		if err != nil {
			return err
		}
		return r.exec(ctx, tx, `
			INSERT INTO bills (campaign_id, id, level, status, current_stage, stage_scheduled_for, record, archived)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, b.ID, string(b.Level), string(b.Status), b.CurrentStage, b.StageScheduledFor.String(), string(rec), archived)
	}
	for _, b := range c.ActiveBills() {
		if err := insert(b, false); err != nil {
			return fmt.Errorf("failed to save bill %s: %w", b.ID, err)
		}
	}
	for _, b := range c.ArchivedBills {
		if err := insert(b, true); err != nil {
			return fmt.Errorf("failed to save bill %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}

// LoadCampaign reads a snapshot back.
func (r *SQLRepository) LoadCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, r.dialect.rebind(`SELECT document FROM campaigns WHERE id = ?`), id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: campaign %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	var c campaign.Campaign
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal campaign: %w", err)
	}
	return &c, nil
}

// Bills lists bill records; an empty status returns all of them.
func (r *SQLRepository) Bills(ctx context.Context, campaignID string, status bill.Status) ([]BillRecord, error) {
	query := `SELECT record FROM bills WHERE campaign_id = ?`
	args := []any{campaignID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var out []BillRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		var rec BillRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bill: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AppendEvent inserts an event into the ledger.
func (r *SQLRepository) AppendEvent(ctx context.Context, e events.GameEvent) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	err = r.exec(ctx, r.db, `
		INSERT INTO events (id, campaign_id, timestamp, event_type, actor_id, target_id, game_date, message, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.CampaignID, e.Timestamp.UTC().Format(time.RFC3339Nano), string(e.Type), e.ActorID,
		e.TargetID, e.Date.String(), e.Message, string(payload))
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

var zeroDate = calendar.GameDate{}.String()

const eventColumns = `id, campaign_id, timestamp, event_type, actor_id, target_id, game_date, message, payload`

// EventsByCampaign returns the full log of a campaign.
func (r *SQLRepository) EventsByCampaign(ctx context.Context, campaignID string) ([]events.GameEvent, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM events WHERE campaign_id = ? ORDER BY seq ASC`, campaignID)
}

// EventsByType returns the events of one type.
func (r *SQLRepository) EventsByType(ctx context.Context, campaignID string, t events.EventType) ([]events.GameEvent, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM events WHERE campaign_id = ? AND event_type = ? ORDER BY seq ASC`, campaignID, string(t))
}

// EventsByDate returns the events of one simulated day.
func (r *SQLRepository) EventsByDate(ctx context.Context, campaignID string, d calendar.GameDate) ([]events.GameEvent, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM events WHERE campaign_id = ? AND game_date = ? ORDER BY seq ASC`, campaignID, d.String())
}

func (r *SQLRepository) queryEvents(ctx context.Context, query string, args ...any) ([]events.GameEvent, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []events.GameEvent
	for rows.Next() {
		var (
			e                 events.GameEvent
			ts, kind, date, p string
		)
		if err := rows.Scan(&e.ID, &e.CampaignID, &ts, &kind, &e.ActorID, &e.TargetID, &date, &e.Message, &p); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = events.EventType(kind)
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("event %s timestamp: %w", e.ID, err)
		}
		if date != zeroDate {
			if e.Date, err = calendar.Parse(date); err != nil {
				return nil, fmt.Errorf("event %s date: %w", e.ID, err)
			}
		}
		if p != "null" {
			e.Payload = json.RawMessage(p)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var (
	_ CampaignRepository = (*SQLRepository)(nil)
	_ EventRepository    = (*SQLRepository)(nil)
)
