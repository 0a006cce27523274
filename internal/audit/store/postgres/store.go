// Package postgres provides the durable audit store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chamber/internal/audit"
	id "chamber/pkg/domain"
	txcontext "chamber/pkg/platform/tx"
)

// advisoryLockKey serializes appends so chain fields are assigned without
// gaps or forks. All writers across all connections contend on this key.
const advisoryLockKey = 7421

// Store implements audit.Store on PostgreSQL. Entries are immutable once
// written; there is no update or delete path.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) querier(ctx context.Context) txcontext.DB {
	return txcontext.Active(ctx, s.db)
}

// Append assigns chain fields under an advisory lock and inserts the entry.
// When the context does not already carry a transaction, one is opened here
// so the lock releases on commit.
func (s *Store) Append(ctx context.Context, event *audit.Event) error {
	if tx, ok := txcontext.From(ctx); ok {
		return s.appendIn(ctx, tx, event)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.appendIn(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

func (s *Store) appendIn(ctx context.Context, tx *sql.Tx, event *audit.Event) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey); err != nil {
		return fmt.Errorf("acquire audit lock: %w", err)
	}

	var lastSeq uint64
	var lastHash string
	err := tx.QueryRowContext(ctx, `
		SELECT seq, entry_hash FROM audit_events ORDER BY seq DESC LIMIT 1
	`).Scan(&lastSeq, &lastHash)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read audit chain head: %w", err)
	}

	event.Seq = lastSeq + 1
	if event.ID.IsNil() {
		event.ID = id.NewAuditID()
	}
	event.PrevHash = lastHash
	event.EntryHash = audit.ChainHash(lastHash, event)

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_events (
			seq, id, attorney_id, client_id, session_id,
			action, category, status, details,
			client_ip, user_agent, request_id,
			occurred_at, prev_hash, entry_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		event.Seq,
		uuid.UUID(event.ID),
		uuid.UUID(event.AttorneyID),
		nullableUUID(uuid.UUID(event.ClientID)),
		nullableUUID(uuid.UUID(event.SessionID)),
		string(event.Action),
		string(event.Category),
		string(event.Status),
		details,
		event.ClientIP,
		event.UserAgent,
		event.RequestID,
		event.Timestamp.UTC(),
		event.PrevHash,
		event.EntryHash,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns matching events in append order. Attorney, status, category,
// and time filters are pushed to SQL; the rest is applied in memory.
func (s *Store) List(ctx context.Context, filter audit.Filter) ([]*audit.Event, error) {
	query := `
		SELECT seq, id, attorney_id, client_id, session_id,
		       action, category, status, details,
		       client_ip, user_agent, request_id,
		       occurred_at, prev_hash, entry_hash
		FROM audit_events
		WHERE 1=1
	`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.AttorneyID.IsNil() {
		query += " AND attorney_id = " + arg(uuid.UUID(filter.AttorneyID))
	}
	if !filter.ClientID.IsNil() {
		query += " AND client_id = " + arg(uuid.UUID(filter.ClientID))
	}
	if filter.Action != "" {
		query += " AND action = " + arg(string(filter.Action))
	}
	if filter.Category != "" {
		query += " AND category = " + arg(string(filter.Category))
	}
	if filter.Status != "" {
		query += " AND status = " + arg(string(filter.Status))
	}
	if !filter.Since.IsZero() {
		query += " AND occurred_at >= " + arg(filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		query += " AND occurred_at <= " + arg(filter.Until.UTC())
	}
	query += " ORDER BY seq ASC"

	rows, err := s.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if filter.Limit > 0 && len(events) > filter.Limit {
		events = events[len(events)-filter.Limit:]
	}
	return events, nil
}

// Last returns the chain head, or nil for an empty log.
func (s *Store) Last(ctx context.Context) (*audit.Event, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT seq, id, attorney_id, client_id, session_id,
		       action, category, status, details,
		       client_ip, user_agent, request_id,
		       occurred_at, prev_hash, entry_hash
		FROM audit_events ORDER BY seq DESC LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("query audit chain head: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}

func scanEvents(rows *sql.Rows) ([]*audit.Event, error) {
	var events []*audit.Event
	for rows.Next() {
		var (
			e          audit.Event
			eventID    uuid.UUID
			attorneyID uuid.UUID
			clientID   uuid.NullUUID
			sessionID  uuid.NullUUID
			action     string
			category   string
			status     string
			details    []byte
			occurredAt time.Time
		)
		if err := rows.Scan(
			&e.Seq, &eventID, &attorneyID, &clientID, &sessionID,
			&action, &category, &status, &details,
			&e.ClientIP, &e.UserAgent, &e.RequestID,
			&occurredAt, &e.PrevHash, &e.EntryHash,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		e.ID = id.AuditID(eventID)
		e.AttorneyID = id.AttorneyID(attorneyID)
		if clientID.Valid {
			e.ClientID = id.ClientID(clientID.UUID)
		}
		if sessionID.Valid {
			e.SessionID = id.SessionID(sessionID.UUID)
		}
		e.Action = audit.ActionType(action)
		e.Category = audit.RuleCategory(category)
		e.Status = audit.ComplianceStatus(status)
		e.Timestamp = occurredAt

		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func nullableUUID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}
