// Package postgres provides the durable relationship store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"chamber/internal/relationship"
	id "chamber/pkg/domain"
	"chamber/pkg/platform/sentinel"
	txcontext "chamber/pkg/platform/tx"
)

// uniqueViolation is the PostgreSQL error code raised by the
// UNIQUE(attorney_id, client_id) constraint.
const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) querier(ctx context.Context) txcontext.DB {
	return txcontext.Active(ctx, s.db)
}

func (s *Store) Save(ctx context.Context, rel *relationship.Relationship) error {
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO relationships (
			id, attorney_id, client_id, status, privilege_status,
			matter, engaged_at, terminated_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(rel.ID),
		uuid.UUID(rel.AttorneyID),
		uuid.UUID(rel.ClientID),
		string(rel.Status),
		string(rel.PrivilegeStatus),
		rel.Matter,
		rel.EngagedAt,
		rel.TerminatedAt,
		rel.CreatedAt,
		rel.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save relationship: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, rel *relationship.Relationship) error {
	result, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE relationships
		SET status = $2, privilege_status = $3, matter = $4,
		    terminated_at = $5, updated_at = $6
		WHERE id = $1
	`,
		uuid.UUID(rel.ID),
		string(rel.Status),
		string(rel.PrivilegeStatus),
		rel.Matter,
		rel.TerminatedAt,
		rel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update relationship: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update relationship: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, relID id.RelationshipID) (*relationship.Relationship, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(relID))
}

func (s *Store) FindByPair(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*relationship.Relationship, error) {
	return s.findOne(ctx, `WHERE attorney_id = $1 AND client_id = $2`, uuid.UUID(attorneyID), uuid.UUID(clientID))
}

func (s *Store) findOne(ctx context.Context, where string, args ...any) (*relationship.Relationship, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, selectRelationship+where, args...)
	if err != nil {
		return nil, fmt.Errorf("find relationship: %w", err)
	}
	defer rows.Close()

	rels, err := scanRelationships(rows)
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return rels[0], nil
}

func (s *Store) ListActiveByAttorney(ctx context.Context, attorneyID id.AttorneyID) ([]*relationship.Relationship, error) {
	rows, err := s.querier(ctx).QueryContext(ctx,
		selectRelationship+`WHERE attorney_id = $1 AND status = $2`,
		uuid.UUID(attorneyID), string(relationship.StatusActive),
	)
	if err != nil {
		return nil, fmt.Errorf("list active relationships: %w", err)
	}
	defer rows.Close()

	return scanRelationships(rows)
}

func (s *Store) SaveWaiver(ctx context.Context, waiver *relationship.Waiver) error {
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO waivers (
			id, relationship_id, client_signature, waiver_date,
			waiver_scope, attorney_approval, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (relationship_id) DO UPDATE SET
			client_signature = $3, waiver_date = $4,
			waiver_scope = $5, attorney_approval = $6, processed_at = $7
	`,
		uuid.UUID(waiver.ID),
		uuid.UUID(waiver.RelationshipID),
		waiver.ClientSignature,
		waiver.WaiverDate,
		waiver.WaiverScope,
		waiver.AttorneyApproval,
		waiver.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("save waiver: %w", err)
	}
	return nil
}

func (s *Store) FindWaiverByRelationship(ctx context.Context, relID id.RelationshipID) (*relationship.Waiver, error) {
	var (
		waiver     relationship.Waiver
		waiverID   uuid.UUID
		relationID uuid.UUID
	)
	err := s.querier(ctx).QueryRowContext(ctx, `
		SELECT id, relationship_id, client_signature, waiver_date,
		       waiver_scope, attorney_approval, processed_at
		FROM waivers WHERE relationship_id = $1
	`, uuid.UUID(relID)).Scan(
		&waiverID, &relationID, &waiver.ClientSignature, &waiver.WaiverDate,
		&waiver.WaiverScope, &waiver.AttorneyApproval, &waiver.ProcessedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find waiver: %w", err)
	}
	waiver.ID = id.WaiverID(waiverID)
	waiver.RelationshipID = id.RelationshipID(relationID)
	return &waiver, nil
}

const selectRelationship = `
	SELECT id, attorney_id, client_id, status, privilege_status,
	       matter, engaged_at, terminated_at, created_at, updated_at
	FROM relationships
`

func scanRelationships(rows *sql.Rows) ([]*relationship.Relationship, error) {
	var rels []*relationship.Relationship
	for rows.Next() {
		var (
			rel             relationship.Relationship
			relID           uuid.UUID
			attorneyID      uuid.UUID
			clientID        uuid.UUID
			status          string
			privilegeStatus string
			terminatedAt    sql.NullTime
		)
		if err := rows.Scan(
			&relID, &attorneyID, &clientID, &status, &privilegeStatus,
			&rel.Matter, &rel.EngagedAt, &terminatedAt, &rel.CreatedAt, &rel.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		rel.ID = id.RelationshipID(relID)
		rel.AttorneyID = id.AttorneyID(attorneyID)
		rel.ClientID = id.ClientID(clientID)
		rel.Status = relationship.Status(status)
		rel.PrivilegeStatus = relationship.PrivilegeStatus(privilegeStatus)
		if terminatedAt.Valid {
			rel.TerminatedAt = &terminatedAt.Time
		}
		rels = append(rels, &rel)
	}
	return rels, rows.Err()
}
