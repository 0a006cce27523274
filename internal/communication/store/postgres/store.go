// Package postgres provides the durable communication store. Content is
// stored as an opaque ciphertext column; the embedded access log lives in a
// jsonb column appended in place.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"chamber/internal/communication"
	id "chamber/pkg/domain"
	"chamber/pkg/platform/sentinel"
	txcontext "chamber/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) querier(ctx context.Context) txcontext.DB {
	return txcontext.Active(ctx, s.db)
}

func (s *Store) Save(ctx context.Context, comm *communication.Communication) error {
	accessLog, err := json.Marshal(comm.AccessLog)
	if err != nil {
		return fmt.Errorf("marshal access log: %w", err)
	}

	_, err = s.querier(ctx).ExecContext(ctx, `
		INSERT INTO privileged_communications (
			id, attorney_id, client_id, comm_type, ciphertext,
			participants, work_product, retention_policy, access_log, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(comm.ID),
		uuid.UUID(comm.AttorneyID),
		uuid.UUID(comm.ClientID),
		string(comm.Type),
		comm.Ciphertext,
		pq.Array(comm.Participants),
		comm.WorkProduct,
		comm.RetentionPolicy,
		accessLog,
		comm.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save communication: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, communicationID id.CommunicationID) (*communication.Communication, error) {
	rows, err := s.querier(ctx).QueryContext(ctx,
		selectCommunication+`WHERE id = $1`, uuid.UUID(communicationID))
	if err != nil {
		return nil, fmt.Errorf("find communication: %w", err)
	}
	defer rows.Close()

	comms, err := scanCommunications(rows)
	if err != nil {
		return nil, err
	}
	if len(comms) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return comms[0], nil
}

func (s *Store) ListByPair(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) ([]*communication.Communication, error) {
	rows, err := s.querier(ctx).QueryContext(ctx,
		selectCommunication+`WHERE attorney_id = $1 AND client_id = $2 ORDER BY created_at`,
		uuid.UUID(attorneyID), uuid.UUID(clientID),
	)
	if err != nil {
		return nil, fmt.Errorf("list communications: %w", err)
	}
	defer rows.Close()

	return scanCommunications(rows)
}

func (s *Store) AppendAccess(ctx context.Context, communicationID id.CommunicationID, record communication.AccessRecord) error {
	entry, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal access record: %w", err)
	}

	result, err := s.querier(ctx).ExecContext(ctx, `
		UPDATE privileged_communications
		SET access_log = access_log || $2::jsonb
		WHERE id = $1
	`, uuid.UUID(communicationID), entry)
	if err != nil {
		return fmt.Errorf("append access record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("append access record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const selectCommunication = `
	SELECT id, attorney_id, client_id, comm_type, ciphertext,
	       participants, work_product, retention_policy, access_log, created_at
	FROM privileged_communications
`

func scanCommunications(rows *sql.Rows) ([]*communication.Communication, error) {
	var comms []*communication.Communication
	for rows.Next() {
		var (
			comm            communication.Communication
			communicationID uuid.UUID
			attorneyID      uuid.UUID
			clientID        uuid.UUID
			commType        string
			accessLog       []byte
		)
		if err := rows.Scan(
			&communicationID, &attorneyID, &clientID, &commType, &comm.Ciphertext,
			pq.Array(&comm.Participants), &comm.WorkProduct, &comm.RetentionPolicy,
			&accessLog, &comm.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan communication: %w", err)
		}
		if err := json.Unmarshal(accessLog, &comm.AccessLog); err != nil {
			return nil, fmt.Errorf("unmarshal access log: %w", err)
		}
		comm.ID = id.CommunicationID(communicationID)
		comm.AttorneyID = id.AttorneyID(attorneyID)
		comm.ClientID = id.ClientID(clientID)
		comm.Type = communication.Type(commType)
		comms = append(comms, &comm)
	}
	return comms, rows.Err()
}
