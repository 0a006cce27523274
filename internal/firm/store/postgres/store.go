// Package postgres provides the durable firm stores.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"chamber/internal/firm"
	id "chamber/pkg/domain"
	"chamber/pkg/platform/sentinel"
	txcontext "chamber/pkg/platform/tx"
)

func querier(ctx context.Context, db *sql.DB) txcontext.DB {
	return txcontext.Active(ctx, db)
}

type AttorneyStore struct {
	db *sql.DB
}

func NewAttorneyStore(db *sql.DB) *AttorneyStore {
	return &AttorneyStore{db: db}
}

// Save inserts a new attorney or rewrites one that is not yet active. Active
// records never change through Save; the guarded upsert touches zero rows and
// that reports as sentinel.ErrInvalidState.
func (s *AttorneyStore) Save(ctx context.Context, attorney *firm.Attorney) error {
	result, err := querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO attorneys (id, name, bar_number, email, practice_areas, jurisdiction, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, bar_number = $3, email = $4, practice_areas = $5, jurisdiction = $6, active = $7
		WHERE NOT attorneys.active
	`, uuid.UUID(attorney.ID), attorney.Name, attorney.BarNumber, attorney.Email,
		pq.Array(attorney.PracticeAreas), attorney.Jurisdiction, attorney.Active, attorney.CreatedAt)
	if err != nil {
		return fmt.Errorf("save attorney: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save attorney: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *AttorneyStore) FindByID(ctx context.Context, attorneyID id.AttorneyID) (*firm.Attorney, error) {
	var (
		attorney firm.Attorney
		rawID    uuid.UUID
	)
	err := querier(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name, bar_number, email, practice_areas, jurisdiction, active, created_at
		FROM attorneys WHERE id = $1
	`, uuid.UUID(attorneyID)).Scan(&rawID, &attorney.Name, &attorney.BarNumber, &attorney.Email,
		pq.Array(&attorney.PracticeAreas), &attorney.Jurisdiction, &attorney.Active, &attorney.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find attorney: %w", err)
	}
	attorney.ID = id.AttorneyID(rawID)
	return &attorney, nil
}

func (s *AttorneyStore) Deactivate(ctx context.Context, attorneyID id.AttorneyID) error {
	result, err := querier(ctx, s.db).ExecContext(ctx, `
		UPDATE attorneys SET active = FALSE WHERE id = $1
	`, uuid.UUID(attorneyID))
	if err != nil {
		return fmt.Errorf("deactivate attorney: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate attorney: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type ClientStore struct {
	db *sql.DB
}

func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) Save(ctx context.Context, client *firm.Client) error {
	_, err := querier(ctx, s.db).ExecContext(ctx, `
		INSERT INTO clients (id, name, client_type, company_name, conflict_checked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET name = $2, client_type = $3, company_name = $4
	`, uuid.UUID(client.ID), client.Name, string(client.Type), client.CompanyName, client.ConflictChecked, client.CreatedAt)
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

func (s *ClientStore) MarkConflictChecked(ctx context.Context, clientID id.ClientID) error {
	result, err := querier(ctx, s.db).ExecContext(ctx, `
		UPDATE clients SET conflict_checked = TRUE WHERE id = $1
	`, uuid.UUID(clientID))
	if err != nil {
		return fmt.Errorf("mark client conflict checked: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark client conflict checked: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *ClientStore) FindByID(ctx context.Context, clientID id.ClientID) (*firm.Client, error) {
	rows, err := querier(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, client_type, company_name, conflict_checked, created_at
		FROM clients WHERE id = $1
	`, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	defer rows.Close()

	clients, err := scanClients(rows)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return clients[0], nil
}

func (s *ClientStore) FindByIDs(ctx context.Context, clientIDs []id.ClientID) ([]*firm.Client, error) {
	if len(clientIDs) == 0 {
		return nil, nil
	}

	rawIDs := make([]uuid.UUID, len(clientIDs))
	for i, clientID := range clientIDs {
		rawIDs[i] = uuid.UUID(clientID)
	}

	rows, err := querier(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, client_type, company_name, conflict_checked, created_at
		FROM clients WHERE id = ANY($1)
	`, pq.Array(rawIDs))
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	defer rows.Close()

	return scanClients(rows)
}

func scanClients(rows *sql.Rows) ([]*firm.Client, error) {
	var clients []*firm.Client
	for rows.Next() {
		var (
			client     firm.Client
			rawID      uuid.UUID
			clientType string
		)
		if err := rows.Scan(&rawID, &client.Name, &clientType, &client.CompanyName, &client.ConflictChecked, &client.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		client.ID = id.ClientID(rawID)
		client.Type = firm.ClientType(clientType)
		clients = append(clients, &client)
	}
	return clients, rows.Err()
}
