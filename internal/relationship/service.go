package relationship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chamber/internal/audit"
	"chamber/internal/conflict"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/platform/sentinel"
	"chamber/pkg/requestcontext"
)

// Screener is the conflict-screening dependency. Satisfied by
// conflict.Screener.
type Screener interface {
	Check(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID, matter string) (*conflict.Result, error)
}

// Service manages the relationship lifecycle. Creation runs inside a
// transaction so screening, persistence, and auditing land together.
type Service struct {
	store     Store
	tx        StoreTx
	screener  Screener
	publisher *audit.Publisher
	logger    *slog.Logger
}

func NewService(store Store, tx StoreTx, screener Screener, publisher *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		tx:        tx,
		screener:  screener,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateParams carries everything needed to form a relationship. Waiver is
// required only when screening finds waivable conflicts.
type CreateParams struct {
	AttorneyID id.AttorneyID
	ClientID   id.ClientID
	Matter     string
	Waiver     *Waiver
}

// Create screens the engagement and, if representation is permitted, persists
// the relationship with full privilege.
//
// Blocking conflicts refuse creation outright. Waivable conflicts require a
// complete waiver in the same request; a missing or incomplete waiver fails
// before anything is written.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Relationship, *conflict.Result, error) {
	if params.AttorneyID.IsNil() || params.ClientID.IsNil() {
		return nil, nil, dErrors.New(dErrors.CodeInvalidInput, "attorney and client IDs are required")
	}

	var (
		rel    *Relationship
		result *conflict.Result
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		screened, err := s.screener.Check(ctx, params.AttorneyID, params.ClientID, params.Matter)
		if err != nil {
			return err
		}
		result = screened

		if !screened.CanRepresent {
			return dErrors.New(dErrors.CodeConflictDetected, "representation blocked by conflict of interest")
		}
		if screened.RequiresWaiver {
			if params.Waiver == nil {
				return dErrors.New(dErrors.CodeConflictDetected, "conflict requires a signed waiver")
			}
			if err := params.Waiver.Validate(); err != nil {
				return err
			}
		}

		now := requestcontext.Now(ctx)
		rel = &Relationship{
			ID:              id.NewRelationshipID(),
			AttorneyID:      params.AttorneyID,
			ClientID:        params.ClientID,
			Status:          StatusActive,
			PrivilegeStatus: PrivilegeFull,
			Matter:          params.Matter,
			EngagedAt:       now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.store.Save(ctx, rel); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "relationship already exists for this attorney and client")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "save relationship")
		}

		status := audit.StatusCompliant
		details := map[string]string{
			"relationship_id": rel.ID.String(),
			"check_id":        screened.CheckID,
		}
		if screened.RequiresWaiver {
			waiver := *params.Waiver
			waiver.ID = id.NewWaiverID()
			waiver.RelationshipID = rel.ID
			waiver.ProcessedAt = now
			if err := s.store.SaveWaiver(ctx, &waiver); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "save waiver")
			}
			if err := s.publisher.Emit(ctx, audit.Event{
				AttorneyID: params.AttorneyID,
				ClientID:   params.ClientID,
				Action:     audit.ActionWaiverProcessed,
				Status:     audit.StatusWarning,
				Details:    map[string]string{"relationship_id": rel.ID.String(), "waiver_id": waiver.ID.String()},
			}); err != nil {
				return err
			}
			status = audit.StatusWarning
			details["waiver_id"] = waiver.ID.String()
		}

		return s.publisher.Emit(ctx, audit.Event{
			AttorneyID: params.AttorneyID,
			ClientID:   params.ClientID,
			Action:     audit.ActionRelationshipCreated,
			Status:     status,
			Details:    details,
		})
	})
	if err != nil {
		return nil, result, err
	}
	return rel, result, nil
}

// Verify confirms an active privileged relationship exists between the
// attorney and client. A failed verification is itself audited as a
// violation before the error returns.
func (s *Service) Verify(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*Relationship, error) {
	rel, err := s.store.FindByPair(ctx, attorneyID, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.denyVerification(ctx, attorneyID, clientID, "no relationship on record")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find relationship")
	}

	if !rel.IsPrivileged() {
		reason := fmt.Sprintf("relationship is %s with privilege status %s", rel.Status, rel.PrivilegeStatus)
		return nil, s.denyVerification(ctx, attorneyID, clientID, reason)
	}

	if err := s.publisher.Emit(ctx, audit.Event{
		AttorneyID: attorneyID,
		ClientID:   clientID,
		Action:     audit.ActionRelationshipVerified,
		Status:     audit.StatusCompliant,
		Details:    map[string]string{"relationship_id": rel.ID.String()},
	}); err != nil {
		return nil, err
	}
	return rel, nil
}

func (s *Service) denyVerification(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID, reason string) error {
	if err := s.publisher.Emit(ctx, audit.Event{
		AttorneyID: attorneyID,
		ClientID:   clientID,
		Action:     audit.ActionRelationshipVerified,
		Status:     audit.StatusViolation,
		Details:    map[string]string{"reason": reason},
	}); err != nil {
		return err
	}
	return dErrors.New(dErrors.CodePermission, "no privileged relationship between attorney and client")
}

// Terminate ends an active relationship. Communications stored during the
// engagement keep their protection; only new activity is barred.
func (s *Service) Terminate(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*Relationship, error) {
	var rel *Relationship
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		found, err := s.store.FindByPair(ctx, attorneyID, clientID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "relationship not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "find relationship")
		}
		if found.Status == StatusTerminated {
			return dErrors.New(dErrors.CodeInvalidInput, "relationship is already terminated")
		}

		now := requestcontext.Now(ctx)
		found.Status = StatusTerminated
		found.TerminatedAt = &now
		found.UpdatedAt = now
		if err := s.store.Update(ctx, found); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update relationship")
		}
		rel = found

		return s.publisher.Emit(ctx, audit.Event{
			AttorneyID: attorneyID,
			ClientID:   clientID,
			Action:     audit.ActionRelationshipTerminated,
			Status:     audit.StatusCompliant,
			Details:    map[string]string{"relationship_id": found.ID.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// ProcessWaiver attaches a signed waiver to an existing relationship, for
// conflicts surfaced after the engagement was formed.
func (s *Service) ProcessWaiver(ctx context.Context, relID id.RelationshipID, waiver Waiver) (*Waiver, error) {
	if err := waiver.Validate(); err != nil {
		return nil, err
	}

	var saved *Waiver
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rel, err := s.store.FindByID(ctx, relID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "relationship not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "find relationship")
		}

		waiver.ID = id.NewWaiverID()
		waiver.RelationshipID = rel.ID
		waiver.ProcessedAt = requestcontext.Now(ctx)
		if err := s.store.SaveWaiver(ctx, &waiver); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "save waiver")
		}
		saved = &waiver

		return s.publisher.Emit(ctx, audit.Event{
			AttorneyID: rel.AttorneyID,
			ClientID:   rel.ClientID,
			Action:     audit.ActionWaiverProcessed,
			Status:     audit.StatusWarning,
			Details:    map[string]string{"relationship_id": rel.ID.String(), "waiver_id": waiver.ID.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
