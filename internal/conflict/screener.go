package conflict

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chamber/internal/audit"
	"chamber/internal/firm"
	"chamber/internal/platform/metrics"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/requestcontext"
)

// EngagementSource supplies the attorney's active representations. The
// relationship layer implements it; the screener stays decoupled from how
// relationships are stored.
type EngagementSource interface {
	ActiveEngagements(ctx context.Context, attorneyID id.AttorneyID) ([]ActiveEngagement, error)
}

// adverseMarkers are matter-description tokens that signal representation
// against a party rather than alongside it.
var adverseMarkers = []string{" v. ", " v ", "versus", "against", "adverse to"}

// Screener runs conflict-of-interest checks. Every run is audited whether or
// not conflicts are found; a screening that cannot be audited fails.
type Screener struct {
	engagements EngagementSource
	clients     firm.ClientStore
	publisher   *audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewScreener(
	engagements EngagementSource,
	clients firm.ClientStore,
	publisher *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Screener {
	return &Screener{
		engagements: engagements,
		clients:     clients,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// Check screens a prospective engagement for the given attorney and client.
// The matter description is matched against existing representations to
// detect direct adversity.
func (s *Screener) Check(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID, matter string) (*Result, error) {
	if attorneyID.IsNil() || clientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "attorney and client IDs are required")
	}

	var (
		prospective *firm.Client
		engagements []ActiveEngagement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		client, err := s.clients.FindByID(gctx, clientID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "prospective client not found")
		}
		prospective = client
		return nil
	})
	g.Go(func() error {
		active, err := s.engagements.ActiveEngagements(gctx, attorneyID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "load active engagements")
		}
		engagements = active
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	conflicts := s.detect(prospective, engagements, matter)

	result := &Result{
		CheckID:    uuid.NewString(),
		AttorneyID: attorneyID,
		ClientID:   clientID,
		Conflicts:  conflicts,
		CheckedAt:  requestcontext.Now(ctx),
	}
	result.CanRepresent = true
	for _, c := range conflicts {
		if c.Blocking {
			result.CanRepresent = false
		}
	}
	result.RequiresWaiver = result.CanRepresent && requiresWaiver(conflicts)

	if err := s.audit(ctx, result); err != nil {
		return nil, err
	}

	// The flag records that screening happened at least once; losing the
	// update does not invalidate the result.
	if err := s.clients.MarkConflictChecked(ctx, clientID); err != nil {
		s.logger.WarnContext(ctx, "failed to flag client as conflict checked",
			"client_id", clientID,
			"error", err,
		)
	}

	if s.metrics != nil {
		s.metrics.ConflictChecks.WithLabelValues(outcomeLabel(result)).Inc()
	}
	return result, nil
}

func (s *Screener) detect(prospective *firm.Client, engagements []ActiveEngagement, matter string) []Conflict {
	var conflicts []Conflict
	prospectiveCompany := prospective.NormalizedCompanyName()

	for _, engagement := range engagements {
		if engagement.ClientID == prospective.ID {
			conflicts = append(conflicts, Conflict{
				Type:         TypeExistingClient,
				WithClientID: engagement.ClientID,
				Description:  fmt.Sprintf("attorney already represents %s", engagement.ClientName),
				Blocking:     false,
				Waivable:     true,
			})
			continue
		}

		if isAdverse(matter, engagement.ClientName) || isAdverse(engagement.Matter, prospective.Name) {
			conflicts = append(conflicts, Conflict{
				Type:         TypeDirect,
				WithClientID: engagement.ClientID,
				Description:  fmt.Sprintf("matter is directly adverse to existing client %s", engagement.ClientName),
				Blocking:     true,
				Waivable:     false,
			})
			continue
		}

		if prospectiveCompany != "" && firm.NormalizeCompanyName(engagement.CompanyName) == prospectiveCompany {
			conflicts = append(conflicts, Conflict{
				Type:         TypeBusiness,
				WithClientID: engagement.ClientID,
				Description:  fmt.Sprintf("shares business entity %q with existing client %s", engagement.CompanyName, engagement.ClientName),
				Blocking:     false,
				Waivable:     true,
			})
		}
	}
	return conflicts
}

func (s *Screener) audit(ctx context.Context, result *Result) error {
	status := audit.StatusCompliant
	if !result.CanRepresent {
		status = audit.StatusReviewRequired
	} else if result.RequiresWaiver {
		status = audit.StatusWarning
	}

	return s.publisher.Emit(ctx, audit.Event{
		AttorneyID: result.AttorneyID,
		ClientID:   result.ClientID,
		Action:     audit.ActionConflictCheck,
		Status:     status,
		Details: map[string]string{
			"check_id":        result.CheckID,
			"conflicts_found": fmt.Sprintf("%d", len(result.Conflicts)),
			"can_represent":   fmt.Sprintf("%t", result.CanRepresent),
			"requires_waiver": fmt.Sprintf("%t", result.RequiresWaiver),
		},
	})
}

// requiresWaiver ignores informational existing-client notes: re-engaging a
// current client is not a waiver event.
func requiresWaiver(conflicts []Conflict) bool {
	waivable := false
	for _, c := range conflicts {
		if c.Type == TypeExistingClient {
			continue
		}
		if !c.Waivable {
			return false
		}
		waivable = true
	}
	return waivable
}

func isAdverse(matter, partyName string) bool {
	if matter == "" || partyName == "" {
		return false
	}
	loweredMatter := strings.ToLower(matter)
	if !strings.Contains(loweredMatter, strings.ToLower(partyName)) {
		return false
	}
	for _, marker := range adverseMarkers {
		if strings.Contains(loweredMatter, marker) {
			return true
		}
	}
	return false
}

func outcomeLabel(result *Result) string {
	switch {
	case !result.CanRepresent:
		return "blocked"
	case result.RequiresWaiver:
		return "waiver_required"
	case len(result.Conflicts) > 0:
		return "noted"
	default:
		return "clear"
	}
}
