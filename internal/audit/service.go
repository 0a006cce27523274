package audit

import (
	"context"
	"time"

	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/requestcontext"
)

// Summary aggregates audit activity for compliance reporting.
type Summary struct {
	TotalEvents     int                      `json:"total_events"`
	ByStatus        map[ComplianceStatus]int `json:"by_status"`
	ByCategory      map[RuleCategory]int     `json:"by_category"`
	ComplianceScore float64                  `json:"compliance_score"`
}

// Report is a point-in-time compliance report over a filter window.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	PeriodStart time.Time `json:"period_start,omitempty"`
	PeriodEnd   time.Time `json:"period_end,omitempty"`
	Summary     Summary   `json:"summary"`
	Violations  []*Event  `json:"violations"`
}

// Service answers compliance queries over the audit log.
type Service struct {
	store Store
}

// NewService creates an audit query service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Summary computes aggregate counts and the compliance score for events
// matching the filter.
//
// The score weights warnings at half credit: (compliant + 0.5*warnings) /
// total * 100. An empty log scores 100.
func (s *Service) Summary(ctx context.Context, filter Filter) (*Summary, error) {
	events, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list audit events")
	}
	return summarize(events), nil
}

// ViolationsFor returns all violation entries recorded for an attorney.
func (s *Service) ViolationsFor(ctx context.Context, attorneyID id.AttorneyID) ([]*Event, error) {
	if attorneyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "attorney ID is required")
	}
	events, err := s.store.List(ctx, Filter{
		AttorneyID: attorneyID,
		Status:     StatusViolation,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list violations")
	}
	return events, nil
}

// Report builds a compliance report for the filter window, embedding both the
// summary and the individual violations.
func (s *Service) Report(ctx context.Context, filter Filter) (*Report, error) {
	events, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list audit events")
	}

	var violations []*Event
	for _, e := range events {
		if e.Status == StatusViolation {
			violations = append(violations, e)
		}
	}

	return &Report{
		GeneratedAt: requestcontext.Now(ctx),
		PeriodStart: filter.Since,
		PeriodEnd:   filter.Until,
		Summary:     *summarize(events),
		Violations:  violations,
	}, nil
}

// VerifyChain walks the full log and recomputes every entry hash. It returns
// the sequence number of the first tampered entry, or 0 and no error when the
// chain is intact.
func (s *Service) VerifyChain(ctx context.Context) (uint64, error) {
	events, err := s.store.List(ctx, Filter{})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "list audit events")
	}

	prev := ""
	for _, e := range events {
		if e.PrevHash != prev || ChainHash(prev, e) != e.EntryHash {
			return e.Seq, dErrors.New(dErrors.CodeInternal, "audit chain broken")
		}
		prev = e.EntryHash
	}
	return 0, nil
}

func summarize(events []*Event) *Summary {
	summary := &Summary{
		TotalEvents: len(events),
		ByStatus:    make(map[ComplianceStatus]int),
		ByCategory:  make(map[RuleCategory]int),
	}
	for _, e := range events {
		summary.ByStatus[e.Status]++
		summary.ByCategory[e.Category]++
	}

	if summary.TotalEvents == 0 {
		summary.ComplianceScore = 100.0
		return summary
	}

	compliant := float64(summary.ByStatus[StatusCompliant])
	warnings := float64(summary.ByStatus[StatusWarning])
	summary.ComplianceScore = (compliant + 0.5*warnings) / float64(summary.TotalEvents) * 100.0
	return summary
}
