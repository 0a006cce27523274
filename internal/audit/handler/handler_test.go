package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamber/internal/audit"
	"chamber/internal/audit/handler"
	auditmemory "chamber/internal/audit/store/memory"
	"chamber/internal/platform/logger"
	id "chamber/pkg/domain"
	"chamber/pkg/testutil"
)

type fixture struct {
	router chi.Router
	store  *auditmemory.InMemoryStore
}

func newFixture() *fixture {
	store := auditmemory.NewInMemoryStore()
	router := chi.NewRouter()
	handler.New(audit.NewService(store), logger.NewNop()).Register(router)
	return &fixture{router: router, store: store}
}

func (f *fixture) seed(t *testing.T, attorneyID id.AttorneyID, action audit.ActionType, status audit.ComplianceStatus) {
	t.Helper()
	err := f.store.Append(context.Background(), &audit.Event{
		ID:         id.NewAuditID(),
		AttorneyID: attorneyID,
		Action:     action,
		Category:   action.Category(),
		Status:     status,
		Timestamp:  time.Now(),
	})
	require.NoError(t, err)
}

func (f *fixture) get(t *testing.T, attorneyID id.AttorneyID, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewRequest(t, http.MethodGet, path)
	req = testutil.WithAttorneyID(req, attorneyID.String())
	return testutil.DoRequest(f.router, req)
}

type summaryResult struct {
	TotalEvents     int     `json:"total_events"`
	ComplianceScore float64 `json:"compliance_score"`
}

func TestHandler_Summary(t *testing.T) {
	f := newFixture()
	attorney := id.NewAttorneyID()

	f.seed(t, attorney, audit.ActionSessionCreated, audit.StatusCompliant)
	f.seed(t, attorney, audit.ActionConflictCheck, audit.StatusWarning)
	f.seed(t, attorney, audit.ActionAccessDenied, audit.StatusViolation)
	f.seed(t, id.NewAttorneyID(), audit.ActionSessionCreated, audit.StatusCompliant)

	rr := f.get(t, attorney, "/audit/summary")
	testutil.AssertStatusOK(t, rr)

	summary := testutil.UnmarshalResponse[summaryResult](t, rr)
	assert.Equal(t, 3, summary.TotalEvents, "scoped to the authenticated attorney")
	assert.InDelta(t, 50.0, summary.ComplianceScore, 0.01)
}

func TestHandler_SummaryEmptyWindowIsFullyCompliant(t *testing.T) {
	f := newFixture()

	rr := f.get(t, id.NewAttorneyID(), "/audit/summary")
	testutil.AssertStatusOK(t, rr)

	summary := testutil.UnmarshalResponse[summaryResult](t, rr)
	assert.Equal(t, 0, summary.TotalEvents)
	assert.InDelta(t, 100.0, summary.ComplianceScore, 0.01)
}

func TestHandler_SummaryRejectsBadWindow(t *testing.T) {
	f := newFixture()

	rr := f.get(t, id.NewAttorneyID(), "/audit/summary?window_days=zero")
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "INVALID_INPUT")
}

type violationsResult struct {
	Violations []struct {
		Action string `json:"action"`
	} `json:"violations"`
	Count int `json:"count"`
}

func TestHandler_Violations(t *testing.T) {
	f := newFixture()
	attorney := id.NewAttorneyID()

	f.seed(t, attorney, audit.ActionSessionCreated, audit.StatusCompliant)
	f.seed(t, attorney, audit.ActionAccessDenied, audit.StatusViolation)

	rr := f.get(t, attorney, "/audit/violations")
	testutil.AssertStatusOK(t, rr)

	result := testutil.UnmarshalResponse[violationsResult](t, rr)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, string(audit.ActionAccessDenied), result.Violations[0].Action)
}

func TestHandler_ViolationsEmpty(t *testing.T) {
	f := newFixture()

	rr := f.get(t, id.NewAttorneyID(), "/audit/violations")
	testutil.AssertStatusOK(t, rr)

	result := testutil.UnmarshalResponse[violationsResult](t, rr)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Violations)
}

type reportResult struct {
	Summary    summaryResult `json:"summary"`
	Violations []struct {
		Action string `json:"action"`
	} `json:"violations"`
}

func TestHandler_Report(t *testing.T) {
	f := newFixture()
	attorney := id.NewAttorneyID()

	f.seed(t, attorney, audit.ActionRelationshipCreated, audit.StatusCompliant)
	f.seed(t, attorney, audit.ActionAccessDenied, audit.StatusViolation)

	rr := f.get(t, attorney, "/audit/report")
	testutil.AssertStatusOK(t, rr)

	report := testutil.UnmarshalResponse[reportResult](t, rr)
	assert.Equal(t, 2, report.Summary.TotalEvents)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, string(audit.ActionAccessDenied), report.Violations[0].Action)
}
