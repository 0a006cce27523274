package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamber/internal/firm/handler"
	firmmemory "chamber/internal/firm/store/memory"
	"chamber/internal/platform/logger"
	id "chamber/pkg/domain"
	"chamber/pkg/testutil"
)

func newRouter() chi.Router {
	router := chi.NewRouter()
	h := handler.New(firmmemory.NewAttorneyStore(), firmmemory.NewClientStore(), logger.NewNop())
	h.Register(router)
	return router
}

func do(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	req = testutil.WithAttorneyID(req, id.NewAttorneyID().String())
	return testutil.DoRequest(router, req)
}

type attorneyResult struct {
	AttorneyID    string   `json:"attorney_id"`
	Name          string   `json:"name"`
	BarNumber     string   `json:"bar_number"`
	PracticeAreas []string `json:"practice_areas"`
	Jurisdiction  string   `json:"jurisdiction"`
	Active        bool     `json:"active"`
}

func TestHandler_CreateAttorney(t *testing.T) {
	router := newRouter()

	rr := do(t, router, http.MethodPost, "/attorneys", map[string]any{
		"name":           "Jordan Ellis",
		"bar_number":     "NY-443211",
		"email":          "jellis@firm.example",
		"practice_areas": []string{"litigation", "securities"},
		"jurisdiction":   "NY",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)

	created := testutil.UnmarshalResponse[attorneyResult](t, rr)
	assert.Equal(t, "Jordan Ellis", created.Name)
	assert.Equal(t, "NY-443211", created.BarNumber)
	assert.Equal(t, []string{"litigation", "securities"}, created.PracticeAreas)
	assert.Equal(t, "NY", created.Jurisdiction)
	assert.True(t, created.Active)

	_, err := id.ParseAttorneyID(created.AttorneyID)
	require.NoError(t, err)

	rr = do(t, router, http.MethodGet, "/attorneys/"+created.AttorneyID, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "name", "Jordan Ellis")
}

func TestHandler_DeactivateAttorney(t *testing.T) {
	router := newRouter()

	rr := do(t, router, http.MethodPost, "/attorneys", map[string]any{
		"name":       "Morgan Reyes",
		"bar_number": "CA-991204",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[attorneyResult](t, rr)
	require.True(t, created.Active)

	rr = do(t, router, http.MethodPost, "/attorneys/"+created.AttorneyID+"/deactivate", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	deactivated := testutil.UnmarshalResponse[attorneyResult](t, rr)
	assert.False(t, deactivated.Active)

	rr = do(t, router, http.MethodGet, "/attorneys/"+created.AttorneyID, nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.False(t, testutil.UnmarshalResponse[attorneyResult](t, rr).Active)
}

func TestHandler_DeactivateUnknownAttorney(t *testing.T) {
	router := newRouter()

	rr := do(t, router, http.MethodPost, "/attorneys/"+id.NewAttorneyID().String()+"/deactivate", nil)
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func TestHandler_CreateAttorneyMissingBarNumber(t *testing.T) {
	router := newRouter()

	rr := do(t, router, http.MethodPost, "/attorneys", map[string]string{"name": "No Bar"})
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "INVALID_INPUT")
}

func TestHandler_GetUnknownAttorney(t *testing.T) {
	router := newRouter()

	rr := do(t, router, http.MethodGet, "/attorneys/"+id.NewAttorneyID().String(), nil)
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func TestHandler_CreateClient(t *testing.T) {
	router := newRouter()

	rr := do(t, router, http.MethodPost, "/clients", map[string]string{
		"name":         "Acme Corp",
		"type":         "corporate",
		"company_name": "Acme Corporation Inc.",
	})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "type", "corporate")
}

func TestHandler_CreateClientDefaultsToIndividual(t *testing.T) {
	router := newRouter()

	rr := do(t, router, http.MethodPost, "/clients", map[string]string{"name": "Pat Doe"})
	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONContains(t, rr, "type", "individual")
}

func TestHandler_CreateClientUnknownType(t *testing.T) {
	router := newRouter()

	rr := do(t, router, http.MethodPost, "/clients", map[string]string{
		"name": "Acme Corp",
		"type": "syndicate",
	})
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "INVALID_INPUT")
}
