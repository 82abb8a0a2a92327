package generator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/taxolab/taxoquery/internal/httperr"
	"github.com/taxolab/taxoquery/internal/sheets"
	"github.com/taxolab/taxoquery/internal/sqlgen"
	"github.com/taxolab/taxoquery/internal/taxonomy"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	registry, err := sqlgen.DefaultRegistry()
	require.NoError(t, err)
	svc := NewService(registry, sqlgen.NewEngine(registry), nil, decimal.NewFromFloat(5.0))
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func newTestRouter(t *testing.T) (*Service, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	r := gin.New()
	svc.RegisterRoutes(r)
	return svc, r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func fixtureTaxonomy() *taxonomy.Taxonomy {
	return &taxonomy.Taxonomy{
		Events: []taxonomy.Event{
			{
				EventName: "level_complete",
				Platform:  "common",
				Parameters: []taxonomy.Parameter{
					{Name: "level", Type: taxonomy.TypeInt64, Scope: taxonomy.ScopeEvent},
					{Name: "duration", Type: taxonomy.TypeNumeric, Scope: taxonomy.ScopeEvent},
				},
			},
			{EventName: "purchase", Platform: "common"},
		},
		ProjectInfo: map[string]string{
			"bigquery_project": "analytics-prod",
			"dataset_id":       "analytics_123",
		},
	}
}

func textRow(cells ...string) sheets.RowData {
	values := make([]sheets.CellData, len(cells))
	for i, c := range cells {
		values[i] = sheets.CellData{FormattedValue: c}
	}
	return sheets.RowData{Values: values}
}

func fixtureDocument() sheets.Document {
	return sheets.Document{
		Sheets: []sheets.Sheet{
			{
				Properties: sheets.SheetProperties{Title: "Event Taxonomy"},
				Data: []sheets.GridData{{RowData: []sheets.RowData{
					textRow("Event Name", "Description", "Platform", "Category"),
					textRow("sign_up", "Account creation", "web", "onboarding"),
					textRow("", "", "", "", "method", "Signup method", "string", "event", "email", "Y"),
				}}},
			},
			{
				Properties: sheets.SheetProperties{Title: "Project Info"},
				Data: []sheets.GridData{{RowData: []sheets.RowData{
					textRow("BigQuery Project", "analytics-prod"),
					textRow("Dataset ID", "analytics_123"),
				}}},
			},
		},
	}
}

func TestListTemplatesHandler(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Templates []templateSummary `json:"templates"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Templates, 7)
	require.Equal(t, "eventOverview", resp.Templates[0].Key)
	require.NotEmpty(t, resp.Templates[0].Parameters)
}

func TestLoadTaxonomyHandler(t *testing.T) {
	svc, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/taxonomy", gin.H{
		"source_id": "sheet-1",
		"document":  fixtureDocument(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Events      int               `json:"events"`
		ProjectInfo map[string]string `json:"project_info"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, 1, resp.Events)
	require.Equal(t, "analytics-prod", resp.ProjectInfo["bigquery_project"])

	tax := svc.Taxonomy()
	require.NotNil(t, tax)
	require.Equal(t, "sign_up", tax.Events[0].EventName)
	require.Len(t, tax.Events[0].Parameters, 1)
}

func TestLoadTaxonomyHandler_InvalidBody(t *testing.T) {
	_, r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/taxonomy", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp httperr.ErrorResponse
	decodeBody(t, w, &resp)
	require.Equal(t, httperr.InvalidJSONError, resp.ErrorType)
}

func TestGetTaxonomyHandler(t *testing.T) {
	svc, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/taxonomy", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errResp httperr.ErrorResponse
	decodeBody(t, w, &errResp)
	require.Equal(t, httperr.TaxonomyNotLoaded, errResp.ErrorType)

	svc.SetTaxonomy(t.Context(), "sheet-1", fixtureTaxonomy())

	w = doJSON(t, r, http.MethodGet, "/v1/taxonomy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Taxonomy        taxonomy.Taxonomy               `json:"taxonomy"`
		Recommendations taxonomy.TemplateRecommendation `json:"recommendations"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Taxonomy.Events, 2)
	require.Equal(t, "level_complete", resp.Taxonomy.Events[0].EventName)
	require.Equal(t, "analytics-prod", resp.Taxonomy.ProjectInfo["bigquery_project"])
	require.True(t, resp.Recommendations.Ecommerce)
	require.True(t, resp.Recommendations.Custom)
}

func TestListEventsHandler(t *testing.T) {
	svc, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/taxonomy/events", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	svc.SetTaxonomy(t.Context(), "sheet-1", fixtureTaxonomy())

	w = doJSON(t, r, http.MethodGet, "/v1/taxonomy/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Events    []taxonomy.Event `json:"events"`
		Ecommerce []taxonomy.Event `json:"ecommerce"`
		Custom    []taxonomy.Event `json:"custom"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Events, 2)
	require.Len(t, resp.Ecommerce, 1)
	require.Equal(t, "purchase", resp.Ecommerce[0].EventName)
	require.Len(t, resp.Custom, 1)
	require.Equal(t, "level_complete", resp.Custom[0].EventName)
}

func TestGetEventHandler(t *testing.T) {
	svc, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/taxonomy/events/level_complete", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	svc.SetTaxonomy(t.Context(), "sheet-1", fixtureTaxonomy())

	w = doJSON(t, r, http.MethodGet, "/v1/taxonomy/events/level_complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Event taxonomy.Event `json:"event"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, "level_complete", resp.Event.EventName)
	require.Len(t, resp.Event.Parameters, 2)

	w = doJSON(t, r, http.MethodGet, "/v1/taxonomy/events/missing_event", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	var errResp httperr.ErrorResponse
	decodeBody(t, w, &errResp)
	require.Equal(t, httperr.EventNotFoundError, errResp.ErrorType)
}

func TestRecommendationsHandler(t *testing.T) {
	svc, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/taxonomy/recommendations", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errResp httperr.ErrorResponse
	decodeBody(t, w, &errResp)
	require.Equal(t, httperr.TaxonomyNotLoaded, errResp.ErrorType)

	svc.SetTaxonomy(t.Context(), "sheet-1", fixtureTaxonomy())

	w = doJSON(t, r, http.MethodGet, "/v1/taxonomy/recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		EcommerceEvents int `json:"ecommerce_events"`
		CustomEvents    int `json:"custom_events"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, 1, resp.EcommerceEvents)
	require.Equal(t, 1, resp.CustomEvents)
}

func TestGenerateHandler(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/sql/generate", gin.H{
		"template": "eventOverview",
		"parameters": gin.H{
			"project_id": "my-project",
			"dataset_id": "analytics_123",
			"start_date": "2024-01-01",
			"end_date":   "2024-01-31",
			"event_list": []string{"sign_up", "purchase"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp generateResponse
	decodeBody(t, w, &resp)
	require.Equal(t, "eventOverview", resp.Template)
	require.Contains(t, resp.SQL, "`my-project.analytics_123.events_*`")
	require.Contains(t, resp.SQL, "BETWEEN '20240101' AND '20240131'")
	require.Contains(t, resp.SQL, "'sign_up', 'purchase'")
	require.Empty(t, resp.Unfilled)
	require.Nil(t, resp.Cost)
}

func TestGenerateHandler_MissingParameters(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/sql/generate", gin.H{
		"template":   "eventOverview",
		"parameters": gin.H{"project_id": "my-project"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp httperr.ErrorResponse
	decodeBody(t, w, &resp)
	require.Equal(t, httperr.MissingParamsError, resp.ErrorType)
	details := resp.Details.(map[string]interface{})
	require.ElementsMatch(t,
		[]interface{}{"dataset_id", "start_date", "end_date"},
		details["missing"])
}

func TestGenerateHandler_UnknownTemplate(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/sql/generate", gin.H{
		"template": "nope",
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp httperr.ErrorResponse
	decodeBody(t, w, &resp)
	require.Equal(t, httperr.TemplateNotFoundError, resp.ErrorType)
}

func TestGenerateHandler_WithCostEstimate(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/sql/generate", gin.H{
		"template": "eventOverview",
		"parameters": gin.H{
			"project_id": "p",
			"dataset_id": "d",
			"start_date": "2024-01-01",
			"end_date":   "2024-01-31",
		},
		"estimated_gb": 1000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp generateResponse
	decodeBody(t, w, &resp)
	require.NotNil(t, resp.Cost)
	require.Equal(t, "5.0000", resp.Cost.EstimatedCost)
	require.Equal(t, "USD", resp.Cost.Currency)
}

func TestGenerateCustomHandler(t *testing.T) {
	svc, r := newTestRouter(t)

	body := gin.H{
		"event_name": "level_complete",
		"parameters": gin.H{
			"project_id": "p",
			"dataset_id": "d",
			"start_date": "2024-01-01",
			"end_date":   "2024-01-31",
		},
	}

	w := doJSON(t, r, http.MethodPost, "/v1/sql/generate-custom", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errResp httperr.ErrorResponse
	decodeBody(t, w, &errResp)
	require.Equal(t, httperr.TaxonomyNotLoaded, errResp.ErrorType)

	svc.SetTaxonomy(t.Context(), "sheet-1", fixtureTaxonomy())

	w = doJSON(t, r, http.MethodPost, "/v1/sql/generate-custom", body)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		EventName string `json:"event_name"`
		SQL       string `json:"sql"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, "level_complete", resp.EventName)
	require.Contains(t, resp.SQL, "-- level_complete event analysis")
	require.Contains(t, resp.SQL, "event_name = 'level_complete'")

	w = doJSON(t, r, http.MethodPost, "/v1/sql/generate-custom", gin.H{
		"event_name": "missing_event",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	decodeBody(t, w, &errResp)
	require.Equal(t, httperr.EventNotFoundError, errResp.ErrorType)
}

func TestGenerateBatchHandler(t *testing.T) {
	_, r := newTestRouter(t)

	params := gin.H{
		"project_id": "p",
		"dataset_id": "d",
		"start_date": "2024-01-01",
		"end_date":   "2024-01-31",
	}
	w := doJSON(t, r, http.MethodPost, "/v1/sql/generate-batch", gin.H{
		"requests": []gin.H{
			{"template": "eventOverview", "parameters": params},
			{"template": "nope", "parameters": params},
			{"template": "dailyTrends", "parameters": params},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []batchItem `json:"results"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Results, 3)

	require.Equal(t, "eventOverview", resp.Results[0].Template)
	require.NotEmpty(t, resp.Results[0].SQL)
	require.Nil(t, resp.Results[0].Error)

	require.Equal(t, "nope", resp.Results[1].Template)
	require.Empty(t, resp.Results[1].SQL)
	require.NotNil(t, resp.Results[1].Error)
	require.Equal(t, httperr.TemplateNotFoundError, resp.Results[1].Error.ErrorType)

	require.Equal(t, "dailyTrends", resp.Results[2].Template)
	require.NotEmpty(t, resp.Results[2].SQL)
}

func TestSuggestParametersHandler(t *testing.T) {
	svc, r := newTestRouter(t)
	svc.SetTaxonomy(t.Context(), "sheet-1", fixtureTaxonomy())

	w := doJSON(t, r, http.MethodPost, "/v1/sql/suggest-parameters", gin.H{
		"template": "eventOverview",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Template   string                 `json:"template"`
		Parameters []string               `json:"parameters"`
		DateRanges map[string]dateRange   `json:"date_ranges"`
		Defaults   map[string]interface{} `json:"defaults"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, "eventOverview", resp.Template)
	require.Contains(t, resp.Parameters, "project_id")

	require.Equal(t, dateRange{StartDate: "2025-06-14", EndDate: "2025-06-14"}, resp.DateRanges["yesterday"])
	require.Equal(t, dateRange{StartDate: "2025-06-08", EndDate: "2025-06-14"}, resp.DateRanges["last_7_days"])
	require.Equal(t, dateRange{StartDate: "2025-05-16", EndDate: "2025-06-14"}, resp.DateRanges["last_30_days"])

	require.Equal(t, "analytics-prod", resp.Defaults["project_id"])
	require.Equal(t, "analytics_123", resp.Defaults["dataset_id"])
	require.Equal(t, "level_complete", resp.Defaults["event_name"])
	require.Equal(t, []interface{}{"level_complete", "purchase"}, resp.Defaults["event_list"])
}

func TestSuggestParametersHandler_EventListCapped(t *testing.T) {
	svc, r := newTestRouter(t)

	tax := &taxonomy.Taxonomy{ProjectInfo: map[string]string{}}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		tax.Events = append(tax.Events, taxonomy.Event{EventName: name})
	}
	svc.SetTaxonomy(t.Context(), "sheet-1", tax)

	w := doJSON(t, r, http.MethodPost, "/v1/sql/suggest-parameters", gin.H{
		"template": "eventOverview",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Defaults map[string]interface{} `json:"defaults"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, "a", resp.Defaults["event_name"])
	require.Equal(t, []interface{}{"a", "b", "c", "d", "e"}, resp.Defaults["event_list"])
}

func TestSuggestParametersHandler_UnknownTemplate(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/sql/suggest-parameters", gin.H{
		"template": "nope",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}
