package generator

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/taxolab/taxoquery/internal/httperr"
	"github.com/taxolab/taxoquery/internal/metrics"
	"github.com/taxolab/taxoquery/internal/sheets"
	"github.com/taxolab/taxoquery/internal/sqlgen"
)

const (
	msgInvalidJSON       = "Invalid JSON body"
	msgTaxonomyNotLoaded = "No taxonomy loaded"
	msgEventNotFound     = "Event not found in taxonomy"
)

// apiError carries the structured HTTP error shape from a helper back to the
// handler. Helpers return this instead of writing to gin.Context directly,
// keeping them decoupled from HTTP.
type apiError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *apiError) Error() string {
	return e.message
}

// writeError serializes an apiError as the JSON HTTP response.
func writeError(c *gin.Context, err *apiError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}

// RegisterRoutes mounts the v1 API onto the router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.GET("/templates", s.ListTemplatesHandler)
	v1.POST("/taxonomy", s.LoadTaxonomyHandler)
	v1.GET("/taxonomy", s.GetTaxonomyHandler)
	v1.GET("/taxonomy/recommendations", s.RecommendationsHandler)
	v1.GET("/taxonomy/events", s.ListEventsHandler)
	v1.GET("/taxonomy/events/:name", s.GetEventHandler)
	v1.POST("/sql/generate", s.GenerateHandler)
	v1.POST("/sql/generate-custom", s.GenerateCustomHandler)
	v1.POST("/sql/generate-batch", s.GenerateBatchHandler)
	v1.POST("/sql/suggest-parameters", s.SuggestParametersHandler)
}

// templateSummary is the list representation of a catalog entry. Bodies are
// deliberately omitted; callers render through the generate endpoints.
type templateSummary struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}

// ListTemplatesHandler returns the template catalog in registration order.
func (s *Service) ListTemplatesHandler(c *gin.Context) {
	tmpls := s.registry.List()
	out := make([]templateSummary, 0, len(tmpls))
	for _, t := range tmpls {
		out = append(out, templateSummary{
			Key:         t.Key,
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}

type loadTaxonomyRequest struct {
	SourceID string          `json:"source_id"`
	Document sheets.Document `json:"document"`
}

// LoadTaxonomyHandler parses a spreadsheet document into a taxonomy, makes
// it the current one and persists a snapshot when a store is configured.
func (s *Service) LoadTaxonomyHandler(c *gin.Context) {
	var req loadTaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.InvalidJSONError,
			message:    msgInvalidJSON,
		})
		return
	}

	tax, err := s.parser.Parse(&req.Document)
	if err != nil {
		metrics.TaxonomyParses.WithLabelValues("error").Inc()
		slog.Warn("Taxonomy parse failed", "source_id", req.SourceID, "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.InvalidDocumentError,
			message:    err.Error(),
		})
		return
	}
	metrics.TaxonomyParses.WithLabelValues("ok").Inc()

	s.SetTaxonomy(c.Request.Context(), req.SourceID, tax)

	slog.Info("Taxonomy loaded",
		"source_id", req.SourceID,
		"events", len(tax.Events),
		"project_keys", len(tax.ProjectInfo))

	c.JSON(http.StatusOK, gin.H{
		"events":       len(tax.Events),
		"project_info": tax.ProjectInfo,
		"metadata":     tax.Metadata,
	})
}

// GetTaxonomyHandler returns the full current taxonomy together with its
// template recommendations.
func (s *Service) GetTaxonomyHandler(c *gin.Context) {
	tax := s.Taxonomy()
	if tax == nil {
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.TaxonomyNotLoaded,
			message:    msgTaxonomyNotLoaded,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taxonomy":        tax,
		"recommendations": tax.RecommendTemplates(),
	})
}

// ListEventsHandler returns the current taxonomy's events, bucketed into
// the full list plus the standard-commerce and custom subsets.
func (s *Service) ListEventsHandler(c *gin.Context) {
	tax := s.Taxonomy()
	if tax == nil {
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.TaxonomyNotLoaded,
			message:    msgTaxonomyNotLoaded,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":    tax.Events,
		"ecommerce": tax.EcommerceEvents(),
		"custom":    tax.CustomEvents(),
	})
}

// GetEventHandler returns a single event by name. Lookup is first-match,
// same as the generation endpoints.
func (s *Service) GetEventHandler(c *gin.Context) {
	tax := s.Taxonomy()
	if tax == nil {
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.TaxonomyNotLoaded,
			message:    msgTaxonomyNotLoaded,
		})
		return
	}

	name := c.Param("name")
	event := tax.EventByName(name)
	if event == nil {
		writeError(c, &apiError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.EventNotFoundError,
			message:    msgEventNotFound,
			details:    map[string]interface{}{"event_name": name},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// RecommendationsHandler classifies the current taxonomy's events and
// recommends template groups.
func (s *Service) RecommendationsHandler(c *gin.Context) {
	tax := s.Taxonomy()
	if tax == nil {
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.TaxonomyNotLoaded,
			message:    msgTaxonomyNotLoaded,
		})
		return
	}

	rec := tax.RecommendTemplates()
	c.JSON(http.StatusOK, gin.H{
		"recommendations":  rec,
		"ecommerce_events": len(tax.EcommerceEvents()),
		"custom_events":    len(tax.CustomEvents()),
	})
}

type generateRequest struct {
	Template    string        `json:"template"`
	Parameters  sqlgen.Params `json:"parameters"`
	EstimatedGB *float64      `json:"estimated_gb,omitempty"`
}

type generateResponse struct {
	Template string               `json:"template"`
	SQL      string               `json:"sql"`
	Unfilled []string             `json:"unfilled,omitempty"`
	Cost     *sqlgen.CostEstimate `json:"cost,omitempty"`
}

// generate runs validation and rendering for one request. Shared between the
// single and batch endpoints.
func (s *Service) generate(req generateRequest) (*generateResponse, *apiError) {
	if req.Parameters == nil {
		req.Parameters = sqlgen.Params{}
	}

	if err := s.engine.ValidateParameters(req.Template, req.Parameters); err != nil {
		var missing *sqlgen.MissingParametersError
		if errors.As(err, &missing) {
			metrics.RenderErrors.WithLabelValues(httperr.MissingParamsError).Inc()
			return nil, &apiError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.MissingParamsError,
				message:    err.Error(),
				details:    map[string]interface{}{"missing": missing.Missing},
			}
		}
		metrics.RenderErrors.WithLabelValues(httperr.TemplateNotFoundError).Inc()
		return nil, &apiError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.TemplateNotFoundError,
			message:    err.Error(),
		}
	}

	result, err := s.engine.Render(req.Template, req.Parameters, s.Taxonomy())
	if err != nil {
		metrics.RenderErrors.WithLabelValues(httperr.InternalError).Inc()
		slog.Error("Template render failed", "template", req.Template, "error", err)
		return nil, &apiError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.InternalError,
			message:    err.Error(),
		}
	}
	metrics.SQLRenders.WithLabelValues(req.Template).Inc()

	resp := &generateResponse{
		Template: req.Template,
		SQL:      result.SQL,
		Unfilled: result.Unfilled,
	}
	if req.EstimatedGB != nil {
		cost := sqlgen.EstimateCost(decimal.NewFromFloat(*req.EstimatedGB), s.pricePerTB)
		resp.Cost = &cost
	}
	return resp, nil
}

// GenerateHandler validates parameters against a template and renders it.
func (s *Service) GenerateHandler(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.InvalidJSONError,
			message:    msgInvalidJSON,
		})
		return
	}

	resp, apiErr := s.generate(req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	slog.Info("Generated SQL",
		"template", req.Template,
		"unfilled", len(resp.Unfilled))
	c.JSON(http.StatusOK, resp)
}

type generateCustomRequest struct {
	EventName  string        `json:"event_name"`
	Parameters sqlgen.Params `json:"parameters"`
}

// GenerateCustomHandler assembles the fixed-shape analysis query for one
// event of the current taxonomy.
func (s *Service) GenerateCustomHandler(c *gin.Context) {
	var req generateCustomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.InvalidJSONError,
			message:    msgInvalidJSON,
		})
		return
	}

	tax := s.Taxonomy()
	if tax == nil {
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.TaxonomyNotLoaded,
			message:    msgTaxonomyNotLoaded,
		})
		return
	}

	event := tax.EventByName(req.EventName)
	if event == nil {
		metrics.RenderErrors.WithLabelValues(httperr.EventNotFoundError).Inc()
		writeError(c, &apiError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.EventNotFoundError,
			message:    msgEventNotFound,
			details:    map[string]interface{}{"event_name": req.EventName},
		})
		return
	}

	if req.Parameters == nil {
		req.Parameters = sqlgen.Params{}
	}
	sql := sqlgen.GenerateCustomSQL(event, req.Parameters)
	metrics.SQLRenders.WithLabelValues("custom").Inc()

	c.JSON(http.StatusOK, gin.H{
		"event_name": event.EventName,
		"sql":        sql,
	})
}

type batchRequest struct {
	Requests []generateRequest `json:"requests"`
}

// batchItem is one entry of the batch response. Either SQL or Error is set.
type batchItem struct {
	Template string                 `json:"template"`
	SQL      string                 `json:"sql,omitempty"`
	Unfilled []string               `json:"unfilled,omitempty"`
	Cost     *sqlgen.CostEstimate   `json:"cost,omitempty"`
	Error    *httperr.ErrorResponse `json:"error,omitempty"`
}

// GenerateBatchHandler renders several templates concurrently. Per-item
// failures are reported in place; the batch itself always returns 200.
func (s *Service) GenerateBatchHandler(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.InvalidJSONError,
			message:    msgInvalidJSON,
		})
		return
	}

	items := make([]batchItem, len(req.Requests))
	g, _ := errgroup.WithContext(c.Request.Context())
	for i, r := range req.Requests {
		g.Go(func() error {
			resp, apiErr := s.generate(r)
			if apiErr != nil {
				items[i] = batchItem{
					Template: r.Template,
					Error: &httperr.ErrorResponse{
						ErrorType: apiErr.errorType,
						Message:   apiErr.message,
						Details:   apiErr.details,
					},
				}
				return nil
			}
			items[i] = batchItem{
				Template: resp.Template,
				SQL:      resp.SQL,
				Unfilled: resp.Unfilled,
				Cost:     resp.Cost,
			}
			return nil
		})
	}
	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()

	c.JSON(http.StatusOK, gin.H{"results": items})
}

type suggestRequest struct {
	Template string `json:"template"`
}

// suggestedEventListLen caps the suggested event_list value.
const suggestedEventListLen = 5

type dateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SuggestParametersHandler proposes starting values for a template's
// parameters: common date ranges, project identifiers from the info sheet,
// and event defaults (first event, first few event names) from the current
// taxonomy.
func (s *Service) SuggestParametersHandler(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err)
		writeError(c, &apiError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.InvalidJSONError,
			message:    msgInvalidJSON,
		})
		return
	}

	tmpl, err := s.registry.Get(req.Template)
	if err != nil {
		writeError(c, &apiError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.TemplateNotFoundError,
			message:    err.Error(),
		})
		return
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format("2006-01-02")
	}
	ranges := map[string]dateRange{
		"yesterday":    {StartDate: day(-1), EndDate: day(-1)},
		"last_7_days":  {StartDate: day(-7), EndDate: day(-1)},
		"last_30_days": {StartDate: day(-30), EndDate: day(-1)},
	}

	defaults := map[string]interface{}{}
	if tax := s.Taxonomy(); tax != nil {
		if v, ok := tax.ProjectInfo["bigquery_project"]; ok {
			defaults[sqlgen.ParamProjectID] = v
		} else if v, ok := tax.ProjectInfo["ga4_property_id"]; ok {
			defaults[sqlgen.ParamProjectID] = v
		}
		if v, ok := tax.ProjectInfo["dataset_id"]; ok {
			defaults[sqlgen.ParamDatasetID] = v
		}
		if len(tax.Events) > 0 {
			defaults[sqlgen.ParamEventName] = tax.Events[0].EventName
			list := make([]string, 0, suggestedEventListLen)
			for _, e := range tax.Events {
				list = append(list, e.EventName)
				if len(list) == suggestedEventListLen {
					break
				}
			}
			defaults[sqlgen.ParamEventList] = list
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"template":    tmpl.Key,
		"parameters":  tmpl.Parameters,
		"date_ranges": ranges,
		"defaults":    defaults,
	})
}
