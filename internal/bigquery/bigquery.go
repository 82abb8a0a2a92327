// Package bigquery declares the query-execution collaborator surface and
// the pure helpers around it. Actually issuing jobs against the warehouse
// is an external concern; this module only shapes requests and post-
// processes results.
package bigquery

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/taxolab/taxoquery/internal/sqlgen"
)

// FieldSchema describes one output column of a query result.
type FieldSchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Row is one result row, values in schema field order.
type Row []any

// QueryResult is the outcome of an executed query.
type QueryResult struct {
	Rows                []Row         `json:"rows"`
	TotalRows           int64         `json:"total_rows"`
	Schema              []FieldSchema `json:"schema"`
	TotalBytesProcessed int64         `json:"total_bytes_processed"`
	CacheHit            bool          `json:"cache_hit"`
}

// DryRunResult is the outcome of a validation-only run: no rows, just the
// scan statistics the cost estimate is derived from.
type DryRunResult struct {
	Valid               bool   `json:"valid"`
	TotalBytesProcessed int64  `json:"total_bytes_processed"`
	Error               string `json:"error,omitempty"`
}

// Cost converts the dry-run scan statistics into a display cost estimate.
func (r *DryRunResult) Cost(pricePerTB decimal.Decimal) sqlgen.CostEstimate {
	return sqlgen.EstimateCostFromBytes(r.TotalBytesProcessed, pricePerTB)
}

// QueryRunner executes generated SQL against the warehouse. Implemented
// outside this module.
type QueryRunner interface {
	RunQuery(ctx context.Context, projectID, sql string) (*QueryResult, error)
	DryRun(ctx context.Context, projectID, sql string) (*DryRunResult, error)
	CreateView(ctx context.Context, projectID, datasetID, viewName, sql string) error
}
