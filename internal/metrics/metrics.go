// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TaxonomyParses counts taxonomy parse attempts by outcome.
	TaxonomyParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxoquery_taxonomy_parses_total",
		Help: "Taxonomy parse attempts by outcome.",
	}, []string{"outcome"})

	// SQLRenders counts template renders by template key.
	SQLRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxoquery_sql_renders_total",
		Help: "SQL template renders by template key.",
	}, []string{"template"})

	// RenderErrors counts failed render requests by error type.
	RenderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxoquery_render_errors_total",
		Help: "Failed SQL generation requests by error type.",
	}, []string{"error_type"})
)
