package sqlgen

import "github.com/shopspring/decimal"

// DefaultPricePerTB is the on-demand analysis price used for display
// estimates, in USD per TiB scanned.
var DefaultPricePerTB = decimal.NewFromFloat(5.0)

var bytesPerGB = decimal.NewFromInt(1024 * 1024 * 1024)

// Pricing uses decimal TB (1000 GB), matching the published on-demand rate.
var gbPerTB = decimal.NewFromInt(1000)

// CostEstimate is a display-only scan cost estimate. It comes from a linear
// formula, never from the execution service.
type CostEstimate struct {
	GB            string `json:"estimated_gb"`
	EstimatedCost string `json:"estimated_cost"`
	Currency      string `json:"currency"`
}

// EstimateCost prices a scan of the given size in GB against a per-TB rate.
func EstimateCost(gb, pricePerTB decimal.Decimal) CostEstimate {
	cost := gb.Div(gbPerTB).Mul(pricePerTB)
	return CostEstimate{
		GB:            gb.StringFixed(2),
		EstimatedCost: cost.StringFixed(4),
		Currency:      "USD",
	}
}

// EstimateCostFromBytes prices a scan reported in bytes, e.g. the
// totalBytesProcessed statistic of a dry run.
func EstimateCostFromBytes(bytes int64, pricePerTB decimal.Decimal) CostEstimate {
	gb := decimal.NewFromInt(bytes).Div(bytesPerGB)
	return EstimateCost(gb, pricePerTB)
}
