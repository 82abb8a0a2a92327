package taxonomy

import "strings"

// ecommerceEventNames are the standard GA4 commerce events.
var ecommerceEventNames = map[string]bool{
	"view_item":         true,
	"view_item_list":    true,
	"select_item":       true,
	"add_to_cart":       true,
	"remove_from_cart":  true,
	"view_cart":         true,
	"begin_checkout":    true,
	"add_payment_info":  true,
	"add_shipping_info": true,
	"purchase":          true,
	"refund":            true,
}

// collectedEventNames are events GA4 collects automatically or via enhanced
// measurement; they are excluded from the custom-event bucket.
var collectedEventNames = map[string]bool{
	"page_view":           true,
	"session_start":       true,
	"first_visit":         true,
	"user_engagement":     true,
	"scroll":              true,
	"click":               true,
	"view_search_results": true,
	"video_start":         true,
	"video_progress":      true,
	"video_complete":      true,
	"file_download":       true,
	"form_start":          true,
	"form_submit":         true,
}

var engagementEventNames = map[string]bool{
	"scroll":          true,
	"click":           true,
	"video_start":     true,
	"user_engagement": true,
}

// EcommerceEvents returns the taxonomy's standard commerce events in order.
func (t *Taxonomy) EcommerceEvents() []Event {
	var out []Event
	for _, e := range t.Events {
		if ecommerceEventNames[e.EventName] {
			out = append(out, e)
		}
	}
	return out
}

// CustomEvents returns events that are neither auto-collected nor standard
// commerce events.
func (t *Taxonomy) CustomEvents() []Event {
	var out []Event
	for _, e := range t.Events {
		if !collectedEventNames[e.EventName] && !ecommerceEventNames[e.EventName] {
			out = append(out, e)
		}
	}
	return out
}

// TemplateRecommendation flags which query-template families apply to a
// taxonomy, based on the event names it contains.
type TemplateRecommendation struct {
	Ecommerce  bool `json:"ecommerce"`
	Engagement bool `json:"engagement"`
	Conversion bool `json:"conversion"`
	Custom     bool `json:"custom"`
}

// RecommendTemplates inspects the taxonomy's event names and reports which
// template families are worth offering.
func (t *Taxonomy) RecommendTemplates() TemplateRecommendation {
	rec := TemplateRecommendation{
		Ecommerce: len(t.EcommerceEvents()) > 0,
		Custom:    len(t.CustomEvents()) > 0,
	}
	for _, e := range t.Events {
		if engagementEventNames[e.EventName] {
			rec.Engagement = true
		}
		name := e.EventName
		if strings.Contains(name, "signup") || strings.Contains(name, "conversion") ||
			strings.Contains(name, "complete") || strings.Contains(name, "submit") {
			rec.Conversion = true
		}
	}
	return rec
}
