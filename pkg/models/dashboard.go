package models

// DashboardSummary is the aggregate usage view, recomputed by the server on
// every fetch.
type DashboardSummary struct {
	TotalAPIKeys  int64 `json:"total_api_keys"`
	TotalRequests int64 `json:"total_requests"`
	TotalTokens   int64 `json:"total_tokens"`
	ActiveKeys    int64 `json:"active_keys"`
}
