package domain

// ServiceHealth is one dependency's line in the /healthz report.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// OpsMetrics is an operational counters snapshot served to admins.
type OpsMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	ErrorRate     float64 `json:"error_rate"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	Refetches     int64   `json:"refetches"`
	Period        string  `json:"period"`
}
