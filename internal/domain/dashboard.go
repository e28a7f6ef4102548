package domain

// DashboardStats is the admin dashboard payload: prospect aggregates plus
// the active rep count, assembled server-side so the web client renders in
// one request.
type DashboardStats struct {
	TotalCount       int            `json:"total_count"`
	WonCount         int            `json:"won_count"`
	NewThisWeek      int            `json:"new_this_week"`
	ActiveReps       int            `json:"active_reps"`
	Revenue          float64        `json:"revenue"`
	FormattedRevenue string         `json:"formatted_revenue"`
	ConversionRate   float64        `json:"conversion_rate"`
	FormattedRate    string         `json:"formatted_rate"`
	DailyCounts      []int          `json:"daily_counts"`
	TopAssignees     []AssigneeStat `json:"top_assignees"`
	StatusCounts     map[string]int `json:"status_counts"`
}

// AssigneeStat is one rep's rollup line on the dashboard.
type AssigneeStat struct {
	AssigneeID     string  `json:"assignee_id"`
	Name           string  `json:"name"`
	Leads          int     `json:"leads"`
	Won            int     `json:"won"`
	SalesRevenue   float64 `json:"sales_revenue"`
	FormattedSales string  `json:"formatted_sales"`
	Conversion     string  `json:"conversion"`
}

// ActivityFeed is the field rep's activity screen payload: their own
// prospects rolled up by lifecycle state, plus the latest few.
type ActivityFeed struct {
	Recent      []Prospect `json:"recent"`
	Total       int        `json:"total"`
	New         int        `json:"new"`
	Qualified   int        `json:"qualified"`
	NewThisWeek int        `json:"new_this_week"`
}
