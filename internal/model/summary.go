package model

// ChildSummary is a child's outdoor activity at a glance.
type ChildSummary struct {
	ChildID         int64 `json:"child_id"`
	MinutesToday    int   `json:"minutes_today"`
	MinutesThisWeek int   `json:"minutes_this_week"`
	Completions     int   `json:"completions"`
	StreakDays      int   `json:"streak_days"`
}
