package domain

// StudyCard is a read-only view combining a card with its per-user
// scheduling state.
type StudyCard struct {
	Card       Card           `json:"card"`
	Scheduling SchedulingInfo `json:"scheduling_info"`
}

// DashboardSummary aggregates study KPIs for one user. Derived, never stored.
type DashboardSummary struct {
	DueNow           int           `json:"due_now"`
	ReviewedToday    int           `json:"reviewed_today"`
	StreakDays       int           `json:"streak_days"`
	DueByTopic       map[Topic]int `json:"due_by_topic"`
	RecommendedTopic *Topic        `json:"recommended_topic,omitempty"`
	AvailableCards   int           `json:"available_cards"`
}
