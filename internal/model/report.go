package model

import "time"

// WeeklyTotal is the summed spend for one calendar week bucket.
type WeeklyTotal struct {
	WeekStart time.Time
	Total     float64
}

// MonthlyTotal is the summed spend for one calendar month bucket.
type MonthlyTotal struct {
	MonthStart time.Time
	Total      float64
}

// CategoryTotal is the summed spend for one category.
type CategoryTotal struct {
	Category string
	Total    float64
}

// InsightsReport aggregates spending summaries and flagged anomalies for
// one user.
type InsightsReport struct {
	GeneratedAt   time.Time
	UserID        string
	Weekly        []WeeklyTotal
	Monthly       []MonthlyTotal
	TopCategories []CategoryTotal
	Anomalies     []Anomaly
}
