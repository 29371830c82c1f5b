// Package insights assembles spending summaries and anomaly reports.
package insights

import (
	"context"
	"fmt"
	"time"

	"spendsense/internal/model"
	"spendsense/internal/service"
)

// Report windows, matching the insights surface: weekly buckets over the
// last 30 days, monthly buckets over the last six months, top five
// categories all-time.
const (
	weeklyWindowDays  = 30
	monthlyWindowDays = 180
	topCategoryLimit  = 5
)

// AnomalyDetector is the slice of the engine the report needs.
type AnomalyDetector interface {
	DetectAnomalies(ctx context.Context, userID string, months int) ([]model.Anomaly, error)
}

// Service builds insights reports from aggregated storage queries.
type Service struct {
	storage  service.Storage
	detector AnomalyDetector
	now      func() time.Time
}

// New creates an insights service.
func New(storage service.Storage, detector AnomalyDetector) *Service {
	return &Service{
		storage:  storage,
		detector: detector,
		now:      time.Now,
	}
}

// Build assembles the full report for one user.
func (s *Service) Build(ctx context.Context, userID string) (*model.InsightsReport, error) {
	now := s.now()

	weekly, err := s.storage.SumByWeek(ctx, userID, now.AddDate(0, 0, -weeklyWindowDays), now)
	if err != nil {
		return nil, fmt.Errorf("failed to build weekly summary: %w", err)
	}

	monthly, err := s.storage.SumByMonth(ctx, userID, now.AddDate(0, 0, -monthlyWindowDays), now)
	if err != nil {
		return nil, fmt.Errorf("failed to build monthly summary: %w", err)
	}

	topCategories, err := s.storage.SumByCategory(ctx, userID, topCategoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build category summary: %w", err)
	}

	anomalies, err := s.detector.DetectAnomalies(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to detect anomalies: %w", err)
	}

	return &model.InsightsReport{
		GeneratedAt:   now,
		UserID:        userID,
		Weekly:        weekly,
		Monthly:       monthly,
		TopCategories: topCategories,
		Anomalies:     anomalies,
	}, nil
}
