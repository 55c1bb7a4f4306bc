// Package stats computes the read-only aggregates behind the dashboard
// statistics pages. Everything is a full-scan count or sum recomputed per
// request; nothing is cached.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"event-dashboard-api/internal/model"
)

// No schema support yet for delivery tracking, so these are fixed.
const (
	placeholderOpenRate       = 0.0
	placeholderClickRate      = 0.0
	placeholderScheduledSends = 0
)

// Store is the slice of the persistence layer the aggregator reads from.
type Store interface {
	CountUsers(ctx context.Context) (int, error)
	CountUsersCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountClients(ctx context.Context) (int, error)
	CountClientsCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountEvents(ctx context.Context) (int, error)
	CountUpcomingEvents(ctx context.Context, from time.Time) (int, error)
	CountNotificationsByStatus(ctx context.Context, status string) (int, error)
	CountReviews(ctx context.Context) (int, error)
	CountCheckIns(ctx context.Context) (int, error)
	SumReviewPoints(ctx context.Context) (int, error)
	ListCheckIns(ctx context.Context) ([]model.CheckIn, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
}

type Aggregator struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewAggregator(st Store, log *zap.Logger) *Aggregator {
	return &Aggregator{store: st, log: log, now: time.Now}
}

// Pages the dashboard can request.
var Pages = map[string]bool{
	"dashboard":     true,
	"clients":       true,
	"users":         true,
	"notifications": true,
	"trivia":        true,
}

// ForPage builds the statistics payload for one dashboard page.
func (a *Aggregator) ForPage(ctx context.Context, page string) (map[string]any, error) {
	switch page {
	case "dashboard":
		return a.dashboard(ctx)
	case "clients":
		return a.clients(ctx)
	case "users":
		return a.users(ctx)
	case "notifications":
		return a.notifications(ctx)
	case "trivia":
		return a.trivia(ctx)
	default:
		return nil, fmt.Errorf("unknown statistics page %q", page)
	}
}

func (a *Aggregator) dashboard(ctx context.Context) (map[string]any, error) {
	now := a.now()
	totalUsers, err := a.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	totalClients, err := a.store.CountClients(ctx)
	if err != nil {
		return nil, err
	}
	totalEvents, err := a.store.CountEvents(ctx)
	if err != nil {
		return nil, err
	}
	upcoming, err := a.store.CountUpcomingEvents(ctx, StartOfDay(now))
	if err != nil {
		return nil, err
	}
	sent, err := a.store.CountNotificationsByStatus(ctx, model.StatusSent)
	if err != nil {
		return nil, err
	}
	thisMonth, err := a.store.CountUsersCreatedBetween(ctx, StartOfMonth(now), now)
	if err != nil {
		return nil, err
	}
	lastMonth, err := a.store.CountUsersCreatedBetween(ctx, StartOfLastMonth(now), StartOfMonth(now))
	if err != nil {
		return nil, err
	}
	totalPoints, err := a.totalPoints(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalUsers":        totalUsers,
		"totalClients":      totalClients,
		"totalEvents":       totalEvents,
		"upcomingEvents":    upcoming,
		"notificationsSent": sent,
		"newUsersThisMonth": thisMonth,
		"userChange":        Change(float64(thisMonth), float64(lastMonth)),
		"totalPoints":       totalPoints,
		"averagePPU":        AveragePerUser(totalPoints, totalUsers),
	}, nil
}

func (a *Aggregator) clients(ctx context.Context) (map[string]any, error) {
	now := a.now()
	total, err := a.store.CountClients(ctx)
	if err != nil {
		return nil, err
	}
	thisWeek, err := a.store.CountClientsCreatedBetween(ctx, StartOfWeek(now), now)
	if err != nil {
		return nil, err
	}
	thisMonth, err := a.store.CountClientsCreatedBetween(ctx, StartOfMonth(now), now)
	if err != nil {
		return nil, err
	}
	lastMonth, err := a.store.CountClientsCreatedBetween(ctx, StartOfLastMonth(now), StartOfMonth(now))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalClients":        total,
		"newClientsThisWeek":  thisWeek,
		"newClientsThisMonth": thisMonth,
		"clientChange":        Change(float64(thisMonth), float64(lastMonth)),
	}, nil
}

func (a *Aggregator) users(ctx context.Context) (map[string]any, error) {
	now := a.now()
	total, err := a.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	thisWeek, err := a.store.CountUsersCreatedBetween(ctx, StartOfWeek(now), now)
	if err != nil {
		return nil, err
	}
	thisMonth, err := a.store.CountUsersCreatedBetween(ctx, StartOfMonth(now), now)
	if err != nil {
		return nil, err
	}
	lastMonth, err := a.store.CountUsersCreatedBetween(ctx, StartOfLastMonth(now), StartOfMonth(now))
	if err != nil {
		return nil, err
	}
	totalPoints, err := a.totalPoints(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalUsers":        total,
		"newUsersThisWeek":  thisWeek,
		"newUsersThisMonth": thisMonth,
		"userChange":        Change(float64(thisMonth), float64(lastMonth)),
		"totalPoints":       totalPoints,
		"averagePPU":        AveragePerUser(totalPoints, total),
	}, nil
}

func (a *Aggregator) notifications(ctx context.Context) (map[string]any, error) {
	sent, err := a.store.CountNotificationsByStatus(ctx, model.StatusSent)
	if err != nil {
		return nil, err
	}
	drafts, err := a.store.CountNotificationsByStatus(ctx, model.StatusDraft)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"totalSent": sent,
		"drafts":    drafts,
		"scheduled": placeholderScheduledSends,
		"openRate":  placeholderOpenRate,
		"clickRate": placeholderClickRate,
	}, nil
}

func (a *Aggregator) trivia(ctx context.Context) (map[string]any, error) {
	reviews, err := a.store.CountReviews(ctx)
	if err != nil {
		return nil, err
	}
	checkIns, err := a.store.CountCheckIns(ctx)
	if err != nil {
		return nil, err
	}
	reviewPoints, err := a.store.SumReviewPoints(ctx)
	if err != nil {
		return nil, err
	}
	checkInPoints, err := a.checkInPoints(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := a.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	total := reviewPoints + checkInPoints
	return map[string]any{
		"totalReviews":  reviews,
		"totalCheckIns": checkIns,
		"reviewPoints":  reviewPoints,
		"checkInPoints": checkInPoints,
		"totalPoints":   total,
		"averagePPU":    AveragePerUser(total, totalUsers),
	}, nil
}

// totalPoints is review points plus check-in points across all records.
func (a *Aggregator) totalPoints(ctx context.Context) (int, error) {
	reviewPoints, err := a.store.SumReviewPoints(ctx)
	if err != nil {
		return 0, err
	}
	checkInPoints, err := a.checkInPoints(ctx)
	if err != nil {
		return 0, err
	}
	return reviewPoints + checkInPoints, nil
}

// checkInPoints sums each check-in's own point value, falling back to the
// referenced event's check-in points. A failed event lookup skips that record.
func (a *Aggregator) checkInPoints(ctx context.Context) (int, error) {
	checkIns, err := a.store.ListCheckIns(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range checkIns {
		if c.Points != nil {
			total += *c.Points
			continue
		}
		ev, err := a.store.GetEvent(ctx, c.EventID)
		if err != nil {
			a.log.Warn("check-in event lookup failed",
				zap.String("checkIn", c.ID),
				zap.String("event", c.EventID),
				zap.Error(err))
			continue
		}
		total += ev.CheckInPoints
	}
	return total, nil
}

// Change is the rounded percentage change from previous to current. A zero
// previous maps to 100 when current is positive, otherwise 0.
func Change(current, previous float64) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round((current - previous) / previous * 100))
}

// AveragePerUser rounds totalPoints/totalUsers; zero users yields 0.
func AveragePerUser(totalPoints, totalUsers int) int {
	if totalUsers == 0 {
		return 0
	}
	return int(math.Round(float64(totalPoints) / float64(totalUsers)))
}

// StartOfDay truncates to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek truncates to the preceding Monday midnight.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth truncates to the first of the month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfLastMonth truncates to the first of the previous month.
func StartOfLastMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, -1, 0)
}
