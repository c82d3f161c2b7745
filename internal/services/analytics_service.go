package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"catering-backend/internal/cache"
	"catering-backend/internal/ledger"
	"catering-backend/internal/logging"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// UpcomingWindow is how far ahead the dashboard lists sessions.
const UpcomingWindow = 14 * 24 * time.Hour

type AnalyticsService struct {
	Repo     *repositories.AnalyticsRepository
	Orders   *repositories.OrderRepository
	Expenses *repositories.ExpenseRepository
}

// cached returns the cached JSON for key or loads, stores and returns it.
func cached[T any](ctx context.Context, key string, load func() (T, error)) (T, error) {
	var out T
	if data, ok := cache.GetCached(ctx, key); ok {
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
	}
	out, err := load()
	if err != nil {
		return out, err
	}
	if data, err := json.Marshal(out); err == nil {
		cache.SetCached(ctx, key, data, cache.DefaultTTL)
	}
	return out, nil
}

// defaultRange fills an empty range with the current month to date.
func defaultRange(from, to string) (string, string, error) {
	from, to, err := dateRange(from, to)
	if err != nil {
		return "", "", err
	}
	now := timeutil.Now()
	if to == "" {
		to = now.Format(timeutil.DateLayout)
	}
	if from == "" {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, timeutil.IST).Format(timeutil.DateLayout)
	}
	if from > to {
		return "", "", invalid("from date must not be after to date")
	}
	return from, to, nil
}

// upcomingSessions flattens the open orders' sessions between now and
// now+window, soonest first.
func upcomingSessions(orders []*models.Order, now time.Time, window time.Duration) []models.UpcomingEvent {
	until := now.Add(window).In(timeutil.IST).Format(timeutil.DateLayout)
	out := []models.UpcomingEvent{}
	for _, o := range orders {
		for _, ev := range sessionsOnOrAfter(o, now) {
			if ev.Date <= until {
				out = append(out, ev)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

// guestsBetween sums the guests of sessions dated within [from, to].
func guestsBetween(orders []*models.Order, from, to string) int {
	n := 0
	for _, o := range orders {
		for _, s := range o.MealTypeAmounts {
			if s.Date >= from && s.Date <= to {
				n += s.Guests
			}
		}
	}
	return n
}

// Dashboard summarizes money, order flow and upcoming work for a date range.
func (s *AnalyticsService) Dashboard(ctx context.Context, from, to string) (*models.DashboardSummary, error) {
	from, to, err := defaultRange(from, to)
	if err != nil {
		return nil, err
	}
	return cached(ctx, cache.DashboardKey(from, to), func() (*models.DashboardSummary, error) {
		return s.buildDashboard(ctx, from, to)
	})
}

func (s *AnalyticsService) buildDashboard(ctx context.Context, from, to string) (*models.DashboardSummary, error) {
	d := &models.DashboardSummary{From: from, To: to}
	var err error
	if d.TotalBilled, d.TotalCollected, d.Outstanding, err = s.Repo.BillTotals(ctx, from, to); err != nil {
		return nil, err
	}
	if d.TotalExpenses, err = s.Repo.ExpenseTotal(ctx, from, to); err != nil {
		return nil, err
	}
	if d.WorkforceCost, err = s.Repo.WorkforceTotal(ctx, from, to); err != nil {
		return nil, err
	}
	d.NetProfit = decimal.NewFromFloat(d.TotalBilled).
		Sub(decimal.NewFromFloat(d.TotalExpenses)).
		Sub(decimal.NewFromFloat(d.WorkforceCost)).
		Round(2).InexactFloat64()

	if d.OrdersByStatus, err = s.Repo.OrdersByStatus(ctx, from, to); err != nil {
		return nil, err
	}
	if d.BillsByStatus, err = s.Repo.BillsByStatus(ctx, from, to); err != nil {
		return nil, err
	}
	if d.ExpenseByCat, err = s.Expenses.TotalsByCategory(ctx, from, to); err != nil {
		return nil, err
	}

	open, err := s.Orders.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	d.UpcomingEvents = upcomingSessions(open, timeutil.Now(), UpcomingWindow)

	completed, err := s.Orders.List(ctx, models.OrderFilter{Status: models.OrderStatusCompleted, From: from, To: to})
	if err != nil {
		return nil, err
	}
	d.GuestsServed = guestsBetween(completed, from, to)
	return d, nil
}

// Monthly returns one point per calendar month in the range.
func (s *AnalyticsService) Monthly(ctx context.Context, from, to string) ([]models.MonthlyPoint, error) {
	from, to, err := dateRange(from, to)
	if err != nil {
		return nil, err
	}
	now := timeutil.Now()
	if to == "" {
		to = now.Format(timeutil.DateLayout)
	}
	if from == "" {
		from = time.Date(now.Year(), now.Month()-11, 1, 0, 0, 0, 0, timeutil.IST).Format(timeutil.DateLayout)
	}
	return cached(ctx, cache.MonthlyKey(from, to), func() ([]models.MonthlyPoint, error) {
		return s.Repo.Monthly(ctx, from, to)
	})
}

func (s *AnalyticsService) TopCustomers(ctx context.Context, limit int) ([]models.TopCustomer, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return cached(ctx, cache.TopCustomersKey(limit), func() ([]models.TopCustomer, error) {
		return s.Repo.TopCustomers(ctx, limit)
	})
}

// withProfit fills profit and margin (percent of revenue).
func withProfit(rows []models.OrderProfit) []models.OrderProfit {
	for i := range rows {
		p := &rows[i]
		p.Profit = ledger.Round(p.Revenue - p.Expenses - p.WorkforceCost)
		if p.Revenue > 0 {
			p.Margin = decimal.NewFromFloat(p.Profit).
				Div(decimal.NewFromFloat(p.Revenue)).
				Mul(decimal.NewFromInt(100)).
				Round(2).InexactFloat64()
		}
	}
	return rows
}

// OrderProfitability reports revenue against allocated costs for orders
// created in the range.
func (s *AnalyticsService) OrderProfitability(ctx context.Context, from, to string) ([]models.OrderProfit, error) {
	from, to, err := defaultRange(from, to)
	if err != nil {
		return nil, err
	}
	return cached(ctx, cache.ProfitKey(from, to), func() ([]models.OrderProfit, error) {
		ids, err := s.Repo.RecentOrderIDs(ctx, from, to, 200)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []models.OrderProfit{}, nil
		}
		rows, err := s.Repo.OrderCosts(ctx, ids)
		if err != nil {
			return nil, err
		}
		return withProfit(rows), nil
	})
}

// RegisterWarmups registers the month-to-date dashboard (as of startup) and
// top customers for cache pre-warming.
func (s *AnalyticsService) RegisterWarmups() {
	from, to, _ := defaultRange("", "")
	cache.RegisterPreWarm(cache.DashboardKey(from, to), func(ctx context.Context) ([]byte, error) {
		d, err := s.buildDashboard(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return json.Marshal(d)
	})
	cache.RegisterPreWarm(cache.TopCustomersKey(10), func(ctx context.Context) ([]byte, error) {
		rows, err := s.Repo.TopCustomers(ctx, 10)
		if err != nil {
			return nil, err
		}
		return json.Marshal(rows)
	})
	logging.For("Analytics").Debug("registered cache warm-ups")
}
