package services

import (
	"context"
	"strings"

	"catering-backend/internal/cache"
	"catering-backend/internal/ledger"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/validation"
)

type ExpenseService struct {
	Repo       *repositories.ExpenseRepository
	Orders     *repositories.OrderRepository
	ActionLogs *repositories.AdminActionLogRepository
	Reports    *ReportService
}

func (s *ExpenseService) buildExpense(ctx context.Context, e *models.Expense, req *models.ExpenseRequest) error {
	var errs validation.Errors
	errs.Check(validation.OneOf(req.Category, models.ExpenseCategories),
		"category must be one of "+strings.Join(models.ExpenseCategories, ", "))
	errs.Check(req.Amount > 0, "amount must be positive")
	errs.Check(req.PaymentMethod == "" || models.ValidPaymentMethod(req.PaymentMethod), "payment method is invalid")
	if err := invalidErrs(errs); err != nil {
		return err
	}
	date, err := parseDay(req.ExpenseDate, "expense_date")
	if err != nil {
		return err
	}
	allocs, err := checkAllocations(ctx, s.Orders, req.Amount, req.OrderID, req.BulkAllocations)
	if err != nil {
		return err
	}

	e.Category = req.Category
	e.Description = strings.TrimSpace(req.Description)
	e.Amount = ledger.Round(req.Amount)
	e.ExpenseDate = date
	e.PaymentMethod = req.PaymentMethod
	if e.PaymentMethod == "" {
		e.PaymentMethod = "cash"
	}
	e.Vendor = strings.TrimSpace(req.Vendor)
	e.OrderID = req.OrderID
	if e.OrderID != nil && *e.OrderID <= 0 {
		e.OrderID = nil
	}
	e.BulkAllocations = allocs
	return nil
}

func (s *ExpenseService) CreateExpense(ctx context.Context, actor Actor, req *models.ExpenseRequest) (*models.Expense, error) {
	e := &models.Expense{CreatedBy: actor.userRef()}
	if err := s.buildExpense(ctx, e, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}
	cache.InvalidateAnalytics(ctx)
	return e, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id int) (*models.Expense, error) {
	e, err := s.Repo.Get(ctx, id)
	return e, lookup(err, "expense")
}

func (s *ExpenseService) ListExpenses(ctx context.Context, filter models.ExpenseFilter) ([]*models.Expense, error) {
	from, to, err := dateRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	filter.From, filter.To = from, to
	return s.Repo.List(ctx, filter)
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, id int, req *models.ExpenseRequest) (*models.Expense, error) {
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, lookup(err, "expense")
	}
	if err := s.buildExpense(ctx, e, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, e); err != nil {
		return nil, lookup(err, "expense")
	}
	cache.InvalidateAnalytics(ctx)
	return e, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, actor Actor, id int) error {
	e, err := s.Repo.Get(ctx, id)
	if err != nil {
		return lookup(err, "expense")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return lookup(err, "expense")
	}
	recordAction(ctx, s.ActionLogs, actor, "expense_delete", "expense", id,
		"Deleted expense "+e.Category+" "+e.Description, e, nil)
	cache.InvalidateAnalytics(ctx)
	return nil
}

// ExportCSV renders the filtered expenses as CSV.
func (s *ExpenseService) ExportCSV(ctx context.Context, filter models.ExpenseFilter) ([]byte, error) {
	expenses, err := s.ListExpenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.Reports.ExpensesCSV(expenses)
}

func (s *ExpenseService) TotalsByCategory(ctx context.Context, from, to string) ([]models.CategoryTotal, error) {
	from, to, err := dateRange(from, to)
	if err != nil {
		return nil, err
	}
	if from == "" || to == "" {
		return nil, invalid("from and to are required")
	}
	return s.Repo.TotalsByCategory(ctx, from, to)
}
