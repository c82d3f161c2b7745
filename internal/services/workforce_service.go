package services

import (
	"context"
	"fmt"
	"strings"

	"catering-backend/internal/cache"
	"catering-backend/internal/ledger"
	"catering-backend/internal/logging"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/validation"
)

type WorkforceService struct {
	Repo       *repositories.WorkforceRepository
	Orders     *repositories.OrderRepository
	ActionLogs *repositories.AdminActionLogRepository
}

func validateMember(req *models.WorkforceMemberRequest) error {
	var errs validation.Errors
	errs.Require("name", req.Name)
	errs.Check(req.Phone == "" || validation.ValidPhone(req.Phone), "phone number is invalid")
	errs.Check(req.DailyWage >= 0, "daily wage cannot be negative")
	return invalidErrs(errs)
}

func applyMember(m *models.WorkforceMember, req *models.WorkforceMemberRequest) {
	m.Name = strings.TrimSpace(req.Name)
	m.Phone = ""
	if req.Phone != "" {
		m.Phone = validation.NormalizePhone(req.Phone)
	}
	m.Role = strings.TrimSpace(req.Role)
	m.DailyWage = ledger.Round(req.DailyWage)
	m.Notes = req.Notes
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
}

func (s *WorkforceService) CreateMember(ctx context.Context, req *models.WorkforceMemberRequest) (*models.WorkforceMember, error) {
	if err := validateMember(req); err != nil {
		return nil, err
	}
	m := &models.WorkforceMember{IsActive: true}
	applyMember(m, req)
	if err := s.Repo.CreateMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *WorkforceService) GetMember(ctx context.Context, id int) (*models.WorkforceMemberSummary, error) {
	sum, err := s.Repo.MemberSummary(ctx, id)
	return sum, lookup(err, "workforce member")
}

func (s *WorkforceService) ListMembers(ctx context.Context, activeOnly bool) ([]*models.WorkforceMember, error) {
	return s.Repo.ListMembers(ctx, activeOnly)
}

func (s *WorkforceService) UpdateMember(ctx context.Context, id int, req *models.WorkforceMemberRequest) (*models.WorkforceMember, error) {
	if err := validateMember(req); err != nil {
		return nil, err
	}
	m, err := s.Repo.GetMember(ctx, id)
	if err != nil {
		return nil, lookup(err, "workforce member")
	}
	applyMember(m, req)
	if err := s.Repo.UpdateMember(ctx, m); err != nil {
		return nil, lookup(err, "workforce member")
	}
	return m, nil
}

func (s *WorkforceService) DeleteMember(ctx context.Context, actor Actor, id int) error {
	err := s.Repo.DeleteMember(ctx, id)
	if isForeignKeyViolation(err) {
		return conflict("member has payments; deactivate instead")
	}
	if err != nil {
		return lookup(err, "workforce member")
	}
	recordAction(ctx, s.ActionLogs, actor, "workforce_member_delete", "workforce_member", id,
		fmt.Sprintf("Deleted workforce member %d", id), nil, nil)
	return nil
}

func (s *WorkforceService) buildPayment(ctx context.Context, p *models.WorkforcePayment, req *models.WorkforcePaymentRequest) error {
	var errs validation.Errors
	errs.Check(req.MemberID > 0, "member_id is required")
	errs.Check(req.Amount > 0, "amount must be positive")
	errs.Check(req.PaymentMethod == "" || models.ValidPaymentMethod(req.PaymentMethod), "payment method is invalid")
	if err := invalidErrs(errs); err != nil {
		return err
	}
	if _, err := s.Repo.GetMember(ctx, req.MemberID); err != nil {
		return lookup(err, "workforce member")
	}
	date, err := parseDay(req.PaymentDate, "payment_date")
	if err != nil {
		return err
	}
	allocs, err := checkAllocations(ctx, s.Orders, req.Amount, req.OrderID, req.BulkAllocations)
	if err != nil {
		return err
	}

	p.MemberID = req.MemberID
	p.Amount = ledger.Round(req.Amount)
	p.PaymentDate = date
	p.PaymentMethod = req.PaymentMethod
	if p.PaymentMethod == "" {
		p.PaymentMethod = "cash"
	}
	p.Notes = req.Notes
	p.OrderID = req.OrderID
	if p.OrderID != nil && *p.OrderID <= 0 {
		p.OrderID = nil
	}
	p.BulkAllocations = allocs
	return nil
}

func (s *WorkforceService) CreatePayment(ctx context.Context, actor Actor, req *models.WorkforcePaymentRequest) (*models.WorkforcePayment, error) {
	p := &models.WorkforcePayment{CreatedBy: actor.userRef()}
	if err := s.buildPayment(ctx, p, req); err != nil {
		return nil, err
	}
	if err := s.Repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	cache.InvalidateAnalytics(ctx)
	return s.reload(ctx, p)
}

// reload re-reads the payment so the member name is filled. The write has
// already committed, so a failed read returns the payment as saved.
func (s *WorkforceService) reload(ctx context.Context, p *models.WorkforcePayment) (*models.WorkforcePayment, error) {
	fresh, err := s.Repo.GetPayment(ctx, p.ID)
	if err != nil {
		logging.For("Workforce").WithError(err).Warnf("reload payment %d", p.ID)
		return p, nil
	}
	return fresh, nil
}

func (s *WorkforceService) GetPayment(ctx context.Context, id int) (*models.WorkforcePayment, error) {
	p, err := s.Repo.GetPayment(ctx, id)
	return p, lookup(err, "workforce payment")
}

func (s *WorkforceService) ListPayments(ctx context.Context, memberID int, from, to string) ([]*models.WorkforcePayment, error) {
	from, to, err := dateRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListPayments(ctx, memberID, from, to)
}

func (s *WorkforceService) UpdatePayment(ctx context.Context, id int, req *models.WorkforcePaymentRequest) (*models.WorkforcePayment, error) {
	p, err := s.Repo.GetPayment(ctx, id)
	if err != nil {
		return nil, lookup(err, "workforce payment")
	}
	if err := s.buildPayment(ctx, p, req); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdatePayment(ctx, p); err != nil {
		return nil, lookup(err, "workforce payment")
	}
	cache.InvalidateAnalytics(ctx)
	return s.reload(ctx, p)
}

func (s *WorkforceService) DeletePayment(ctx context.Context, actor Actor, id int) error {
	p, err := s.Repo.GetPayment(ctx, id)
	if err != nil {
		return lookup(err, "workforce payment")
	}
	if err := s.Repo.DeletePayment(ctx, id); err != nil {
		return lookup(err, "workforce payment")
	}
	recordAction(ctx, s.ActionLogs, actor, "workforce_payment_delete", "workforce_payment", id,
		fmt.Sprintf("Deleted payment of %.2f to %s", p.Amount, p.MemberName), p, nil)
	cache.InvalidateAnalytics(ctx)
	return nil
}
