package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catering-backend/internal/cache"
	"catering-backend/internal/events"
	"catering-backend/internal/ledger"
	"catering-backend/internal/logging"
	"catering-backend/internal/mailer"
	"catering-backend/internal/metrics"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/storage"
	"catering-backend/internal/timeutil"
	"catering-backend/internal/validation"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BillService struct {
	Pool       *pgxpool.Pool
	Bills      *repositories.BillRepository
	Orders     *repositories.OrderRepository
	Items      *repositories.OrderItemRepository
	Customers  *repositories.CustomerRepository
	ActionLogs *repositories.AdminActionLogRepository
	Reports    *ReportService
	Mailer     mailer.Mailer
	// Store is nil when document storage is not configured.
	Store storage.DocumentStore
	Bus   events.Publisher

	runTx txRunner
}

func (s *BillService) repos() repoSet {
	return repoSet{
		Orders:     s.Orders,
		Items:      s.Items,
		Bills:      s.Bills,
		Customers:  s.Customers,
		ActionLogs: s.ActionLogs,
	}
}

func (s *BillService) inTx(ctx context.Context, fn func(r txRepos) error) error {
	if s.runTx != nil {
		return s.runTx(ctx, fn)
	}
	return poolRunner(s.Pool, s.repos())(ctx, fn)
}

func (s *BillService) ListBills(ctx context.Context, filter models.BillFilter) ([]*models.Bill, error) {
	return s.Bills.List(ctx, filter)
}

func (s *BillService) GetBill(ctx context.Context, id int) (*models.Bill, error) {
	b, err := s.Bills.Get(ctx, id)
	return b, lookup(err, "bill")
}

func (s *BillService) GetBillByOrder(ctx context.Context, orderID int) (*models.Bill, error) {
	b, err := s.Bills.GetByOrderID(ctx, orderID)
	return b, lookup(err, "bill")
}

// saveBillAndOrder persists the bill and mirrors its paid amount onto the
// order's advance.
func saveBillAndOrder(ctx context.Context, r txRepos, b *models.Bill) error {
	if err := r.bills.Update(ctx, b); err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if err := r.orders.SetAdvance(ctx, b.OrderID, b.PaidAmount, b.RemainingAmount); err != nil {
		return fmt.Errorf("sync order advance: %w", err)
	}
	return nil
}

// appendPayment appends rec to the bill and syncs the order, using the
// repositories of the caller's transaction.
func appendPayment(ctx context.Context, r txRepos, billID int, rec models.PaymentRecord) (*models.Bill, models.PaymentRecord, error) {
	b, err := r.bills.Get(ctx, billID)
	if err != nil {
		return nil, rec, lookup(err, "bill")
	}
	entry, err := ledger.AppendPayment(b, rec)
	if err != nil {
		return nil, rec, invalid("%v", err)
	}
	if err := saveBillAndOrder(ctx, r, b); err != nil {
		return nil, rec, err
	}
	return b, entry, nil
}

func (s *BillService) paymentRecorded(ctx context.Context, b *models.Bill, entry models.PaymentRecord) {
	metrics.PaymentsRecorded.WithLabelValues(entry.Source).Inc()
	metrics.PaymentAmount.Add(entry.Amount)
	cache.InvalidateAnalytics(ctx)
	logging.For("Bills").Infof("payment %.2f (%s/%s) on %s, paid=%.2f status=%s",
		entry.Amount, entry.Source, entry.Method, b.BillNumber, b.PaidAmount, b.Status)
	publish(s.Bus, events.PaymentRecorded, "Payment received",
		fmt.Sprintf("%.2f received on %s (%s)", entry.Amount, b.BillNumber, b.Status),
		map[string]any{"bill_id": b.ID, "order_id": b.OrderID, "amount": entry.Amount, "source": entry.Source})
}

// RecordPayment appends a staff-recorded payment to the bill.
func (s *BillService) RecordPayment(ctx context.Context, actor Actor, billID int, req *models.RecordPaymentRequest) (*models.Bill, error) {
	var errs validation.Errors
	errs.Check(req.Amount > 0, "amount must be positive")
	errs.Check(models.ValidPaymentMethod(req.Method),
		"method must be one of "+strings.Join(models.PaymentMethods, ", "))
	if err := invalidErrs(errs); err != nil {
		return nil, err
	}

	paidAt := timeutil.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	rec := models.PaymentRecord{
		Amount:     req.Amount,
		Source:     models.PaymentSourceAdmin,
		Method:     req.Method,
		Note:       req.Note,
		Reference:  req.Reference,
		PaidAt:     paidAt,
		RecordedBy: actor.userRef(),
	}

	var bill *models.Bill
	var entry models.PaymentRecord
	err := s.inTx(ctx, func(r txRepos) error {
		var err error
		bill, entry, err = appendPayment(ctx, r, billID, rec)
		return err
	})
	metrics.LedgerOperations.WithLabelValues("payment_record", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.paymentRecorded(ctx, bill, entry)
	return bill, nil
}

func paymentIndexError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrPaymentOutOfRange):
		return notFound("payment entry")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return invalid("amount must be positive")
	}
	return err
}

// EditPayment rewrites one payment entry and re-derives the log.
func (s *BillService) EditPayment(ctx context.Context, actor Actor, billID, index int, req *models.EditPaymentRequest) (*models.Bill, error) {
	if req.Method != "" && !models.ValidPaymentMethod(req.Method) {
		return nil, invalid("method must be one of %s", strings.Join(models.PaymentMethods, ", "))
	}

	var bill *models.Bill
	err := s.inTx(ctx, func(r txRepos) error {
		b, err := r.bills.Get(ctx, billID)
		if err != nil {
			return lookup(err, "bill")
		}
		if index < 0 || index >= len(b.PaymentHistory) {
			return notFound("payment entry")
		}
		old := b.PaymentHistory[index]
		if err := ledger.EditPayment(b, index, req.Amount, req.Method, req.Note); err != nil {
			return paymentIndexError(err)
		}
		if err := saveBillAndOrder(ctx, r, b); err != nil {
			return err
		}
		recordAction(ctx, r.actions, actor, "payment_edit", "bill", billID,
			fmt.Sprintf("Edited payment #%d on %s: %.2f -> %.2f", index+1, b.BillNumber, old.Amount, b.PaymentHistory[index].Amount),
			old, b.PaymentHistory[index])
		bill = b
		return nil
	})
	metrics.LedgerOperations.WithLabelValues("payment_edit", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	cache.InvalidateAnalytics(ctx)
	publish(s.Bus, events.PaymentEdited, "Payment edited",
		fmt.Sprintf("Payment #%d on %s was edited", index+1, bill.BillNumber),
		map[string]any{"bill_id": bill.ID, "index": index})
	return bill, nil
}

// DeletePayment removes one payment entry and re-derives the log.
func (s *BillService) DeletePayment(ctx context.Context, actor Actor, billID, index int) (*models.Bill, error) {
	var bill *models.Bill
	err := s.inTx(ctx, func(r txRepos) error {
		b, err := r.bills.Get(ctx, billID)
		if err != nil {
			return lookup(err, "bill")
		}
		removed, err := ledger.DeletePayment(b, index)
		if err != nil {
			return paymentIndexError(err)
		}
		if err := saveBillAndOrder(ctx, r, b); err != nil {
			return err
		}
		recordAction(ctx, r.actions, actor, "payment_delete", "bill", billID,
			fmt.Sprintf("Deleted payment #%d (%.2f) on %s", index+1, removed.Amount, b.BillNumber),
			removed, nil)
		bill = b
		return nil
	})
	metrics.LedgerOperations.WithLabelValues("payment_delete", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	cache.InvalidateAnalytics(ctx)
	publish(s.Bus, events.PaymentEdited, "Payment deleted",
		fmt.Sprintf("Payment #%d on %s was deleted", index+1, bill.BillNumber),
		map[string]any{"bill_id": bill.ID, "index": index})
	return bill, nil
}

// BillPDF renders the bill.
func (s *BillService) BillPDF(ctx context.Context, id int) ([]byte, *models.Bill, error) {
	b, err := s.Bills.Get(ctx, id)
	if err != nil {
		return nil, nil, lookup(err, "bill")
	}
	o, err := s.Orders.Get(ctx, b.OrderID)
	if err != nil {
		return nil, nil, lookup(err, "order")
	}
	pdf, err := s.Reports.GenerateBillPDF(b, o)
	if err != nil {
		return nil, nil, fmt.Errorf("render bill: %w", err)
	}
	return pdf, b, nil
}

// EmailBill mails the bill PDF to to, or to the customer's address when to
// is empty.
func (s *BillService) EmailBill(ctx context.Context, id int, to string) error {
	pdf, b, err := s.BillPDF(ctx, id)
	if err != nil {
		return err
	}
	to = strings.TrimSpace(to)
	if to == "" {
		c, err := s.Customers.Get(ctx, b.CustomerID)
		if err != nil {
			return lookup(err, "customer")
		}
		to = c.Email
	}
	if to == "" {
		return invalid("customer has no email address")
	}
	if !validation.ValidEmail(to) {
		return invalid("email is invalid")
	}

	msg := &mailer.Message{
		To:      []string{to},
		Subject: fmt.Sprintf("%s - Bill %s", s.Reports.Business.Name, b.BillNumber),
		Body: fmt.Sprintf("Dear %s,\n\nPlease find attached bill %s for order %s.\n\nTotal: %.2f\nPaid: %.2f\nRemaining: %.2f\n\nThank you,\n%s\n",
			b.CustomerName, b.BillNumber, b.OrderNumber, b.TotalAmount, b.PaidAmount, b.RemainingAmount, s.Reports.Business.Name),
		Attachments: []mailer.Attachment{{
			Filename:    b.BillNumber + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send bill: %w", err)
	}
	logging.For("Bills").Infof("emailed %s to %s", b.BillNumber, to)
	return nil
}

// ArchiveBill uploads the bill PDF to document storage and records the key.
func (s *BillService) ArchiveBill(ctx context.Context, id int) (string, error) {
	if s.Store == nil {
		return "", invalid("%v", storage.ErrDisabled)
	}
	pdf, b, err := s.BillPDF(ctx, id)
	if err != nil {
		return "", err
	}
	key := storage.BillKey(b.BillNumber)
	if err := s.Store.Put(ctx, key, "application/pdf", pdf); err != nil {
		return "", fmt.Errorf("archive bill: %w", err)
	}
	if err := s.Bills.SetDocumentKey(ctx, b.ID, key); err != nil {
		return "", err
	}
	return key, nil
}

// OrderSheetPDF renders the operations sheet for an order.
func (s *BillService) OrderSheetPDF(ctx context.Context, orderID int) ([]byte, *models.Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, nil, lookup(err, "order")
	}
	if o.Items, err = s.Items.ListByOrder(ctx, orderID); err != nil {
		return nil, nil, err
	}
	pdf, err := s.Reports.GenerateOrderSheetPDF(o)
	if err != nil {
		return nil, nil, fmt.Errorf("render order sheet: %w", err)
	}
	return pdf, o, nil
}
