package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"catering-backend/internal/db"
	"catering-backend/internal/events"
	"catering-backend/internal/ledger"
	"catering-backend/internal/logging"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"github.com/shopspring/decimal"
)

// razorpayOrders is the part of the Razorpay client used to open orders.
type razorpayOrders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayService struct {
	keyID         string
	keySecret     string
	webhookSecret string
	orders        razorpayOrders

	Txns  *repositories.OnlineTransactionRepository
	Bills *BillService
}

func NewRazorpayService(keyID, keySecret, webhookSecret string, txns *repositories.OnlineTransactionRepository, bills *BillService) *RazorpayService {
	s := &RazorpayService{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		Txns:          txns,
		Bills:         bills,
	}
	if keyID != "" && keySecret != "" {
		s.orders = razorpay.NewClient(keyID, keySecret).Order
	}
	return s
}

// Enabled reports whether API credentials are configured.
func (s *RazorpayService) Enabled() bool {
	return s.orders != nil
}

// toPaise converts rupees to integer paise.
func toPaise(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// VerifySignature checks the checkout signature over "order_id|payment_id".
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, signature, secret)
}

// CreateOrder opens a Razorpay order for part or all of a bill's remaining
// amount. An amount of zero means the full remaining amount.
func (s *RazorpayService) CreateOrder(ctx context.Context, customer *models.Customer, req *models.CreateOnlinePaymentRequest) (*models.CreateOnlinePaymentResponse, error) {
	if !s.Enabled() {
		return nil, invalid("online payments are not configured")
	}
	bill, err := s.Bills.Bills.Get(ctx, req.BillID)
	if err != nil {
		return nil, lookup(err, "bill")
	}
	if bill.CustomerID != customer.ID {
		return nil, notFound("bill")
	}
	if bill.RemainingAmount <= 0 {
		return nil, invalid("bill is already paid")
	}

	amount := req.Amount
	if amount == 0 {
		amount = bill.RemainingAmount
	}
	if amount < 0 {
		return nil, invalid("amount must be positive")
	}
	if amount > bill.RemainingAmount && !ledger.Equal(amount, bill.RemainingAmount) {
		return nil, invalid("amount exceeds the remaining %.2f", bill.RemainingAmount)
	}
	amount = ledger.Round(amount)
	paise := toPaise(amount)

	order, err := s.orders.Create(map[string]interface{}{
		"amount":   paise,
		"currency": "INR",
		"receipt":  "rcpt_" + uuid.NewString()[:18],
		"notes": map[string]interface{}{
			"bill_number":    bill.BillNumber,
			"customer_id":    customer.ID,
			"customer_phone": customer.Phone,
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	orderID, _ := order["id"].(string)
	if orderID == "" {
		return nil, errors.New("razorpay order has no id")
	}

	txn := &models.OnlineTransaction{
		RazorpayOrderID: orderID,
		BillID:          bill.ID,
		CustomerID:      customer.ID,
		Amount:          amount,
		Status:          models.OnlineTxStatusPending,
	}
	if err := s.Txns.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	return &models.CreateOnlinePaymentResponse{
		RazorpayOrderID: orderID,
		AmountPaise:     paise,
		Amount:          amount,
		Currency:        "INR",
		KeyID:           s.keyID,
		CustomerName:    customer.Name,
		CustomerPhone:   customer.Phone,
	}, nil
}

// VerifyPayment checks the checkout signature and, on success, records the
// payment on the bill. Replays of a settled payment return the transaction
// unchanged.
func (s *RazorpayService) VerifyPayment(ctx context.Context, customerID int, req *models.VerifyPaymentRequest) (*models.OnlineTransaction, error) {
	txn, err := s.Txns.GetByRazorpayOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, lookup(err, "transaction")
	}
	if txn.CustomerID != customerID {
		return nil, notFound("transaction")
	}
	if !VerifySignature(s.keySecret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		_ = s.Txns.MarkFailed(ctx, txn.ID, "invalid signature")
		return nil, invalid("invalid payment signature")
	}
	if err := s.settle(ctx, txn, req.RazorpayPaymentID, "razorpay"); err != nil {
		return nil, err
	}
	return s.Txns.GetByRazorpayOrderID(ctx, req.RazorpayOrderID)
}

// settle marks the transaction successful and appends the online payment in
// one transaction.
func (s *RazorpayService) settle(ctx context.Context, txn *models.OnlineTransaction, paymentID, method string) error {
	if txn.Status == models.OnlineTxStatusSuccess {
		return nil
	}
	var bill *models.Bill
	var entry models.PaymentRecord
	err := db.WithTx(ctx, s.Bills.Pool, func(tx pgx.Tx) error {
		moved, err := s.Txns.WithTx(tx).MarkSuccess(ctx, txn.ID, paymentID, method)
		if err != nil {
			return err
		}
		if !moved {
			return nil
		}
		bill, entry, err = appendPayment(ctx, s.Bills.repos().bind(tx), txn.BillID, models.PaymentRecord{
			Amount:    txn.Amount,
			Source:    models.PaymentSourceOnline,
			Method:    "razorpay",
			Note:      "Online payment",
			Reference: paymentID,
			PaidAt:    timeutil.Now(),
		})
		return err
	})
	if err != nil {
		return err
	}
	if bill == nil {
		return nil
	}
	s.Bills.paymentRecorded(ctx, bill, entry)
	publish(s.Bills.Bus, events.OnlinePaymentCreated, "Online payment",
		fmt.Sprintf("%.2f paid online on %s", entry.Amount, bill.BillNumber),
		map[string]any{"bill_id": bill.ID, "razorpay_payment_id": paymentID})
	return nil
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Method           string `json:"method"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ProcessWebhook handles payment.captured and payment.failed callbacks.
func (s *RazorpayService) ProcessWebhook(ctx context.Context, body []byte, signature string) error {
	log := logging.For("Razorpay")
	if s.webhookSecret == "" {
		return invalid("webhook secret not configured")
	}
	if !utils.VerifyWebhookSignature(string(body), signature, s.webhookSecret) {
		return unauthorized("invalid webhook signature")
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return invalid("invalid webhook payload")
	}
	entity := ev.Payload.Payment.Entity
	if entity.OrderID == "" {
		log.Infof("ignoring %s without order id", ev.Event)
		return nil
	}
	txn, err := s.Txns.GetByRazorpayOrderID(ctx, entity.OrderID)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Warnf("webhook for unknown order %s", entity.OrderID)
		return nil
	}
	if err != nil {
		return err
	}

	switch ev.Event {
	case "payment.captured":
		method := entity.Method
		if method == "" {
			method = "razorpay"
		}
		return s.settle(ctx, txn, entity.ID, method)
	case "payment.failed":
		reason := entity.ErrorDescription
		if reason == "" {
			reason = "payment failed"
		}
		return s.Txns.MarkFailed(ctx, txn.ID, reason)
	default:
		log.Infof("unhandled webhook event: %s", ev.Event)
		return nil
	}
}

func (s *RazorpayService) ListTransactions(ctx context.Context, customerID int) ([]*models.OnlineTransaction, error) {
	return s.Txns.ListByCustomer(ctx, customerID)
}
