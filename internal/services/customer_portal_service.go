package services

import (
	"context"
	"errors"
	"strings"

	"catering-backend/internal/auth"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/validation"
)

type portalCustomers interface {
	Create(ctx context.Context, c *models.Customer) error
	Get(ctx context.Context, id int) (*models.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*models.Customer, error)
	SetPassword(ctx context.Context, id int, hash string) error
}

// CustomerPortalService backs the customer-facing API.
type CustomerPortalService struct {
	Customers     portalCustomers
	OTP           *OTPService
	Orders        *OrderService
	Bills         *repositories.BillRepository
	JWTManager    *auth.JWTManager
	Notifications *NotificationService
}

func (s *CustomerPortalService) session(c *models.Customer) (*models.CustomerAuthResponse, error) {
	token, err := s.JWTManager.GenerateCustomerToken(c)
	if err != nil {
		return nil, err
	}
	return &models.CustomerAuthResponse{Token: token, Customer: c}, nil
}

// Signup creates a portal account. A customer already on file by phone
// without a password claims that record instead, which requires a code sent
// to that phone.
func (s *CustomerPortalService) Signup(ctx context.Context, req *models.CustomerSignupRequest) (*models.CustomerAuthResponse, error) {
	var errs validation.Errors
	errs.Require("name", req.Name)
	errs.Check(validation.ValidPhone(req.Phone), "phone number must be 10 digits or include a country code")
	errs.Check(req.Email == "" || validation.ValidEmail(req.Email), "email is invalid")
	errs.Check(validation.ValidPassword(req.Password), "password must be at least 8 characters")
	if err := invalidErrs(errs); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	phone := validation.NormalizePhone(req.Phone)

	existing, err := s.Customers.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		if existing.PortalAccess {
			return nil, conflict("an account with this phone number already exists")
		}
		if s.OTP == nil || req.OTP == "" {
			return nil, conflict("this phone number is already registered, verify it with a one-time code to activate the account")
		}
		if err := s.OTP.VerifyOTP(ctx, phone, req.OTP); err != nil {
			return nil, err
		}
		if err := s.Customers.SetPassword(ctx, existing.ID, hash); err != nil {
			return nil, err
		}
		existing.PortalAccess = true
		return s.session(existing)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	c := &models.Customer{
		Name:         strings.TrimSpace(req.Name),
		Phone:        phone,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	}
	if err := s.Customers.Create(ctx, c); err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("an account with this phone number already exists")
		}
		return nil, err
	}
	return s.session(c)
}

func (s *CustomerPortalService) Login(ctx context.Context, req *models.CustomerLoginRequest) (*models.CustomerAuthResponse, error) {
	if req.Phone == "" || req.Password == "" {
		return nil, invalid("phone and password are required")
	}
	c, err := s.Customers.GetByPhone(ctx, validation.NormalizePhone(req.Phone))
	if err != nil || !c.PortalAccess || !auth.VerifyPassword(c.PasswordHash, req.Password) {
		return nil, unauthorized("invalid phone or password")
	}
	return s.session(c)
}

// RequestOTP texts a verification code to phone.
func (s *CustomerPortalService) RequestOTP(ctx context.Context, phone, ip string) error {
	if s.OTP == nil {
		return invalid("phone verification is not available")
	}
	return s.OTP.SendOTP(ctx, phone, ip)
}

// LoginWithOTP signs in a portal account with a code sent to its phone.
func (s *CustomerPortalService) LoginWithOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.CustomerAuthResponse, error) {
	if req.Phone == "" || req.OTP == "" {
		return nil, invalid("phone and otp are required")
	}
	if s.OTP == nil {
		return nil, invalid("phone verification is not available")
	}
	phone := validation.NormalizePhone(req.Phone)
	c, err := s.Customers.GetByPhone(ctx, phone)
	if err != nil || !c.PortalAccess {
		return nil, unauthorized("no portal account for this phone number")
	}
	if err := s.OTP.VerifyOTP(ctx, phone, req.OTP); err != nil {
		return nil, err
	}
	return s.session(c)
}

func (s *CustomerPortalService) Me(ctx context.Context, customerID int) (*models.Customer, error) {
	c, err := s.Customers.Get(ctx, customerID)
	return c, lookup(err, "customer")
}

// SubmitOrder creates a pending customer order with its bill and tells staff.
func (s *CustomerPortalService) SubmitOrder(ctx context.Context, customerID int, req *models.PortalOrderRequest) (*models.Order, error) {
	order, err := s.Orders.CreateOrder(ctx, Actor{}, &models.CreateOrderRequest{
		CustomerID:      customerID,
		EventName:       req.EventName,
		Venue:           req.Venue,
		MealTypeAmounts: req.MealTypeAmounts,
		Services:        req.Services,
		Notes:           req.Notes,
		Items:           req.Items,
	}, models.OrderSourceCustomer)
	if err != nil {
		return nil, err
	}
	if s.Notifications != nil {
		s.Notifications.NotifyOrderSubmitted(ctx, order)
	}
	return order, nil
}

func (s *CustomerPortalService) MyOrders(ctx context.Context, customerID int) ([]*models.Order, error) {
	return s.Orders.Orders.List(ctx, models.OrderFilter{CustomerID: customerID})
}

// MyOrder returns the customer's own order; other customers' orders are not
// found.
func (s *CustomerPortalService) MyOrder(ctx context.Context, customerID, orderID int) (*models.Order, error) {
	o, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, notFound("order")
	}
	return o, nil
}

func (s *CustomerPortalService) MyBills(ctx context.Context, customerID int) ([]*models.Bill, error) {
	return s.Bills.List(ctx, models.BillFilter{CustomerID: customerID})
}

func (s *CustomerPortalService) MyBill(ctx context.Context, customerID, billID int) (*models.Bill, error) {
	b, err := s.Bills.Get(ctx, billID)
	if err != nil {
		return nil, lookup(err, "bill")
	}
	if b.CustomerID != customerID {
		return nil, notFound("bill")
	}
	return b, nil
}
