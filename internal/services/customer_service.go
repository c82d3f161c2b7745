package services

import (
	"context"
	"errors"
	"strings"

	"catering-backend/internal/models"
	"catering-backend/internal/repositories"
	"catering-backend/internal/validation"

	"github.com/jackc/pgx/v5/pgconn"
)

type CustomerService struct {
	Repo *repositories.CustomerRepository
}

func NewCustomerService(repo *repositories.CustomerRepository) *CustomerService {
	return &CustomerService{Repo: repo}
}

func validateCustomer(req *models.CreateCustomerRequest) error {
	var errs validation.Errors
	errs.Require("name", req.Name)
	errs.Check(validation.ValidPhone(req.Phone), "phone number must be 10 digits or include a country code")
	errs.Check(req.Email == "" || validation.ValidEmail(req.Email), "email is invalid")
	return invalidErrs(errs)
}

// isUniqueViolation reports a Postgres unique constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports a Postgres foreign key failure.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if err := validateCustomer(req); err != nil {
		return nil, err
	}
	c := &models.Customer{
		Name:    strings.TrimSpace(req.Name),
		Phone:   validation.NormalizePhone(req.Phone),
		Email:   strings.TrimSpace(req.Email),
		Address: strings.TrimSpace(req.Address),
		Notes:   req.Notes,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("a customer with phone %s already exists", c.Phone)
		}
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	c, err := s.Repo.Get(ctx, id)
	return c, lookup(err, "customer")
}

func (s *CustomerService) ListCustomers(ctx context.Context, search string, limit, offset int) ([]*models.Customer, error) {
	return s.Repo.List(ctx, strings.TrimSpace(search), limit, offset)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	if err := validateCustomer(req); err != nil {
		return nil, err
	}
	c, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, lookup(err, "customer")
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Phone = validation.NormalizePhone(req.Phone)
	c.Email = strings.TrimSpace(req.Email)
	c.Address = strings.TrimSpace(req.Address)
	c.Notes = req.Notes
	if err := s.Repo.Update(ctx, c); err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("a customer with phone %s already exists", c.Phone)
		}
		return nil, err
	}
	return c, nil
}

// DeleteCustomer refuses while orders reference the customer.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int) error {
	err := s.Repo.Delete(ctx, id)
	if isForeignKeyViolation(err) {
		return conflict("customer has orders and cannot be deleted")
	}
	return lookup(err, "customer")
}

func (s *CustomerService) Summary(ctx context.Context, id int) (*models.CustomerSummary, error) {
	sum, err := s.Repo.Summary(ctx, id)
	return sum, lookup(err, "customer")
}
