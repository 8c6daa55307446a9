package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/worker"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// CustomerService manages customer records.
type CustomerService struct {
	customers repository.CustomerRepository
	clock     worker.Clock
}

// CustomerInput describes a new customer.
type CustomerInput struct {
	Name  string
	City  string
	Email string
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository, clock worker.Clock) *CustomerService {
	return &CustomerService{customers: customers, clock: clockOrReal(clock)}
}

// CreateCustomer validates and stores a customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	name := strings.TrimSpace(input.Name)
	city := strings.TrimSpace(input.City)
	email := strings.TrimSpace(input.Email)

	details := map[string]any{}
	if len([]rune(name)) < 2 {
		details["name"] = "must have at least 2 characters"
	}
	if city == "" {
		details["city"] = "is required"
	}
	if email != "" {
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			details["email"] = "is not a valid address"
		}
	}
	if len(details) > 0 {
		return nil, errorutil.NewValidationError("invalid customer", details)
	}

	customer := &domain.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		City:      city,
		Email:     email,
		CreatedAt: s.clock.Now(),
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ListCustomers returns customers sorted by name.
func (s *CustomerService) ListCustomers(ctx context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	return s.customers.List(ctx, filter)
}

// GetCustomer fetches one customer.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return customer, nil
}
