package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// CreateCustomerRequest payload.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Email string `json:"email"`
}

// CustomerResponse represents a customer.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewCustomerResponse maps a customer.
func NewCustomerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		City:      customer.City,
		Email:     customer.Email,
		CreatedAt: customer.CreatedAt,
	}
}

// NewCustomerList maps customers.
func NewCustomerList(customers []domain.Customer) []CustomerResponse {
	items := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, NewCustomerResponse(&customers[i]))
	}
	return items
}
