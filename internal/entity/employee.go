package entity

import "context"

type EmployeeKind string

const (
	EmployeeKindEmployee        EmployeeKind = "employee"
	EmployeeKindBusinessPartner EmployeeKind = "business_partner"
)

// Employee is either a C4C employee or a partner contact that owns leads.
type Employee struct {
	EmployeeID        string       `json:"employee_id"`
	Name              *string      `json:"name,omitempty"`
	Email             *string      `json:"email,omitempty"`
	Department        *string      `json:"department,omitempty"`
	Country           *string      `json:"country,omitempty"`
	BusinessPartnerID *string      `json:"business_partner_id,omitempty"`
	Kind              EmployeeKind `json:"kind"`
}

type EmployeeRepositoryInterface interface {
	Upsert(ctx context.Context, employees []Employee) error
	ListAll(ctx context.Context) ([]Employee, error)
}
