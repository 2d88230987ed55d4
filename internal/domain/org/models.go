package org

import "time"

type Department struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type DepartmentInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description"`
}

type Position struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	BaseSalary           float64   `json:"baseSalary"`
	HasCommission        bool      `json:"hasCommission"`
	CommissionPercentage float64   `json:"commissionPercentage"`
	Description          *string   `json:"description"`
	EmployeeCount        int       `json:"employeeCount"`
	CreatedAt            time.Time `json:"createdAt"`
}

type PositionInput struct {
	Name                 *string  `json:"name" validate:"omitempty,min=1,max=120"`
	BaseSalary           *float64 `json:"baseSalary" validate:"omitempty,gte=0"`
	HasCommission        *bool    `json:"hasCommission"`
	CommissionPercentage *float64 `json:"commissionPercentage" validate:"omitempty,gte=0,lte=100"`
	Description          *string  `json:"description"`
}
